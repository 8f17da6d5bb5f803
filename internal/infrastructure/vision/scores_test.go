package vision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopLabels_Probabilities(t *testing.T) {
	labels := topLabels([]float32{0.1, 0.6, 0.3}, []string{"dog", "cat", "bird"}, 2)
	require.Equal(t, []string{"cat", "bird"}, labels.Descriptions())
	require.InDelta(t, 0.6, labels[0].Score, 1e-6)
}

func TestTopLabels_LogitsGetSoftmax(t *testing.T) {
	labels := topLabels([]float32{2, -1, 5}, []string{"dog", "cat"}, 5)
	require.Len(t, labels, 3)
	require.Equal(t, "class 2", labels[0].Description)
	require.Equal(t, "dog", labels[1].Description)

	var sum float64
	for _, l := range labels {
		require.GreaterOrEqual(t, l.Score, 0.0)
		require.LessOrEqual(t, l.Score, 1.0)
		sum += l.Score
	}
	require.InDelta(t, 1.0, sum, 1e-6)
}

func TestReadClasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.txt")
	require.NoError(t, os.WriteFile(path, []byte("tench\ngoldfish \n"), 0o644))

	classes, err := readClasses(path)
	require.NoError(t, err)
	require.Equal(t, []string{"tench", "goldfish"}, classes)

	_, err = readClasses(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
