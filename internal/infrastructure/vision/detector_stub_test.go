//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoCVStub(t *testing.T) {
	_, err := NewGoCVClassifier("model.onnx", "classes.txt", 5)
	require.ErrorIs(t, err, errNoGoCV)

	_, err = (&GoCVClassifier{}).DetectLabels(context.Background(), []byte("x"))
	require.ErrorIs(t, err, errNoGoCV)
}
