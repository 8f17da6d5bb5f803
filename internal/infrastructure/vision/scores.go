package vision

import (
	"bufio"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"image-labeler/internal/domain/entity"
)

// topLabels выбирает k лучших классов. Если выход сети не похож на вероятности,
// применяется softmax.
func topLabels(scores []float32, classes []string, k int) entity.LabelResult {
	probs := toProbabilities(scores)

	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return probs[idx[a]] > probs[idx[b]]
	})

	if k > len(idx) {
		k = len(idx)
	}

	labels := make(entity.LabelResult, 0, k)
	for _, i := range idx[:k] {
		labels = append(labels, entity.Label{
			Description: className(classes, i),
			Score:       probs[i],
		})
	}
	return labels
}

func className(classes []string, i int) string {
	if i < len(classes) && classes[i] != "" {
		return classes[i]
	}
	return "class " + strconv.Itoa(i)
}

func toProbabilities(scores []float32) []float64 {
	probs := make([]float64, len(scores))
	isProb := true
	var sum float64
	for i, s := range scores {
		probs[i] = float64(s)
		sum += probs[i]
		if s < 0 || s > 1 {
			isProb = false
		}
	}
	if isProb && math.Abs(sum-1) < 1e-3 {
		return probs
	}

	peak := math.Inf(-1)
	for _, p := range probs {
		peak = math.Max(peak, p)
	}
	var total float64
	for i, p := range probs {
		probs[i] = math.Exp(p - peak)
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs
}

// readClasses читает имена классов, по одному на строку
func readClasses(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var classes []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		classes = append(classes, strings.TrimSpace(scanner.Text()))
	}
	return classes, scanner.Err()
}
