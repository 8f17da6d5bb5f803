//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"image-labeler/internal/domain/entity"
	"image-labeler/internal/domain/port"
)

// GoCVClassifier локальный классификатор на OpenCV DNN.
// Возвращает topK меток в порядке убывания уверенности.
type GoCVClassifier struct {
	InputSize int
	Scale     float64
	Mean      gocv.Scalar
	SwapRB    bool
	TopK      int

	mu      sync.Mutex // gocv.Net не потокобезопасен
	net     gocv.Net
	classes []string
}

// NewGoCVClassifier загружает модель (onnx, caffe, tensorflow) и файл с именами классов
func NewGoCVClassifier(modelPath, classesPath string, topK int) (*GoCVClassifier, error) {
	classes, err := readClasses(classesPath)
	if err != nil {
		return nil, fmt.Errorf("read classes: %w", err)
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", modelPath)
	}

	if topK <= 0 {
		topK = 10
	}

	return &GoCVClassifier{
		InputSize: 224,
		Scale:     1.0 / 255.0,
		Mean:      gocv.NewScalar(0, 0, 0, 0),
		SwapRB:    true,
		TopK:      topK,
		net:       net,
		classes:   classes,
	}, nil
}

// DetectLabels классифицирует изображение
func (c *GoCVClassifier) DetectLabels(ctx context.Context, imageData []byte) (entity.LabelResult, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, c.Scale, image.Pt(c.InputSize, c.InputSize), c.Mean, c.SwapRB, false)
	defer blob.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores, err := c.forward(blob)
	if err != nil {
		return nil, err
	}

	return topLabels(scores, c.classes, c.TopK), nil
}

func (c *GoCVClassifier) forward(blob gocv.Mat) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.net.SetInput(blob, "")
	prob := c.net.Forward("")
	defer prob.Close()
	if prob.Empty() {
		return nil, errors.New("empty network output")
	}

	flat := prob.Reshape(1, 1)
	defer flat.Close()

	scores := make([]float32, flat.Cols())
	for i := range scores {
		scores[i] = flat.GetFloatAt(0, i)
	}
	return scores, nil
}

// Close освобождает сеть
func (c *GoCVClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

var _ port.LabelDetector = (*GoCVClassifier)(nil)
