//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"image-labeler/internal/domain/entity"
	"image-labeler/internal/domain/port"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// GoCVClassifier заглушка без OpenCV
type GoCVClassifier struct {
	TopK int
}

// NewGoCVClassifier возвращает ошибку, если сборка без тега gocv.
func NewGoCVClassifier(modelPath, classesPath string, topK int) (*GoCVClassifier, error) {
	_ = modelPath
	_ = classesPath
	return nil, errNoGoCV
}

// DetectLabels возвращает ошибку, если сборка без тега gocv.
func (c *GoCVClassifier) DetectLabels(ctx context.Context, imageData []byte) (entity.LabelResult, error) {
	_ = ctx
	_ = imageData
	return nil, errNoGoCV
}

// Close ничего не делает
func (c *GoCVClassifier) Close() error {
	return nil
}

var _ port.LabelDetector = (*GoCVClassifier)(nil)
