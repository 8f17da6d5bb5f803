package port

import (
	"context"

	"image-labeler/internal/domain/entity"
)

// LabelDetector интерфейс провайдера меток
type LabelDetector interface {
	// DetectLabels отправляет изображение провайдеру и возвращает метки в его порядке.
	// Любой сбой провайдера возвращается одной ошибкой.
	DetectLabels(ctx context.Context, imageData []byte) (entity.LabelResult, error)
}
