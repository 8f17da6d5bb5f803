package port

import (
	"context"

	"image-labeler/internal/domain/entity"
)

// UploadStore сохраняет загруженные файлы для дискового варианта
type UploadStore interface {
	// Save записывает файл и возвращает URL, по которому он будет отдан клиенту
	Save(ctx context.Context, img *entity.UploadedImage) (string, error)
}
