package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"image-labeler/internal/domain/entity"
	"image-labeler/internal/domain/port"
)

const maxExtLen = 10

// DiskUploadStore складывает загрузки в каталог и отдаёт их по URL-префиксу.
// Имена файлов: <поле>-<uuid><расширение>.
type DiskUploadStore struct {
	dir       string
	urlPrefix string
}

// NewDiskUploadStore создаёт каталог, если его нет
func NewDiskUploadStore(dir, urlPrefix string) (*DiskUploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskUploadStore{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

// Dir возвращает каталог с загрузками
func (s *DiskUploadStore) Dir() string {
	return s.dir
}

// Save записывает файл и возвращает его публичный URL
func (s *DiskUploadStore) Save(ctx context.Context, img *entity.UploadedImage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fileName(img)
	if err := os.WriteFile(filepath.Join(s.dir, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

func fileName(img *entity.UploadedImage) string {
	field := sanitize(img.FieldName)
	if field == "" {
		field = "file"
	}
	return field + "-" + uuid.NewString() + extension(img.Filename)
}

// extension оставляет только безопасное расширение исходного имени
func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	if sanitize(ext[1:]) != ext[1:] {
		return ""
	}
	return ext
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

var _ port.UploadStore = (*DiskUploadStore)(nil)
