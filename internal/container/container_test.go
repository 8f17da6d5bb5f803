package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"image-labeler/config"
	"image-labeler/internal/domain/entity"
	"image-labeler/internal/infrastructure/storage"
)

type stubDetector struct{}

func (stubDetector) DetectLabels(ctx context.Context, imageData []byte) (entity.LabelResult, error) {
	return entity.LabelResult{{Description: "Cat", Score: 0.9}}, nil
}

func TestNew(t *testing.T) {
	policy := entity.UploadPolicy{AllowedTypes: []string{"image/png"}, MaxBytes: 1024}
	c := New(storage.NewMemoryUserRepository(), stubDetector{}, nil, policy)

	require.NotNil(t, c.UserService)
	require.NotNil(t, c.LabelingService)
	require.Equal(t, policy, c.LabelingService.Policy())

	payload, err := c.LabelingService.Analyze(context.Background(), &entity.UploadedImage{
		FieldName: "file",
		MIMEType:  "image/png",
		Data:      []byte("png"),
	})
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,cG5n", payload.ImageSrc)
	require.NoError(t, c.Close())
}

func TestNewStore_Memory(t *testing.T) {
	cfg := config.Default()

	store, dir, err := newStore(cfg)
	require.NoError(t, err)
	require.Nil(t, store)
	require.Empty(t, dir)
}

func TestNewStore_Disk(t *testing.T) {
	cfg := config.Default()
	cfg.UploadStorage = config.StorageDisk
	cfg.UploadsDir = filepath.Join(t.TempDir(), "uploads")

	store, dir, err := newStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.Equal(t, cfg.UploadsDir, dir)
	require.DirExists(t, dir)

	url, err := store.Save(context.Background(), &entity.UploadedImage{FieldName: "file", Filename: "a.png", Data: []byte("x")})
	require.NoError(t, err)
	require.Regexp(t, `^/uploads/file-[0-9a-f-]{36}\.png$`, url)
}

func TestNewDetector_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.LabelProvider = "nope"

	_, err := newDetector(context.Background(), cfg)
	require.Error(t, err)
}
