package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"image-labeler/internal/domain/entity"
)

func TestDiskUploadStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskUploadStore(dir, "uploads")
	require.NoError(t, err)

	img := &entity.UploadedImage{FieldName: "file", Filename: "cat.PNG", MIMEType: "image/png", Data: []byte("png-bytes")}
	url, err := store.Save(context.Background(), img)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/file-"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	require.Equal(t, img.Data, data)
}

func TestDiskUploadStore_UniqueNames(t *testing.T) {
	store, err := NewDiskUploadStore(t.TempDir(), "/uploads/")
	require.NoError(t, err)

	img := &entity.UploadedImage{FieldName: "file", Filename: "a.jpg", Data: []byte("x")}
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		url, err := store.Save(context.Background(), img)
		require.NoError(t, err)
		require.False(t, seen[url])
		seen[url] = true
	}
}

func TestExtension(t *testing.T) {
	require.Equal(t, ".jpg", extension("photo.JPG"))
	require.Equal(t, "", extension("noext"))
	require.Equal(t, "", extension("evil.p<h>p"))
	require.Equal(t, ".png", extension("../../etc/x.png"))
	require.Equal(t, "", extension("a.verylongextension"))
}

func TestDiskUploadStore_CanceledContext(t *testing.T) {
	store, err := NewDiskUploadStore(t.TempDir(), "uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, &entity.UploadedImage{Data: []byte("x")})
	require.ErrorIs(t, err, context.Canceled)
}
