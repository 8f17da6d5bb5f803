package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"image-labeler/internal/domain/entity"
)

type fakeDetector struct {
	labels entity.LabelResult
	err    error
	calls  int
	got    []byte
}

func (f *fakeDetector) DetectLabels(ctx context.Context, imageData []byte) (entity.LabelResult, error) {
	f.calls++
	f.got = imageData
	return f.labels, f.err
}

type fakeStore struct {
	url string
	err error
}

func (f *fakeStore) Save(ctx context.Context, img *entity.UploadedImage) (string, error) {
	return f.url, f.err
}

var testPolicy = entity.UploadPolicy{AllowedTypes: []string{"image/png", "image/jpeg"}, MaxBytes: 1 << 10}

func pngUpload() *entity.UploadedImage {
	return &entity.UploadedImage{FieldName: "file", Filename: "cat.png", MIMEType: "image/png", Data: []byte("\x89PNG-cat")}
}

func TestLabelingService_Analyze(t *testing.T) {
	det := &fakeDetector{labels: entity.LabelResult{{Description: "Cat", Score: 0.95}, {Description: "Whiskers", Score: 0.9}, {Description: "Mammal", Score: 0.97}}}
	svc := NewLabelingService(det, nil, testPolicy)
	img := pngUpload()

	payload, err := svc.Analyze(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, 1, det.calls)
	require.Equal(t, img.Data, det.got)
	require.Equal(t, img.DataURI(), payload.ImageSrc)
	require.Equal(t, []string{"Cat", "Whiskers", "Mammal"}, payload.Labels.Descriptions())
}

func TestLabelingService_EmptyLabelsIsNotAnError(t *testing.T) {
	svc := NewLabelingService(&fakeDetector{}, nil, testPolicy)

	payload, err := svc.Analyze(context.Background(), pngUpload())
	require.NoError(t, err)
	require.NotNil(t, payload.Labels)
	require.Empty(t, payload.Labels)
}

func TestLabelingService_RejectsWithoutCallingProvider(t *testing.T) {
	cases := map[string]struct {
		img  *entity.UploadedImage
		want error
	}{
		"no file":     {img: nil, want: entity.ErrNoFile},
		"empty":       {img: &entity.UploadedImage{MIMEType: "image/png"}, want: entity.ErrNoFile},
		"bad type":    {img: &entity.UploadedImage{MIMEType: "application/pdf", Data: []byte("%PDF")}, want: entity.ErrUnsupportedType},
		"too large":   {img: &entity.UploadedImage{MIMEType: "image/png", Data: make([]byte, 2<<10)}, want: entity.ErrTooLarge},
		"no mimetype": {img: &entity.UploadedImage{Data: []byte("x")}, want: entity.ErrUnsupportedType},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			det := &fakeDetector{}
			svc := NewLabelingService(det, nil, testPolicy)

			_, err := svc.Analyze(context.Background(), tc.img)
			require.ErrorIs(t, err, tc.want)
			require.True(t, entity.IsClientInput(err))
			require.Zero(t, det.calls)
		})
	}
}

func TestLabelingService_ProviderFailure(t *testing.T) {
	cause := errors.New("rpc error: code = PermissionDenied")
	svc := NewLabelingService(&fakeDetector{err: cause}, nil, testPolicy)

	_, err := svc.Analyze(context.Background(), pngUpload())
	require.Error(t, err)
	require.True(t, entity.IsUpstream(err))
	require.ErrorIs(t, err, cause)
	require.False(t, entity.IsClientInput(err))
}

func TestLabelingService_StoredURL(t *testing.T) {
	svc := NewLabelingService(&fakeDetector{}, &fakeStore{url: "/uploads/file-1.png"}, testPolicy)

	payload, err := svc.Analyze(context.Background(), pngUpload())
	require.NoError(t, err)
	require.Equal(t, "/uploads/file-1.png", payload.ImageSrc)
}

func TestLabelingService_StoreFailure(t *testing.T) {
	svc := NewLabelingService(&fakeDetector{}, &fakeStore{err: errors.New("disk full")}, testPolicy)

	_, err := svc.Analyze(context.Background(), pngUpload())
	require.Error(t, err)
	require.False(t, entity.IsClientInput(err))
	require.False(t, entity.IsUpstream(err))
}
