package entity

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUploadedImage_DataURIRoundTrip(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0x10}
	img := &UploadedImage{MIMEType: "image/png", Data: data}

	uri := img.DataURI()
	prefix := "data:image/png;base64,"
	require.True(t, strings.HasPrefix(uri, prefix))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestUploadPolicy_Validate(t *testing.T) {
	policy := UploadPolicy{AllowedTypes: []string{"image/png", "image/jpeg"}, MaxBytes: 4}

	require.ErrorIs(t, policy.Validate(nil), ErrNoFile)
	require.ErrorIs(t, policy.Validate(&UploadedImage{MIMEType: "image/png"}), ErrNoFile)
	require.ErrorIs(t, policy.Validate(&UploadedImage{MIMEType: "image/png", Data: []byte("12345")}), ErrTooLarge)
	require.ErrorIs(t, policy.Validate(&UploadedImage{MIMEType: "text/html", Data: []byte("12")}), ErrUnsupportedType)
	require.ErrorIs(t, policy.Validate(&UploadedImage{MIMEType: "", Data: []byte("12")}), ErrUnsupportedType)
	require.NoError(t, policy.Validate(&UploadedImage{MIMEType: "IMAGE/JPEG", Data: []byte("12")}))
	require.NoError(t, policy.Validate(&UploadedImage{MIMEType: "image/png; foo=bar", Data: []byte("1234")}))
}

func TestUploadPolicy_NoSizeLimit(t *testing.T) {
	policy := UploadPolicy{AllowedTypes: []string{"image/png"}}
	require.NoError(t, policy.Validate(&UploadedImage{MIMEType: "image/png", Data: make([]byte, 1<<20)}))
}
