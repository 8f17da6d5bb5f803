package web

import (
	"testing"

	"github.com/stretchr/testify/require"

	"image-labeler/internal/domain/entity"
)

func TestNewComposer(t *testing.T) {
	c, err := NewComposer("")
	require.NoError(t, err)
	require.Equal(t, ModeJSON, c.Mode())

	_, err = NewComposer("xml")
	require.Error(t, err)
}

func TestNewUploadSuccess_DoesNotMutatePayload(t *testing.T) {
	p := &entity.RenderPayload{
		ImageSrc: "data:image/png;base64,AAAA",
		Labels:   entity.LabelResult{{Description: "Cat", Score: 0.95}, {Description: "Pet", Score: 0.5}},
	}

	out := newUploadSuccess(p)
	require.True(t, out.Success)
	require.Equal(t, []string{"Cat", "Pet"}, out.Labels)

	out.Labels[0] = "Dog"
	require.Equal(t, "Cat", p.Labels[0].Description)
}
