package telegram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"image-labeler/internal/domain/entity"
)

func TestFormatLabels(t *testing.T) {
	text := formatLabels(entity.LabelResult{{Description: "Cat", Score: 0.95}, {Description: "Whiskers", Score: 0.8734}})
	require.Equal(t, msgLabelsHeader+"\n• Cat (95.00%)\n• Whiskers (87.34%)", text)

	require.Equal(t, msgNoLabels, formatLabels(nil))
}

func TestReplyText(t *testing.T) {
	require.Equal(t, msgNoLabels, replyText(entity.LabelResult{}, nil))
	require.Equal(t, msgRejected, replyText(nil, entity.ErrUnsupportedType))
	require.Equal(t, msgProcessingError, replyText(nil, &entity.UpstreamError{Err: errors.New("timeout")}))
}

func TestRefusalText(t *testing.T) {
	require.Equal(t, msgBusy, refusalText(entity.StateProcessing))
	require.Equal(t, msgLabelFirst, refusalText(entity.StateMainMenu))
}
