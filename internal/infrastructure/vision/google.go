package vision

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	logging "github.com/ipfs/go-log"
	"google.golang.org/api/option"

	"image-labeler/internal/domain/entity"
	"image-labeler/internal/domain/port"
)

var log = logging.Logger("vision")

// GoogleOptions параметры клиента Cloud Vision
type GoogleOptions struct {
	CredentialsFile string // путь к ключу сервисного аккаунта, пусто: ADC
	APIKey          string
	MaxResults      int32 // 0: значение провайдера по умолчанию
}

func (o GoogleOptions) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if o.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(o.CredentialsFile))
	}
	if o.APIKey != "" {
		opts = append(opts, option.WithAPIKey(o.APIKey))
	}
	return opts
}

// GoogleDetector метки через Cloud Vision LABEL_DETECTION.
// Клиент создаётся один раз на процесс и безопасен для конкурентного использования.
type GoogleDetector struct {
	client     *vision.ImageAnnotatorClient
	maxResults int32
}

// NewGoogleDetector создаёт клиента Cloud Vision
func NewGoogleDetector(ctx context.Context, opts GoogleOptions) (*GoogleDetector, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	log.Infof("cloud vision client ready (max results %d)", opts.MaxResults)

	return &GoogleDetector{
		client:     client,
		maxResults: opts.MaxResults,
	}, nil
}

// DetectLabels отправляет одно изображение и возвращает метки первого ответа
func (d *GoogleDetector) DetectLabels(ctx context.Context, imageData []byte) (entity.LabelResult, error) {
	res, err := d.client.BatchAnnotateImages(ctx, labelRequest(imageData, d.maxResults))
	if err != nil {
		return nil, fmt.Errorf("batch annotate: %w", err)
	}
	return labelsFromResponse(res)
}

// Close освобождает соединение с провайдером
func (d *GoogleDetector) Close() error {
	return d.client.Close()
}

func labelRequest(imageData []byte, maxResults int32) *visionpb.BatchAnnotateImagesRequest {
	return &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: maxResults},
				},
			},
		},
	}
}

func labelsFromResponse(res *visionpb.BatchAnnotateImagesResponse) (entity.LabelResult, error) {
	responses := res.GetResponses()
	if len(responses) == 0 {
		return nil, fmt.Errorf("empty annotate response")
	}

	first := responses[0]
	if st := first.GetError(); st != nil && st.GetCode() != 0 {
		return nil, fmt.Errorf("annotate image: code %d: %s", st.GetCode(), st.GetMessage())
	}

	annotations := first.GetLabelAnnotations()
	labels := make(entity.LabelResult, 0, len(annotations))
	for _, a := range annotations {
		labels = append(labels, entity.Label{
			Description: a.GetDescription(),
			Score:       float64(a.GetScore()),
		})
	}
	return labels, nil
}

var _ port.LabelDetector = (*GoogleDetector)(nil)
