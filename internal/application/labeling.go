package app

import (
	"context"
	"fmt"
	"time"

	logging "github.com/ipfs/go-log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"image-labeler/internal/domain/entity"
	"image-labeler/internal/domain/port"
)

var log = logging.Logger("app")

var detectDurationHist = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "labeler_detect_duration_ms",
	Help:    "Label provider call durations in milliseconds",
	Buckets: prometheus.ExponentialBuckets(1, 2, 15),
}, []string{"outcome"})

var uploadsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "labeler_uploads_total",
	Help: "Processed uploads by result",
}, []string{"result"})

// LabelingService конвейер: проверка загрузки, провайдер меток, сборка ответа
type LabelingService struct {
	detector port.LabelDetector
	store    port.UploadStore
	policy   entity.UploadPolicy
}

// NewLabelingService создаёт конвейер. Если store nil, файлы не сохраняются.
func NewLabelingService(detector port.LabelDetector, store port.UploadStore, policy entity.UploadPolicy) *LabelingService {
	return &LabelingService{
		detector: detector,
		store:    store,
		policy:   policy,
	}
}

// Policy возвращает ограничения на загрузки
func (s *LabelingService) Policy() entity.UploadPolicy {
	return s.policy
}

// Analyze обрабатывает одну загрузку и возвращает данные для ответа.
func (s *LabelingService) Analyze(ctx context.Context, img *entity.UploadedImage) (*entity.RenderPayload, error) {
	ctx, span := otel.Tracer("image-labeler").Start(ctx, "LabelingService.Analyze")
	defer span.End()

	labels, err := s.Detect(ctx, img)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "detect failed")
		return nil, err
	}

	var storedURL string
	if s.store != nil {
		storedURL, err = s.store.Save(ctx, img)
		if err != nil {
			uploadsCounter.WithLabelValues("store_error").Inc()
			return nil, fmt.Errorf("store upload: %w", err)
		}
	}

	span.SetAttributes(attribute.Int("labels", len(labels)))
	return entity.NewRenderPayload(img, labels, storedURL), nil
}

// Detect проверяет изображение и вызывает провайдера. Провайдер не вызывается,
// если проверка не прошла.
func (s *LabelingService) Detect(ctx context.Context, img *entity.UploadedImage) (entity.LabelResult, error) {
	if err := s.policy.Validate(img); err != nil {
		uploadsCounter.WithLabelValues("rejected").Inc()
		return nil, err
	}

	ctx, span := otel.Tracer("image-labeler").Start(ctx, "LabelDetector.DetectLabels", trace.WithAttributes(
		attribute.String("mime", img.MIMEType),
		attribute.Int64("size", img.Size()),
	))
	defer span.End()

	start := time.Now()
	labels, err := s.detector.DetectLabels(ctx, img.Data)
	took := time.Since(start)
	if err != nil {
		detectDurationHist.WithLabelValues("error").Observe(float64(took.Milliseconds()))
		uploadsCounter.WithLabelValues("upstream_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider failed")
		log.Errorw("label detection failed", "mime", img.MIMEType, "size", img.Size(), "err", err)
		return nil, &entity.UpstreamError{Err: err}
	}

	detectDurationHist.WithLabelValues("ok").Observe(float64(took.Milliseconds()))
	uploadsCounter.WithLabelValues("ok").Inc()
	log.Infow("labels detected", "count", len(labels), "took", took)

	if labels == nil {
		labels = entity.LabelResult{}
	}
	return labels, nil
}
