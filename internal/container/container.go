package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"image-labeler/config"
	app "image-labeler/internal/application"
	"image-labeler/internal/domain/entity"
	"image-labeler/internal/domain/port"
	"image-labeler/internal/infrastructure/storage"
	"image-labeler/internal/infrastructure/vision"
)

// UploadsURLPrefix путь, по которому web отдаёт сохранённые файлы
const UploadsURLPrefix = "/uploads"

type Container struct {
	UserService     *app.UserService
	LabelingService *app.LabelingService

	// UploadsDir непуст, только если загрузки пишутся на диск
	UploadsDir string

	closers []io.Closer
}

func New(userRepo port.UserRepository, detector port.LabelDetector, store port.UploadStore, policy entity.UploadPolicy) *Container {
	userService := app.NewUserService(userRepo)
	labelingService := app.NewLabelingService(detector, store, policy)

	return &Container{
		UserService:     userService,
		LabelingService: labelingService,
	}
}

// Build собирает сервисы по конфигурации. Клиент провайдера создаётся здесь один раз.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	detector, err := newDetector(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, dir, err := newStore(cfg)
	if err != nil {
		_ = detector.Close()
		return nil, err
	}

	policy := entity.UploadPolicy{
		AllowedTypes: cfg.AllowedMIMETypes,
		MaxBytes:     cfg.MaxUploadBytes,
	}

	c := New(storage.NewMemoryUserRepository(), detector, store, policy)
	c.UploadsDir = dir
	c.closers = append(c.closers, detector)
	return c, nil
}

// Close освобождает клиентов провайдера
func (c *Container) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

type closableDetector interface {
	port.LabelDetector
	io.Closer
}

func newDetector(ctx context.Context, cfg *config.Config) (closableDetector, error) {
	switch cfg.LabelProvider {
	case config.ProviderGoogle:
		return vision.NewGoogleDetector(ctx, vision.GoogleOptions{
			CredentialsFile: cfg.GoogleCredentials,
			APIKey:          cfg.GoogleAPIKey,
			MaxResults:      int32(cfg.VisionMaxResults),
		})
	case config.ProviderGoCV:
		return vision.NewGoCVClassifier(cfg.GoCVModelPath, cfg.GoCVClassesPath, cfg.VisionMaxResults)
	default:
		return nil, fmt.Errorf("unknown label provider %q", cfg.LabelProvider)
	}
}

// newStore возвращает nil-хранилище для режима memory: файл живёт только в запросе
func newStore(cfg *config.Config) (port.UploadStore, string, error) {
	if cfg.UploadStorage != config.StorageDisk {
		return nil, "", nil
	}

	store, err := storage.NewDiskUploadStore(cfg.UploadsDir, UploadsURLPrefix)
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}
