package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeHTML = "html"
	ModeJSON = "json"

	StorageMemory = "memory"
	StorageDisk   = "disk"

	ProviderGoogle = "google"
	ProviderGoCV   = "gocv"
)

type Config struct {
	Port             int      `yaml:"port"`
	ResponseMode     string   `yaml:"responseMode"`
	UploadStorage    string   `yaml:"uploadStorage"`
	UploadsDir       string   `yaml:"uploadsDir"`
	MaxUploadBytes   int64    `yaml:"maxUploadBytes"`
	AllowedMIMETypes []string `yaml:"allowedMimeTypes"`
	LogLevel         string   `yaml:"logLevel"`

	LabelProvider     string `yaml:"labelProvider"`
	GoogleCredentials string `yaml:"googleCredentials"`
	GoogleAPIKey      string `yaml:"googleApiKey"`
	VisionMaxResults  int    `yaml:"visionMaxResults"`
	GoCVModelPath     string `yaml:"gocvModelPath"`
	GoCVClassesPath   string `yaml:"gocvClassesPath"`

	TelegramToken string `yaml:"telegramToken"`
}

// Default значения, с которыми сервис запускается без настроек
func Default() *Config {
	return &Config{
		Port:           8080,
		ResponseMode:   ModeJSON,
		UploadStorage:  StorageMemory,
		UploadsDir:     "uploads",
		MaxUploadBytes: 10 << 20,
		AllowedMIMETypes: []string{
			"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff",
		},
		LogLevel:         "info",
		LabelProvider:    ProviderGoogle,
		VisionMaxResults: 10,
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл (если задан),
// затем переменные окружения. .env подхватывается, если он есть.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.ResponseMode, "RESPONSE_MODE")
	setString(&c.UploadStorage, "UPLOAD_STORAGE")
	setString(&c.UploadsDir, "UPLOADS_DIR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LabelProvider, "LABEL_PROVIDER")
	setString(&c.GoogleCredentials, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&c.GoCVModelPath, "GOCV_MODEL_PATH")
	setString(&c.GoCVClassesPath, "GOCV_CLASSES_PATH")
	setString(&c.TelegramToken, "TELEGRAM_TOKEN")

	if v := os.Getenv("ALLOWED_MIME_TYPES"); v != "" {
		c.AllowedMIMETypes = splitList(v)
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("VISION_MAX_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid VISION_MAX_RESULTS %q: %w", v, err)
		}
		c.VisionMaxResults = n
	}
	return nil
}

// Validate проверяет значения перечислений и границы
func (c *Config) Validate() error {
	switch c.ResponseMode {
	case ModeHTML, ModeJSON:
	default:
		return fmt.Errorf("unknown response mode %q", c.ResponseMode)
	}
	switch c.UploadStorage {
	case StorageMemory, StorageDisk:
	default:
		return fmt.Errorf("unknown upload storage %q", c.UploadStorage)
	}
	switch c.LabelProvider {
	case ProviderGoogle, ProviderGoCV:
	default:
		return fmt.Errorf("unknown label provider %q", c.LabelProvider)
	}
	if c.LabelProvider == ProviderGoCV && (c.GoCVModelPath == "" || c.GoCVClassesPath == "") {
		return errors.New("gocv provider requires GOCV_MODEL_PATH and GOCV_CLASSES_PATH")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("invalid max upload bytes %d", c.MaxUploadBytes)
	}
	if len(c.AllowedMIMETypes) == 0 {
		return errors.New("allowed mime types must not be empty")
	}
	return nil
}

// Addr адрес для HTTP-сервера
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
