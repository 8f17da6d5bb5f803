package web

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"image-labeler/internal/domain/entity"
)

// Mode формат ответа на загрузку
type Mode string

const (
	ModeHTML Mode = "html"
	ModeJSON Mode = "json"
)

// Composer превращает результат конвейера в HTML или JSON.
// Формат выбирается конфигурацией, а не запросом.
type Composer struct {
	mode Mode
}

func NewComposer(mode Mode) (*Composer, error) {
	switch mode {
	case ModeHTML, ModeJSON:
		return &Composer{mode: mode}, nil
	case "":
		return &Composer{mode: ModeJSON}, nil
	default:
		return nil, fmt.Errorf("unknown response mode %q", mode)
	}
}

func (c *Composer) Mode() Mode {
	return c.mode
}

type uploadSuccess struct {
	Success  bool     `json:"success"`
	ImageSrc string   `json:"imageSrc"`
	Labels   []string `json:"labels"`
}

type uploadFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type resultView struct {
	ImageSrc template.URL
	Labels   entity.LabelResult
}

type errorView struct {
	Status  int
	Title   string
	Message string
}

func newUploadSuccess(p *entity.RenderPayload) uploadSuccess {
	return uploadSuccess{
		Success:  true,
		ImageSrc: p.ImageSrc,
		Labels:   p.Labels.Descriptions(),
	}
}

// ImageSrc собран из MIME-типа, прошедшего белый список, и base64, поэтому
// помечается как безопасный URL.
func newResultView(p *entity.RenderPayload) resultView {
	return resultView{
		ImageSrc: template.URL(p.ImageSrc),
		Labels:   p.Labels,
	}
}

// Success отвечает на успешную разметку
func (c *Composer) Success(ec echo.Context, p *entity.RenderPayload) error {
	if c.mode == ModeHTML {
		return ec.Render(http.StatusOK, "result.html", newResultView(p))
	}
	return ec.JSON(http.StatusOK, newUploadSuccess(p))
}

// Rejected отвечает на ошибку клиента: 200 и success=false в обоих режимах
func (c *Composer) Rejected(ec echo.Context, message string) error {
	return ec.JSON(http.StatusOK, uploadFailure{Message: message})
}

// Failure отвечает на сбой с кодом статуса
func (c *Composer) Failure(ec echo.Context, status int, message string) error {
	if c.mode == ModeHTML {
		return ec.Render(status, "error.html", errorView{
			Status:  status,
			Title:   http.StatusText(status),
			Message: message,
		})
	}
	return ec.JSON(status, uploadFailure{Message: message})
}
