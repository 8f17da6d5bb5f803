package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"image-labeler/internal/domain/entity"
)

const (
	// multipartSlack запас на заголовки частей и границы поверх размера файла
	multipartSlack = 1 << 20

	msgDetectFailed = "Label detection failed"
)

type indexView struct {
	FieldName string
	Async     bool
	MaxMB     int64
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", indexView{
		FieldName: s.opts.FieldName,
		Async:     s.composer.Mode() == ModeJSON,
		MaxMB:     s.opts.MaxBytes >> 20,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleUploadImage(c echo.Context) error {
	ctx, span := otel.Tracer("image-labeler").Start(c.Request().Context(), "handleUploadImage")
	defer span.End()

	var payload *entity.RenderPayload
	img, err := s.receiveUpload(c)
	if err == nil {
		span.SetAttributes(attribute.String("mime", img.MIMEType), attribute.Int64("size", img.Size()))
		payload, err = s.labeling.Analyze(ctx, img)
	}

	switch {
	case err == nil:
		return s.composer.Success(c, payload)
	case entity.IsClientInput(err):
		span.SetAttributes(attribute.String("rejected", err.Error()))
		log.Infof("upload rejected: %s", err)
		return s.composer.Rejected(c, s.clientMessage(err))
	case entity.IsUpstream(err):
		return s.composer.Failure(c, http.StatusInternalServerError, msgDetectFailed)
	default:
		return fmt.Errorf("upload image: %w", err)
	}
}

// receiveUpload читает единственный файл из multipart-формы целиком в память
func (s *Server) receiveUpload(c echo.Context) (*entity.UploadedImage, error) {
	req := c.Request()
	if s.opts.MaxBytes > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, s.opts.MaxBytes+multipartSlack)
	}

	fh, err := c.FormFile(s.opts.FieldName)
	if err != nil {
		return nil, formError(err)
	}
	if s.opts.MaxBytes > 0 && fh.Size > s.opts.MaxBytes {
		return nil, entity.ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrMalformedUpload, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrMalformedUpload, err)
	}

	mimeType := fh.Header.Get(echo.HeaderContentType)
	if mimeType == "" || mimeType == echo.MIMEOctetStream {
		mimeType = http.DetectContentType(data)
	}
	// В data URI идёт только сам тип, без параметров клиента
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}

	return &entity.UploadedImage{
		FieldName: s.opts.FieldName,
		Filename:  fh.Filename,
		MIMEType:  mimeType,
		Data:      data,
	}, nil
}

func formError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return fmt.Errorf("%w: %v", entity.ErrTooLarge, err)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return entity.ErrNoFile
	default:
		return fmt.Errorf("%w: %v", entity.ErrMalformedUpload, err)
	}
}

func (s *Server) clientMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrNoFile):
		return "No file uploaded"
	case errors.Is(err, entity.ErrUnsupportedType):
		return "Unsupported image type"
	case errors.Is(err, entity.ErrTooLarge):
		if s.opts.MaxBytes > 0 {
			return fmt.Sprintf("Image is too large (max %d bytes)", s.opts.MaxBytes)
		}
		return "Image is too large"
	default:
		return "Malformed upload"
	}
}
