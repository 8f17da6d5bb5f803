package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	logging "github.com/ipfs/go-log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	app "image-labeler/internal/application"
)

var log = logging.Logger("web")

//go:embed templates static
var assets embed.FS

// DefaultFieldName поле формы с файлом
const DefaultFieldName = "file"

// Options настройки HTTP-слоя
type Options struct {
	Mode       Mode
	FieldName  string
	MaxBytes   int64  // предел тела запроса, 0: без ограничения
	UploadsDir string // если задан, файлы из него отдаются по /uploads
}

// Server HTTP-фронтенд конвейера разметки
type Server struct {
	echo     *echo.Echo
	labeling *app.LabelingService
	composer *Composer
	opts     Options
}

// NewServer собирает маршруты и middleware
func NewServer(labeling *app.LabelingService, opts Options) (*Server, error) {
	if opts.FieldName == "" {
		opts.FieldName = DefaultFieldName
	}

	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	composer, err := NewComposer(opts.Mode)
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:     echo.New(),
		labeling: labeling,
		composer: composer,
		opts:     opts,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &templateRenderer{templates: tmpl}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/", s.handleIndex)
	e.POST("/uploadImage", s.handleUploadImage)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.StaticFS("/static", echo.MustSubFS(assets, "static"))
	if opts.UploadsDir != "" {
		e.Static("/uploads", opts.UploadsDir)
	}

	return s, nil
}

// ServeHTTP делает Server обычным http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start слушает addr до Shutdown
func (s *Server) Start(addr string) error {
	log.Infof("listening on %s (%s mode)", addr, s.composer.Mode())
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown дожидается завершения активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handleError финальный обработчик: 404 (и 405), ошибки с заявленным статусом и всё остальное как 500.
// Внутренние подробности только в лог.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		// Известный путь с чужим методом отвечает как любой несуществующий маршрут
		if code == http.StatusMethodNotAllowed {
			code = http.StatusNotFound
			c.Response().Header().Del(echo.HeaderAllow)
		}
		message = http.StatusText(code)
		if m, ok := he.Message.(string); ok && code == he.Code && code < http.StatusInternalServerError {
			message = m
		}
	}

	if code >= http.StatusInternalServerError {
		log.Errorw("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "err", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = s.composer.Failure(c, code, message)
	}
	if err != nil {
		log.Errorf("failed to write error response: %s", err)
	}
}
