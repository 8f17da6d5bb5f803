package entity

import "errors"

// Ошибки клиента: обрабатываются на месте и превращаются в аккуратный ответ.
var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image is too large")
	ErrMalformedUpload = errors.New("malformed upload")
)

var clientInputErrors = []error{ErrNoFile, ErrUnsupportedType, ErrTooLarge, ErrMalformedUpload}

// UpstreamError сбой вызова провайдера меток. Сеть, авторизация и битое изображение
// не различаются.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "label detection failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsClientInput сообщает, что ошибка вызвана входными данными клиента
func IsClientInput(err error) bool {
	for _, target := range clientInputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsUpstream сообщает, что ошибка пришла от провайдера меток
func IsUpstream(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}
