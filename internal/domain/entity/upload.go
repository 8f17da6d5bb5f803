package entity

import (
	"encoding/base64"
	"mime"
	"strings"
)

// UploadedImage загруженный файл, живёт только в рамках одного запроса
type UploadedImage struct {
	FieldName string // имя поля формы
	Filename  string // исходное имя файла от клиента
	MIMEType  string // заявленный клиентом тип, не доверяем
	Data      []byte // содержимое файла
}

// Size возвращает размер содержимого в байтах
func (u *UploadedImage) Size() int64 {
	return int64(len(u.Data))
}

// DataURI кодирует изображение как data:<mime>;base64,<...>
func (u *UploadedImage) DataURI() string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(u.MIMEType) + base64.StdEncoding.EncodedLen(len(u.Data)))
	b.WriteString("data:")
	b.WriteString(u.MIMEType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(u.Data))
	return b.String()
}

// UploadPolicy ограничения на принимаемые файлы
type UploadPolicy struct {
	AllowedTypes []string
	MaxBytes     int64 // 0: без ограничения
}

// Allows проверяет MIME-тип по белому списку. Параметры (; charset=...) игнорируются.
func (p UploadPolicy) Allows(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	for _, allowed := range p.AllowedTypes {
		if strings.EqualFold(mediaType, strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// Validate проверяет изображение перед отправкой провайдеру.
func (p UploadPolicy) Validate(img *UploadedImage) error {
	if img == nil || len(img.Data) == 0 {
		return ErrNoFile
	}
	if p.MaxBytes > 0 && img.Size() > p.MaxBytes {
		return ErrTooLarge
	}
	if !p.Allows(img.MIMEType) {
		return ErrUnsupportedType
	}
	return nil
}
