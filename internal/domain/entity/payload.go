package entity

// RenderPayload данные для ответа: источник изображения и метки.
// После создания не изменяется.
type RenderPayload struct {
	ImageSrc string
	Labels   LabelResult
}

// NewRenderPayload собирает ответ. Если файл сохранён на диск, используется его URL,
// иначе изображение встраивается как data URI.
func NewRenderPayload(img *UploadedImage, labels LabelResult, storedURL string) *RenderPayload {
	src := storedURL
	if src == "" {
		src = img.DataURI()
	}
	return &RenderPayload{
		ImageSrc: src,
		Labels:   labels.Clone(),
	}
}
