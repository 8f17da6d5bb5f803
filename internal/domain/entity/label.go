package entity

import "fmt"

// Label описание, найденное на изображении, и уверенность провайдера
type Label struct {
	Description string  // текстовое описание ("Cat", "Whiskers")
	Score       float64 // уверенность, обычно в диапазоне [0, 1]
}

// Percent форматирует уверенность как "87.34%"
func (l Label) Percent() string {
	return fmt.Sprintf("%.2f%%", l.Score*100)
}

// LabelResult упорядоченный список меток в порядке провайдера.
// Пустой результат допустим и означает "ничего не найдено".
type LabelResult []Label

// Descriptions возвращает только описания, сохраняя порядок.
func (r LabelResult) Descriptions() []string {
	out := make([]string, 0, len(r))
	for _, l := range r {
		out = append(out, l.Description)
	}
	return out
}

// Clone возвращает независимую копию результата.
func (r LabelResult) Clone() LabelResult {
	out := make(LabelResult, len(r))
	copy(out, r)
	return out
}
