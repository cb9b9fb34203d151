package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/tormodhaugland/cim/internal/model"
)

// DefaultMinTermLength is the shortest search term that narrows the list.
const DefaultMinTermLength = 3

// FilterEngine narrows a list by case-insensitive substring match on the name.
type FilterEngine struct {
	MinLength int
}

// Apply returns items unchanged when term is shorter than MinLength runes.
// Otherwise it returns, in order, the items whose name contains term.
func (f FilterEngine) Apply(items []model.ItemView, term string) []model.ItemView {
	minLen := f.MinLength
	if minLen <= 0 {
		minLen = DefaultMinTermLength
	}
	if utf8.RuneCountInString(term) < minLen {
		return items
	}

	needle := strings.ToLower(term)
	filtered := make([]model.ItemView, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Filter applies the default engine.
func Filter(items []model.ItemView, term string) []model.ItemView {
	return FilterEngine{MinLength: DefaultMinTermLength}.Apply(items, term)
}
