package model

import "unicode/utf8"

// Item is one catalog record eligible for import. Identity is ID.
type Item struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
	ImageURL string  `json:"imageUrl" yaml:"image_url"`
}

// IDLength returns the length of the external identifier in runes.
func (i Item) IDLength() int {
	return utf8.RuneCountInString(i.ID)
}

// ItemView is an Item projected for rendering with its selection flag.
type ItemView struct {
	Item
	IsSelected bool `json:"isSelected"`
}

// NewItemViews wraps items as unselected views.
func NewItemViews(items []Item) []ItemView {
	views := make([]ItemView, len(items))
	for i, item := range items {
		views[i] = ItemView{Item: item}
	}
	return views
}

// Items strips the selection flag from views.
func Items(views []ItemView) []Item {
	items := make([]Item, len(views))
	for i, v := range views {
		items[i] = v.Item
	}
	return items
}

// ItemDetail is the extended detail shown for a single item.
type ItemDetail struct {
	Description string `json:"description"`
}

// Field names an upstream detail record may use for the description.
// The second spelling is a known upstream typo and is only read as a fallback.
const (
	FieldDescription     = "description"
	FieldDescriptionTypo = "descripton"
)

// DescriptionFields lists the description keys in priority order.
var DescriptionFields = []string{FieldDescription, FieldDescriptionTypo}

// DetailRecord is the raw detail payload returned by a backend, keyed by
// upstream field name.
type DetailRecord map[string]any

// Field returns the first non-empty string value among keys, in order.
// Non-string values are skipped. A whitespace-only value counts as present.
func (r DetailRecord) Field(keys ...string) string {
	for _, key := range keys {
		v, ok := r[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		return s
	}
	return ""
}

// Detail converts the record into an ItemDetail, reading the description
// through the prioritized accessor.
func (r DetailRecord) Detail() ItemDetail {
	return ItemDetail{Description: r.Field(DescriptionFields...)}
}
