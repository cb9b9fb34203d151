package catalog

import "github.com/tormodhaugland/cim/internal/model"

// DefaultMaxIDLength is the longest external identifier the import accepts.
const DefaultMaxIDLength = 13

// Validate resolves the selection against items and checks every selected
// item's identifier length. Selected ids missing from items are skipped.
// Any violation fails the whole batch with a *ValidationError naming every
// offender; on success the resolved items are returned in catalog order.
func Validate(selection Selection, items []model.ItemView, maxIDLength int) ([]model.Item, error) {
	if maxIDLength <= 0 {
		maxIDLength = DefaultMaxIDLength
	}

	var (
		batch     []model.Item
		offenders []string
	)
	for _, view := range items {
		if !selection.Has(view.ID) {
			continue
		}
		if view.IDLength() > maxIDLength {
			offenders = append(offenders, view.Name)
			continue
		}
		batch = append(batch, view.Item)
	}

	if len(offenders) > 0 {
		return nil, &ValidationError{Names: offenders, MaxLength: maxIDLength}
	}
	return batch, nil
}
