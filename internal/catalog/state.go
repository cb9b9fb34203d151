package catalog

import "github.com/tormodhaugland/cim/internal/model"

// ModalState is the detail modal. CurrentDetail is nil while the detail
// request is outstanding.
type ModalState struct {
	Open          bool
	CurrentItem   *model.Item
	CurrentDetail *model.ItemDetail
}

// State is one snapshot of the catalog. Transitions build a new State; slices
// and the selection held by a snapshot are never modified afterwards.
type State struct {
	AllItems      []model.ItemView
	FilteredItems []model.ItemView
	SearchTerm    string
	Selection     Selection
	IsLoading     bool
	Err           error // last load or import failure
	Modal         ModalState
}

// NewState returns the empty initial state.
func NewState() State {
	return State{Selection: NewSelection()}
}

// ImportDisabled reports whether there is nothing to import.
func (s State) ImportDisabled() bool {
	return s.Selection.Len() == 0
}

// ErrorMessage returns the retained error text, or "".
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// SelectedItems returns the selected items in catalog order.
func (s State) SelectedItems() []model.Item {
	var items []model.Item
	for _, view := range s.AllItems {
		if view.IsSelected {
			items = append(items, view.Item)
		}
	}
	return items
}

// Lookup returns the item with id from the full list.
func (s State) Lookup(id string) (model.Item, bool) {
	for _, view := range s.AllItems {
		if view.ID == id {
			return view.Item, true
		}
	}
	return model.Item{}, false
}
