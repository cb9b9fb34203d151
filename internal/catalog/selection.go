package catalog

import (
	"sort"

	"github.com/tormodhaugland/cim/internal/model"
)

// Selection is an immutable set of item ids chosen for import.
// With and Without return new sets and never modify the receiver.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns a selection holding ids.
func NewSelection(ids ...string) Selection {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Selection{ids: set}
}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids sorted.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// With returns a copy of s that also holds id.
func (s Selection) With(id string) Selection {
	if s.Has(id) {
		return s
	}
	next := make(map[string]struct{}, len(s.ids)+1)
	for k := range s.ids {
		next[k] = struct{}{}
	}
	next[id] = struct{}{}
	return Selection{ids: next}
}

// Without returns a copy of s that does not hold id.
func (s Selection) Without(id string) Selection {
	if !s.Has(id) {
		return s
	}
	next := make(map[string]struct{}, len(s.ids))
	for k := range s.ids {
		if k != id {
			next[k] = struct{}{}
		}
	}
	return Selection{ids: next}
}

// Toggle sets the selection flag of one item and returns the new state with
// the filtered view regenerated. Unknown ids leave the state unchanged so the
// selection never names an item missing from the list.
func Toggle(state State, filter FilterEngine, id string, checked bool) State {
	idx := -1
	for i, item := range state.AllItems {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state
	}

	if checked {
		state.Selection = state.Selection.With(id)
	} else {
		state.Selection = state.Selection.Without(id)
	}

	all := make([]model.ItemView, len(state.AllItems))
	copy(all, state.AllItems)
	all[idx].IsSelected = checked

	state.AllItems = all
	state.FilteredItems = filter.Apply(all, state.SearchTerm)
	return state
}

// Reset clears the selection and every selection flag, then re-applies the filter.
func Reset(state State, filter FilterEngine) State {
	all := make([]model.ItemView, len(state.AllItems))
	for i, item := range state.AllItems {
		item.IsSelected = false
		all[i] = item
	}

	state.Selection = NewSelection()
	state.AllItems = all
	state.FilteredItems = filter.Apply(all, state.SearchTerm)
	return state
}
