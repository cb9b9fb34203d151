// Package doctor checks a catalog for items that cannot be imported or
// displayed cleanly, and repairs the ones that can be fixed in place.
package doctor

import (
	"context"
	"fmt"

	"github.com/tormodhaugland/cim/internal/catalog"
	"github.com/tormodhaugland/cim/internal/model"
)

// Problem kinds.
const (
	ProblemIDTooLong          = "id_too_long"
	ProblemDuplicateID        = "duplicate_id"
	ProblemMissingDescription = "missing_description"
	ProblemLegacyDescription  = "legacy_description_key"
	ProblemDetailUnavailable  = "detail_unavailable"
)

type Problem struct {
	ItemID  string `json:"item_id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Fixable bool   `json:"fixable"`
}

type Report struct {
	Items    int       `json:"items"`
	Problems []Problem `json:"problems"`
}

// Fixable returns the problems Fix can repair.
func (r *Report) Fixable() []Problem {
	var fixable []Problem
	for _, p := range r.Problems {
		if p.Fixable {
			fixable = append(fixable, p)
		}
	}
	return fixable
}

// Check lists the catalog and inspects every item's detail record.
func Check(ctx context.Context, backend catalog.Backend, maxIDLength int) (*Report, error) {
	if maxIDLength <= 0 {
		maxIDLength = catalog.DefaultMaxIDLength
	}

	items, err := backend.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	report := &Report{Items: len(items), Problems: make([]Problem, 0)}
	seen := make(map[string]bool, len(items))

	for _, item := range items {
		if seen[item.ID] {
			report.add(item, ProblemDuplicateID, "id appears more than once", false)
			continue
		}
		seen[item.ID] = true

		if item.IDLength() > maxIDLength {
			report.add(item, ProblemIDTooLong,
				fmt.Sprintf("id has %d characters, the limit is %d", item.IDLength(), maxIDLength), false)
		}

		record, err := backend.FetchDetail(ctx, item.ID)
		if err != nil {
			report.add(item, ProblemDetailUnavailable, err.Error(), false)
			continue
		}

		switch {
		case record.Field(model.FieldDescription) != "":
		case record.Field(model.FieldDescriptionTypo) != "":
			report.add(item, ProblemLegacyDescription,
				fmt.Sprintf("description stored under %q", model.FieldDescriptionTypo), true)
		default:
			report.add(item, ProblemMissingDescription, "no description", false)
		}
	}

	return report, nil
}

func (r *Report) add(item model.Item, kind, message string, fixable bool) {
	r.Problems = append(r.Problems, Problem{
		ItemID:  item.ID,
		Name:    item.Name,
		Kind:    kind,
		Message: message,
		Fixable: fixable,
	})
}

// DetailWriter stores a detail record.
type DetailWriter interface {
	FetchDetail(ctx context.Context, id string) (model.DetailRecord, error)
	UpdateDetail(ctx context.Context, id string, record model.DetailRecord) error
}

// Fix repairs one fixable problem.
func Fix(ctx context.Context, w DetailWriter, p Problem) error {
	if p.Kind != ProblemLegacyDescription {
		return fmt.Errorf("%s: %s cannot be fixed automatically", p.ItemID, p.Kind)
	}

	record, err := w.FetchDetail(ctx, p.ItemID)
	if err != nil {
		return fmt.Errorf("%s: %w", p.ItemID, err)
	}

	fixed, changed := NormalizeDescription(record)
	if !changed {
		return nil
	}
	if err := w.UpdateDetail(ctx, p.ItemID, fixed); err != nil {
		return fmt.Errorf("%s: %w", p.ItemID, err)
	}
	return nil
}

// NormalizeDescription moves a description stored under the misspelled key
// to the correct one. The input is not modified.
func NormalizeDescription(record model.DetailRecord) (model.DetailRecord, bool) {
	legacy := record.Field(model.FieldDescriptionTypo)
	if legacy == "" || record.Field(model.FieldDescription) != "" {
		return record, false
	}

	fixed := make(model.DetailRecord, len(record))
	for k, v := range record {
		if k != model.FieldDescriptionTypo {
			fixed[k] = v
		}
	}
	fixed[model.FieldDescription] = legacy
	return fixed, true
}
