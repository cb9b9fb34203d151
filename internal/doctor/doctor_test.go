package doctor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tormodhaugland/cim/internal/catalogdb"
	"github.com/tormodhaugland/cim/internal/model"
)

type stubBackend struct {
	items   []model.Item
	details map[string]model.DetailRecord
}

func (b *stubBackend) ListItems(ctx context.Context) ([]model.Item, error) {
	return b.items, nil
}

func (b *stubBackend) FetchDetail(ctx context.Context, id string) (model.DetailRecord, error) {
	record, ok := b.details[id]
	if !ok {
		return nil, errors.New("upstream timeout")
	}
	return record, nil
}

func (b *stubBackend) SubmitImport(ctx context.Context, items []model.Item) error {
	return nil
}

func problemKinds(report *Report) map[string]string {
	kinds := make(map[string]string)
	for _, p := range report.Problems {
		kinds[p.ItemID+"/"+p.Kind] = p.Message
	}
	return kinds
}

func TestCheck(t *testing.T) {
	backend := &stubBackend{
		items: []model.Item{
			{ID: "lamp-01", Name: "Desk Lamp"},
			{ID: "chair-02", Name: "Office Chair"},
			{ID: "rug-with-a-long-id", Name: "Long Rug"},
			{ID: "vase-04", Name: "Vase"},
			{ID: "lamp-01", Name: "Desk Lamp (copy)"},
		},
		details: map[string]model.DetailRecord{
			"lamp-01":            {"description": "Warm"},
			"chair-02":           {"descripton": "Ergonomic"},
			"rug-with-a-long-id": {},
		},
	}

	report, err := Check(context.Background(), backend, 13)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}

	if report.Items != 5 {
		t.Errorf("expected 5 items, got %d", report.Items)
	}

	kinds := problemKinds(report)
	expected := []string{
		"chair-02/" + ProblemLegacyDescription,
		"rug-with-a-long-id/" + ProblemIDTooLong,
		"rug-with-a-long-id/" + ProblemMissingDescription,
		"vase-04/" + ProblemDetailUnavailable,
		"lamp-01/" + ProblemDuplicateID,
	}
	for _, key := range expected {
		if _, ok := kinds[key]; !ok {
			t.Errorf("missing problem %s in %v", key, kinds)
		}
	}
	if len(report.Problems) != len(expected) {
		t.Errorf("expected %d problems, got %d: %v", len(expected), len(report.Problems), kinds)
	}

	if msg := kinds["rug-with-a-long-id/"+ProblemIDTooLong]; msg != "id has 18 characters, the limit is 13" {
		t.Errorf("unexpected message: %q", msg)
	}

	fixable := report.Fixable()
	if len(fixable) != 1 || fixable[0].ItemID != "chair-02" {
		t.Errorf("unexpected fixable problems: %+v", fixable)
	}
}

func TestNormalizeDescription(t *testing.T) {
	record := model.DetailRecord{"descripton": "Ergonomic", "sku": "X1"}

	fixed, changed := NormalizeDescription(record)
	if !changed {
		t.Fatal("expected legacy key to be normalized")
	}
	if fixed["description"] != "Ergonomic" || fixed["sku"] != "X1" {
		t.Errorf("unexpected record: %v", fixed)
	}
	if _, ok := fixed["descripton"]; ok {
		t.Error("legacy key should be removed")
	}
	if _, ok := record["description"]; ok {
		t.Error("input record should not be modified")
	}

	if _, changed := NormalizeDescription(model.DetailRecord{"description": "a", "descripton": "b"}); changed {
		t.Error("record with a description should be left alone")
	}
}

func TestFixLegacyDescription(t *testing.T) {
	ctx := context.Background()
	db, err := catalogdb.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Seed(ctx, []model.SeedItem{
		{ID: "chair-02", Name: "Office Chair", Detail: map[string]any{"descripton": "Ergonomic"}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	report, err := Check(ctx, db, 13)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	for _, p := range report.Fixable() {
		if err := Fix(ctx, db, p); err != nil {
			t.Fatalf("Fix error: %v", err)
		}
	}

	record, err := db.FetchDetail(ctx, "chair-02")
	if err != nil {
		t.Fatalf("FetchDetail: %v", err)
	}
	if record["description"] != "Ergonomic" {
		t.Errorf("expected fixed description, got %v", record)
	}

	report, err = Check(ctx, db, 13)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if len(report.Problems) != 0 {
		t.Errorf("expected clean catalog, got %+v", report.Problems)
	}
}

func TestFixRejectsUnfixable(t *testing.T) {
	err := Fix(context.Background(), nil, Problem{ItemID: "x", Kind: ProblemIDTooLong})
	if err == nil {
		t.Fatal("expected error for unfixable problem")
	}
}
