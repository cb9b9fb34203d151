package catalogdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tormodhaugland/cim/internal/model"
)

// ErrNotFound is returned for ids that are not in the catalog.
var ErrNotFound = errors.New("item not found")

// ImportRecord is one recorded import batch.
type ImportRecord struct {
	ID        string       `json:"id"`
	ItemCount int          `json:"item_count"`
	CreatedAt time.Time    `json:"created_at"`
	Items     []model.Item `json:"items,omitempty"`
}

// ListItems returns the whole catalog in listing order.
func (db *DB) ListItems(ctx context.Context) ([]model.Item, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, price, image_url FROM items ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// FetchDetail returns the stored detail payload for id. An item without a
// stored payload yields an empty record.
func (db *DB) FetchDetail(ctx context.Context, id string) (model.DetailRecord, error) {
	var payload sql.NullString
	err := db.conn.QueryRowContext(ctx, `
		SELECT d.payload FROM items i
		LEFT JOIN item_details d ON d.item_id = i.id
		WHERE i.id = ?
	`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying detail: %w", err)
	}

	record := model.DetailRecord{}
	if !payload.Valid || payload.String == "" {
		return record, nil
	}
	if err := json.Unmarshal([]byte(payload.String), &record); err != nil {
		return nil, fmt.Errorf("decoding detail for %s: %w", id, err)
	}
	return record, nil
}

// SubmitImport records items as one batch. Every item must exist in the
// catalog; otherwise nothing is written.
func (db *DB) SubmitImport(ctx context.Context, items []model.Item) error {
	_, err := db.RecordImport(ctx, items)
	return err
}

// RecordImport is SubmitImport returning the created batch.
func (db *DB) RecordImport(ctx context.Context, items []model.Item) (*ImportRecord, error) {
	if len(items) == 0 {
		return nil, errors.New("import batch is empty")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	record := &ImportRecord{
		ID:        ulid.Make().String(),
		ItemCount: len(items),
		CreatedAt: time.Now().UTC(),
		Items:     items,
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO imports (id, item_count, created_at) VALUES (?, ?, ?)",
		record.ID, record.ItemCount, record.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting import: %w", err)
	}

	for _, item := range items {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM items WHERE id = ?", item.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, item.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("checking item %s: %w", item.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO import_items (import_id, item_id, name, price, image_url)
			VALUES (?, ?, ?, ?, ?)
		`, record.ID, item.ID, item.Name, item.Price, item.ImageURL); err != nil {
			return nil, fmt.Errorf("inserting import item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return record, nil
}

// Seed upserts items and their detail payloads. Items keep the order given.
func (db *DB) Seed(ctx context.Context, items []model.SeedItem) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var base int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM items").Scan(&base); err != nil {
		return 0, fmt.Errorf("reading positions: %w", err)
	}

	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, name, price, image_url, position, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				price = excluded.price,
				image_url = excluded.image_url,
				updated_at = excluded.updated_at
		`, item.ID, item.Name, item.Price, item.ImageURL, base+i, time.Now())
		if err != nil {
			return 0, fmt.Errorf("upserting item %s: %w", item.ID, err)
		}

		if item.Detail == nil {
			continue
		}
		payload, err := json.Marshal(item.Detail)
		if err != nil {
			return 0, fmt.Errorf("encoding detail for %s: %w", item.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO item_details (item_id, payload) VALUES (?, ?)
			ON CONFLICT(item_id) DO UPDATE SET payload = excluded.payload
		`, item.ID, string(payload)); err != nil {
			return 0, fmt.Errorf("upserting detail for %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}
	return len(items), nil
}

// ListImports returns recorded batches, newest first, without their items.
func (db *DB) ListImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, item_count, created_at FROM imports
		ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying imports: %w", err)
	}
	defer rows.Close()

	var records []ImportRecord
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.ID, &r.ItemCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning import: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ImportItems returns the items recorded for one batch.
func (db *DB) ImportItems(ctx context.Context, importID string) ([]model.Item, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_id, name, price, image_url FROM import_items
		WHERE import_id = ? ORDER BY rowid
	`, importID)
	if err != nil {
		return nil, fmt.Errorf("querying import items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning import item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateDetail replaces the stored detail payload of an existing item.
func (db *DB) UpdateDetail(ctx context.Context, id string, record model.DetailRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding detail for %s: %w", id, err)
	}

	var exists int
	err = db.conn.QueryRowContext(ctx, "SELECT 1 FROM items WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("checking item %s: %w", id, err)
	}

	if _, err := db.conn.ExecContext(ctx, `
		INSERT INTO item_details (item_id, payload) VALUES (?, ?)
		ON CONFLICT(item_id) DO UPDATE SET payload = excluded.payload
	`, id, string(payload)); err != nil {
		return fmt.Errorf("updating detail for %s: %w", id, err)
	}
	return nil
}
