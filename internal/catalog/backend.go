// Package catalog keeps a loaded item list, its filtered view and the import
// selection consistent, and orchestrates the load, detail and import calls
// against a Backend.
package catalog

import (
	"context"

	"github.com/tormodhaugland/cim/internal/model"
)

// Backend is the catalog service the store talks to.
type Backend interface {
	// ListItems returns the full importable catalog.
	ListItems(ctx context.Context) ([]model.Item, error)

	// FetchDetail returns the raw detail record for one item.
	FetchDetail(ctx context.Context, id string) (model.DetailRecord, error)

	// SubmitImport imports items as one batch. It either fully succeeds or fails.
	SubmitImport(ctx context.Context, items []model.Item) error
}

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier delivers user-facing notifications. Delivery is fire-and-forget.
type Notifier interface {
	Notify(title, message string, severity Severity)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(title, message string, severity Severity)

// Notify calls f.
func (f NotifierFunc) Notify(title, message string, severity Severity) {
	f(title, message, severity)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, Severity) {}
