package tui

import (
	"time"

	"github.com/tormodhaugland/cim/internal/catalog"
)

const (
	defaultToastTTL = 4 * time.Second
	maxToasts       = 3
)

type toast struct {
	title    string
	message  string
	severity catalog.Severity
	expires  time.Time
}

// toastQueue is the browser's notifier. It is only touched from Update, so
// it needs no locking.
type toastQueue struct {
	items   []toast
	ttl     time.Duration
	now     func() time.Time
	ticking bool // an expiry tick is scheduled
}

func newToastQueue() *toastQueue {
	return &toastQueue{ttl: defaultToastTTL, now: time.Now}
}

// Notify implements catalog.Notifier. The oldest toast is dropped once the
// queue is full.
func (q *toastQueue) Notify(title, message string, severity catalog.Severity) {
	q.items = append(q.items, toast{
		title:    title,
		message:  message,
		severity: severity,
		expires:  q.now().Add(q.ttl),
	})
	if len(q.items) > maxToasts {
		q.items = q.items[len(q.items)-maxToasts:]
	}
}

// prune drops expired toasts.
func (q *toastQueue) prune() {
	now := q.now()
	kept := q.items[:0]
	for _, t := range q.items {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	q.items = kept
}

func (q *toastQueue) len() int {
	return len(q.items)
}

func (q *toastQueue) render() []string {
	lines := make([]string, 0, len(q.items))
	for _, t := range q.items {
		style := infoStyle
		switch t.severity {
		case catalog.SeverityError:
			style = errorStyle
		case catalog.SeveritySuccess:
			style = successStyle
		}
		line := t.title
		if t.message != "" {
			line += ": " + t.message
		}
		lines = append(lines, style.Render(line))
	}
	return lines
}
