package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tormodhaugland/cim/internal/model"
)

// ItemsLoadedMsg is sent when a ListItems call completes.
type ItemsLoadedMsg struct {
	Items []model.Item
	Err   error
}

// DetailFetchedMsg is sent when a FetchDetail call completes. Seq identifies
// the OpenDetail call that issued it.
type DetailFetchedMsg struct {
	Seq    uint64
	ItemID string
	Record model.DetailRecord
	Err    error
}

// ImportSubmittedMsg is sent when a SubmitImport call completes.
type ImportSubmittedMsg struct {
	Items []model.Item
	Err   error
}

// Options tunes a Store.
type Options struct {
	MinFilterLength    int
	MaxIDLength        int
	DiscardStaleDetail bool          // drop detail responses that are not the latest for the open item
	RequestTimeout     time.Duration // per backend call; 0 means none
	Logger             *zap.Logger
}

// DefaultOptions returns the stock limits.
func DefaultOptions() Options {
	return Options{
		MinFilterLength:    DefaultMinTermLength,
		MaxIDLength:        DefaultMaxIDLength,
		DiscardStaleDetail: true,
		RequestTimeout:     30 * time.Second,
	}
}

// Store orchestrates the catalog state. It is a value: every method returns
// the next Store and leaves the receiver untouched. Backend calls are returned
// as tea.Cmds and their results come back through Update, so all state
// changes happen on the caller's event loop.
type Store struct {
	backend  Backend
	notifier Notifier
	filter   FilterEngine
	opts     Options
	logger   *zap.Logger

	state     State
	pending   int    // outstanding load and import calls
	detailSeq uint64 // last issued detail request
}

// NewStore creates a store with an empty state.
func NewStore(backend Backend, notifier Notifier, opts Options) Store {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxIDLength <= 0 {
		opts.MaxIDLength = DefaultMaxIDLength
	}
	return Store{
		backend:  backend,
		notifier: notifier,
		filter:   FilterEngine{MinLength: opts.MinFilterLength},
		opts:     opts,
		logger:   logger,
		state:    NewState(),
	}
}

// State returns the current snapshot.
func (s Store) State() State {
	return s.state
}

// Load fetches the catalog.
func (s Store) Load() (Store, tea.Cmd) {
	s = s.begin()
	backend := s.backend
	timeout := s.opts.RequestTimeout
	return s, func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()
		items, err := backend.ListItems(ctx)
		return ItemsLoadedMsg{Items: items, Err: err}
	}
}

// SetSearchTerm stores the lower-cased term and recomputes the filtered view.
func (s Store) SetSearchTerm(term string) Store {
	s.state.SearchTerm = strings.ToLower(term)
	s.state.FilteredItems = s.filter.Apply(s.state.AllItems, s.state.SearchTerm)
	return s
}

// ToggleSelection checks or unchecks one item.
func (s Store) ToggleSelection(id string, checked bool) Store {
	s.state = Toggle(s.state, s.filter, id, checked)
	return s
}

// ClearSelection unchecks every item.
func (s Store) ClearSelection() Store {
	s.state = Reset(s.state, s.filter)
	return s
}

// SubmitImport validates the selection and, if it passes, submits it.
// Validation failures abort before any backend call.
func (s Store) SubmitImport() (Store, tea.Cmd) {
	if s.state.ImportDisabled() {
		s.notifier.Notify("Nothing to import", "Select at least one item to import.", SeverityInfo)
		return s, nil
	}

	batch, err := Validate(s.state.Selection, s.state.AllItems, s.opts.MaxIDLength)
	if err != nil {
		s.logger.Info("import rejected", zap.Error(err))
		s.notifier.Notify("Import rejected", err.Error(), SeverityError)
		return s, nil
	}

	s = s.begin()
	backend := s.backend
	timeout := s.opts.RequestTimeout
	return s, func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()
		err := backend.SubmitImport(ctx, batch)
		return ImportSubmittedMsg{Items: batch, Err: err}
	}
}

// Update applies a backend response.
func (s Store) Update(msg tea.Msg) (Store, tea.Cmd) {
	switch msg := msg.(type) {
	case ItemsLoadedMsg:
		return s.loaded(msg), nil
	case ImportSubmittedMsg:
		return s.imported(msg), nil
	case DetailFetchedMsg:
		return s.detailFetched(msg), nil
	}
	return s, nil
}

func (s Store) loaded(msg ItemsLoadedMsg) Store {
	s = s.end()

	if msg.Err != nil {
		err := &LoadError{Err: msg.Err}
		s.logger.Warn("catalog load failed", zap.Error(msg.Err))
		s.state.AllItems = nil
		s.state.FilteredItems = nil
		s.state.Selection = NewSelection()
		s.state.Err = err
		s.notifier.Notify("Load failed", err.Error(), SeverityError)
		return s
	}

	all := model.NewItemViews(msg.Items)
	s.state.AllItems = all
	s.state.FilteredItems = all
	s.state.Selection = NewSelection()
	s.state.Err = nil
	if s.state.SearchTerm != "" {
		s.state.FilteredItems = s.filter.Apply(all, s.state.SearchTerm)
	}
	s.logger.Debug("catalog loaded", zap.Int("items", len(all)))
	return s
}

func (s Store) imported(msg ImportSubmittedMsg) Store {
	s = s.end()

	if msg.Err != nil {
		err := &ImportError{Err: msg.Err}
		s.logger.Warn("import failed", zap.Int("items", len(msg.Items)), zap.Error(msg.Err))
		s.state.Err = err
		s.notifier.Notify("Import failed", err.Error(), SeverityError)
		return s
	}

	s.state = Reset(s.state, s.filter)
	s.state.Err = nil
	s.logger.Info("import submitted", zap.Int("items", len(msg.Items)))
	s.notifier.Notify("Import complete", fmt.Sprintf("Imported %d item(s).", len(msg.Items)), SeveritySuccess)
	return s
}

// begin and end track outstanding calls; IsLoading follows the count so
// overlapping calls never clear it early.
func (s Store) begin() Store {
	s.pending++
	s.state.IsLoading = true
	return s
}

func (s Store) end() Store {
	if s.pending > 0 {
		s.pending--
	}
	s.state.IsLoading = s.pending > 0
	return s
}

func requestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// Drain runs cmd and every command it leads to synchronously, feeding each
// message back through Update. It is the event loop for non-interactive use.
func Drain(s Store, cmd tea.Cmd) Store {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		var follow tea.Cmd
		s, follow = s.Update(msg)
		queue = append(queue, follow)
	}
	return s
}
