package cmd

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/tormodhaugland/cim/internal/catalog"
	"github.com/tormodhaugland/cim/internal/catalogdb"
	"github.com/tormodhaugland/cim/internal/config"
	"github.com/tormodhaugland/cim/internal/httpapi"
	"github.com/tormodhaugland/cim/internal/logging"
)

// session bundles what every catalog command needs.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	backend catalog.Backend
	closer  func() error
}

func (s *session) Close() {
	if s.closer != nil {
		_ = s.closer()
	}
	_ = s.logger.Sync()
}

// openSession loads the config, opens the file logger and connects the
// configured backend.
func openSession() (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewFile(cfg.Log.Level, cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	backend, closer, err := openBackend(cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Debug("backend ready", zap.String("kind", cfg.Backend.Kind))

	return &session{cfg: cfg, logger: logger, backend: backend, closer: closer}, nil
}

func openBackend(cfg *config.Config) (catalog.Backend, func() error, error) {
	switch cfg.Backend.Kind {
	case config.BackendHTTP:
		client, err := httpapi.NewClient(cfg.Backend.BaseURL, cfg.Timeout())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create client: %w", err)
		}
		return client, nil, nil
	default:
		db, err := catalogdb.Open(cfg.DBPath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		return db, db.Close, nil
	}
}

// openLocalDB opens the SQLite catalog regardless of the configured backend.
func openLocalDB() (*config.Config, *catalogdb.DB, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := catalogdb.Open(cfg.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cfg, db, nil
}

// newStore builds a store whose notifications are printed to stderr and
// logged.
func (s *session) newStore() (catalog.Store, *cliNotifier) {
	printer := &cliNotifier{w: os.Stderr}
	opts := s.cfg.StoreOptions()
	opts.Logger = s.logger
	return catalog.NewStore(s.backend, logging.NewNotifier(s.logger, printer), opts), printer
}

// cliNotifier prints notifications and counts errors so commands can set
// their exit status.
type cliNotifier struct {
	w      io.Writer
	errors int
}

func (n *cliNotifier) Notify(title, message string, severity catalog.Severity) {
	prefix := ""
	switch severity {
	case catalog.SeverityError:
		n.errors++
		prefix = "error: "
	case catalog.SeveritySuccess:
		prefix = "ok: "
	}
	if message == "" {
		fmt.Fprintf(n.w, "%s%s\n", prefix, title)
		return
	}
	fmt.Fprintf(n.w, "%s%s: %s\n", prefix, title, message)
}

// loadCatalog runs the initial load and fails when it did not succeed.
func loadCatalog(store catalog.Store) (catalog.Store, error) {
	store = catalog.Drain(store.Load())
	if err := store.State().Err; err != nil {
		return store, err
	}
	return store, nil
}

// runOpenDetail opens the detail for id and waits for the fetch.
func runOpenDetail(store catalog.Store, id string) catalog.Store {
	store, cmd := store.OpenDetail(id)
	return catalog.Drain(store, cmd)
}

// drainSubmit submits the selection and waits for the result.
func drainSubmit(store catalog.Store) catalog.Store {
	return catalog.Drain(store.SubmitImport())
}
