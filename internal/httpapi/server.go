// Package httpapi exposes a catalog.Backend over HTTP and provides the
// matching client.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tormodhaugland/cim/internal/catalog"
	"github.com/tormodhaugland/cim/internal/catalogdb"
	"github.com/tormodhaugland/cim/internal/model"
)

const maxImportBody = 1 << 20

// importRequest is the POST /api/imports body.
type importRequest struct {
	Items []model.Item `json:"items"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

// Server serves a Backend over the REST surface used by Client.
type Server struct {
	backend catalog.Backend
	logger  *zap.Logger
	router  chi.Router
}

// NewServer builds the router for backend.
func NewServer(backend catalog.Backend, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{backend: backend, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", s.handleListItems)
		r.Get("/items/{id}/detail", s.handleDetail)
		r.Post("/imports", s.handleImport)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.backend.ListItems(r.Context())
	if err != nil {
		s.fail(w, r, err, "failed to load items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "invalid_id", "item id is required")
		return
	}
	record, err := s.backend.FetchDetail(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "failed to load item detail")
		return
	}
	if record == nil {
		record = model.DetailRecord{}
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBody))
	if err := dec.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "invalid_body", "request body must be a JSON object with items")
		return
	}
	if len(req.Items) == 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "empty_import", "no items to import")
		return
	}
	if err := s.backend.SubmitImport(r.Context(), req.Items); err != nil {
		s.fail(w, r, err, "import failed")
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{Imported: len(req.Items)})
}

// fail maps backend errors onto the error envelope. Unknown items are 404;
// everything else is a 500 with a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, catalogdb.ErrNotFound) || errors.Is(err, ErrNotFound) {
		writeError(r.Context(), w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	s.logger.Error(message,
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	writeError(r.Context(), w, http.StatusInternalServerError, "internal", message)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", ww.BytesWritten()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			s.logger.Warn("request completed", fields...)
		default:
			s.logger.Info("request completed", fields...)
		}
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()))
				writeError(r.Context(), w, http.StatusInternalServerError, "internal", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
