package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/cim/internal/catalog"
	"github.com/tormodhaugland/cim/internal/catalogdb"
	"github.com/tormodhaugland/cim/internal/model"
)

var _ catalog.Backend = (*Client)(nil)

// stubBackend returns canned responses.
type stubBackend struct {
	items     []model.Item
	details   map[string]model.DetailRecord
	importErr error
	imported  [][]model.Item
	panicOn   string
}

func (b *stubBackend) ListItems(ctx context.Context) ([]model.Item, error) {
	return b.items, nil
}

func (b *stubBackend) FetchDetail(ctx context.Context, id string) (model.DetailRecord, error) {
	if id == b.panicOn {
		panic("boom")
	}
	record, ok := b.details[id]
	if !ok {
		return nil, catalogdb.ErrNotFound
	}
	return record, nil
}

func (b *stubBackend) SubmitImport(ctx context.Context, items []model.Item) error {
	if b.importErr != nil {
		return b.importErr
	}
	b.imported = append(b.imported, items)
	return nil
}

func newStub() *stubBackend {
	return &stubBackend{
		items: []model.Item{
			{ID: "lamp-01", Name: "Desk Lamp", Price: 19.5},
			{ID: "chair-02", Name: "Office Chair", Price: 120},
		},
		details: map[string]model.DetailRecord{
			"lamp-01":  {"description": "Warm LED lamp"},
			"chair-02": {"descripton": "Ergonomic chair"},
		},
	}
}

func newTestClient(t *testing.T, backend catalog.Backend) *Client {
	t.Helper()
	srv := httptest.NewServer(NewServer(backend, nil))
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return client
}

func TestClientListItems(t *testing.T) {
	client := newTestClient(t, newStub())

	items, err := client.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "lamp-01", items[0].ID)
	assert.Equal(t, 120.0, items[1].Price)
}

func TestClientFetchDetailKeepsRawFields(t *testing.T) {
	client := newTestClient(t, newStub())

	record, err := client.FetchDetail(context.Background(), "chair-02")
	require.NoError(t, err)
	assert.Equal(t, "Ergonomic chair", record["descripton"])
	assert.Equal(t, "Ergonomic chair", record.Detail().Description)
}

func TestClientFetchDetailNotFound(t *testing.T) {
	client := newTestClient(t, newStub())

	_, err := client.FetchDetail(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "not_found", statusErr.Code)
}

func TestClientSubmitImport(t *testing.T) {
	backend := newStub()
	client := newTestClient(t, backend)

	err := client.SubmitImport(context.Background(), backend.items[:1])
	require.NoError(t, err)
	require.Len(t, backend.imported, 1)
	assert.Equal(t, "lamp-01", backend.imported[0][0].ID)
}

func TestClientSubmitImportSurfacesServerMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, http.StatusConflict, "quota", "Import quota exceeded")
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	client, err := NewClient(srv.URL, 0)
	require.NoError(t, err)

	err = client.SubmitImport(context.Background(), []model.Item{{ID: "a", Name: "A"}})
	require.Error(t, err)
	assert.Equal(t, "Import quota exceeded", err.Error())
	assert.Equal(t, "Import quota exceeded", (&catalog.ImportError{Err: err}).Error())
}

func TestClientStatusWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 0)
	require.NoError(t, err)

	_, err = client.ListItems(context.Background())
	require.Error(t, err)
	assert.Equal(t, "server returned status 502", err.Error())
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("  ", time.Second)
	assert.Error(t, err)
}

func TestServerImportValidation(t *testing.T) {
	srv := NewServer(newStub(), nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", "{", "invalid_body"},
		{"empty", `{"items":[]}`, "empty_import"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/imports", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestServerBackendFailureIsGeneric(t *testing.T) {
	backend := newStub()
	backend.importErr = errors.New("disk full at /var/lib/cim")
	srv := NewServer(backend, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/imports", strings.NewReader(`{"items":[{"id":"lamp-01","name":"Desk Lamp"}]}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
	assert.Contains(t, rec.Body.String(), "import failed")
}

func TestServerRecoversPanics(t *testing.T) {
	backend := newStub()
	backend.panicOn = "lamp-01"
	srv := NewServer(backend, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/items/lamp-01/detail", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestServerUnknownRoute(t *testing.T) {
	srv := NewServer(newStub(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestStoreOverHTTPWithSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := catalogdb.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Seed(ctx, []model.SeedItem{
		{ID: "lamp-01", Name: "Desk Lamp", Detail: map[string]any{"descripton": "Warm"}},
		{ID: "an-overly-long-id", Name: "Long One"},
	})
	require.NoError(t, err)

	client := newTestClient(t, db)
	s := catalog.NewStore(client, nil, catalog.DefaultOptions())
	s = catalog.Drain(s.Load())
	require.Len(t, s.State().AllItems, 2)

	s, openCmd := s.OpenDetail("lamp-01")
	s = catalog.Drain(s, openCmd)
	require.NotNil(t, s.State().Modal.CurrentDetail)
	assert.Equal(t, "Warm", s.State().Modal.CurrentDetail.Description)

	s = s.ToggleSelection("lamp-01", true)
	s = catalog.Drain(s.SubmitImport())
	require.NoError(t, s.State().Err)

	imports, err := db.ListImports(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, imports, 1)
}
