package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/cim/internal/catalog"
	"github.com/tormodhaugland/cim/internal/model"
)

type fakeBackend struct {
	items     []model.Item
	details   map[string]model.DetailRecord
	detailErr error
	importErr error
	imported  [][]model.Item
}

func (b *fakeBackend) ListItems(ctx context.Context) ([]model.Item, error) {
	return b.items, nil
}

func (b *fakeBackend) FetchDetail(ctx context.Context, id string) (model.DetailRecord, error) {
	if b.detailErr != nil {
		return nil, b.detailErr
	}
	return b.details[id], nil
}

func (b *fakeBackend) SubmitImport(ctx context.Context, items []model.Item) error {
	if b.importErr != nil {
		return b.importErr
	}
	b.imported = append(b.imported, items)
	return nil
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		items: []model.Item{
			{ID: "lamp-01", Name: "Desk Lamp", Price: 19.5},
			{ID: "chair-02", Name: "Office Chair", Price: 120},
			{ID: "lamp-03", Name: "Floor Lamp", Price: 45},
			{ID: "rug-with-a-long-id", Name: "Long Rug", Price: 80},
		},
		details: map[string]model.DetailRecord{
			"lamp-01":  {"description": "Warm LED lamp"},
			"chair-02": {"descripton": "Ergonomic chair"},
		},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg through Update, then runs the returned commands once and
// feeds their catalog messages back. Tick messages are dropped so the
// spinner and toast loops do not run.
func send(t *testing.T, m CatalogModel, msg tea.Msg) CatalogModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(CatalogModel)
	for _, out := range runCmd(cmd) {
		switch out.(type) {
		case catalog.ItemsLoadedMsg, catalog.DetailFetchedMsg, catalog.ImportSubmittedMsg:
			next, _ = m.Update(out)
			m = next.(CatalogModel)
		}
	}
	return m
}

func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func newTestModel(t *testing.T, backend *fakeBackend) CatalogModel {
	t.Helper()
	m := NewCatalogModel(backend, catalog.DefaultOptions(), nil)
	m.spinnerInterval = time.Millisecond
	m.toastInterval = time.Millisecond
	m.searchInput.Cursor.SetMode(cursor.CursorStatic)

	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ := m.Update(m.loadCmd())
	return next.(CatalogModel)
}

func TestCatalogModelLoads(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	state := m.State()
	assert.False(t, state.IsLoading)
	assert.Len(t, state.AllItems, 4)
	assert.Len(t, m.scroller.items, 4)
	assert.Contains(t, m.View(), "Desk Lamp")
}

func TestCatalogModelSearch(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	m = send(t, m, keyRunes("/"))
	require.True(t, m.searching)

	m = send(t, m, keyRunes("LA"))
	assert.Len(t, m.State().FilteredItems, 4, "two characters do not filter")

	m = send(t, m, keyRunes("M"))
	assert.Equal(t, "lam", m.State().SearchTerm)
	assert.Len(t, m.State().FilteredItems, 2)
	assert.Len(t, m.scroller.items, 2)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searching)
	assert.Equal(t, "lam", m.State().SearchTerm)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", m.State().SearchTerm)
	assert.Len(t, m.State().FilteredItems, 4)
}

func TestCatalogModelToggleAndNavigate(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(t, m, keyRunes("j"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})

	state := m.State()
	assert.True(t, state.Selection.Has("lamp-01"))
	assert.True(t, state.Selection.Has("chair-02"))
	assert.True(t, state.AllItems[0].IsSelected)
	assert.Contains(t, m.View(), "[2 selected]")

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, m.State().Selection.Has("chair-02"))

	m = send(t, m, keyRunes("n"))
	assert.True(t, m.State().ImportDisabled())
}

func TestCatalogModelSelectAllVisible(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	m = send(t, m, keyRunes("/"))
	m = send(t, m, keyRunes("lamp"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, keyRunes("a"))

	assert.Equal(t, []string{"lamp-01", "lamp-03"}, m.State().Selection.IDs())
}

func TestCatalogModelImport(t *testing.T) {
	backend := newFakeBackend()
	m := newTestModel(t, backend)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(t, m, keyRunes("i"))

	require.Len(t, backend.imported, 1)
	assert.Equal(t, "lamp-01", backend.imported[0][0].ID)
	assert.True(t, m.State().ImportDisabled())
	assert.Contains(t, m.View(), "Import complete")
}

func TestCatalogModelImportRejected(t *testing.T) {
	backend := newFakeBackend()
	m := newTestModel(t, backend)

	m = send(t, m, keyRunes("G"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(t, m, keyRunes("i"))

	assert.Empty(t, backend.imported)
	assert.True(t, m.State().Selection.Has("rug-with-a-long-id"))
	assert.Contains(t, m.View(), "Long Rug")
	assert.Contains(t, m.View(), "Import rejected")
}

func TestCatalogModelImportFailureShowsError(t *testing.T) {
	backend := newFakeBackend()
	backend.importErr = errors.New("Quota exceeded")
	m := newTestModel(t, backend)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(t, m, keyRunes("i"))

	assert.Equal(t, "Quota exceeded", m.State().ErrorMessage())
	assert.Contains(t, m.View(), "Quota exceeded")
	assert.False(t, m.State().IsLoading)
}

func TestCatalogModelDetailModal(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	m = send(t, m, keyRunes("j"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	modal := m.State().Modal
	require.True(t, modal.Open)
	assert.Equal(t, "chair-02", modal.CurrentItem.ID)
	require.NotNil(t, modal.CurrentDetail)
	assert.Equal(t, "Ergonomic chair", modal.CurrentDetail.Description)
	assert.Contains(t, m.View(), "Ergonomic chair")

	// Keys go to the modal while it is open
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, m.State().ImportDisabled())

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.State().Modal.Open)
	assert.Nil(t, m.State().Modal.CurrentItem)
}

func TestCatalogModelDetailFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.detailErr = errors.New("timeout")
	m := newTestModel(t, backend)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, m.State().Modal.CurrentDetail)
	assert.Equal(t, catalog.DetailUnavailable, m.State().Modal.CurrentDetail.Description)
	assert.Contains(t, m.View(), catalog.DetailUnavailable)
}

func TestCatalogModelShowsDetailBeforeFetchCompletes(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(CatalogModel)
	require.NotNil(t, cmd)

	assert.True(t, m.State().Modal.Open)
	assert.Nil(t, m.State().Modal.CurrentDetail)
	assert.Contains(t, m.View(), "Desk Lamp")
	assert.Contains(t, m.View(), "Loading description...")
}

func TestCatalogModelReloadShowsSpinner(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	next, cmd := m.Update(keyRunes("r"))
	m = next.(CatalogModel)
	require.NotNil(t, cmd)
	assert.True(t, m.State().IsLoading)
	assert.True(t, strings.Contains(m.View(), "loading"))

	next, _ = m.Update(spinnerTickMsg{})
	m = next.(CatalogModel)
	assert.Equal(t, 1, m.spinnerFrame)
}

func TestCatalogModelQuit(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestToastQueueExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	q := newToastQueue()
	q.now = func() time.Time { return now }

	q.Notify("Import complete", "Imported 1 item(s).", catalog.SeveritySuccess)
	q.Notify("Load failed", "boom", catalog.SeverityError)
	assert.Equal(t, 2, q.len())

	now = now.Add(defaultToastTTL + time.Second)
	q.Notify("Nothing to import", "", catalog.SeverityInfo)
	q.prune()
	require.Equal(t, 1, q.len())
	assert.Contains(t, q.render()[0], "Nothing to import")
}

func TestToastQueueKeepsNewest(t *testing.T) {
	q := newToastQueue()
	for i := 0; i < maxToasts+2; i++ {
		q.Notify("t", string(rune('a'+i)), catalog.SeverityInfo)
	}
	require.Equal(t, maxToasts, q.len())
	assert.Equal(t, "e", q.items[maxToasts-1].message)
}

func TestScrollerKeepsCursorOnItem(t *testing.T) {
	views := model.NewItemViews(newFakeBackend().items)
	s := newItemScroller(2)
	s.setItems(views)
	s.moveDown()
	s.moveDown()
	assert.Equal(t, 1, s.scrollOffset)

	s.setItems([]model.ItemView{views[0], views[2]})
	item, ok := s.current()
	require.True(t, ok)
	assert.Equal(t, "lamp-03", item.ID)

	s.setItems(nil)
	_, ok = s.current()
	assert.False(t, ok)
}

func TestImportConfirmModel(t *testing.T) {
	items := make([]model.Item, maxConfirmLines+3)
	for i := range items {
		items[i] = model.Item{ID: "id", Name: "Item"}
	}
	m := newImportConfirmModel(items)
	assert.Contains(t, m.View(), "Import 13 item(s)?")
	assert.Contains(t, m.View(), "... and 3 more")

	next, _ := m.Update(keyRunes("y"))
	assert.True(t, next.(confirmModel).result.Confirmed)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, next.(confirmModel).result.Aborted)
}
