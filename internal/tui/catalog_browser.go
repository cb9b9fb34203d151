package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tormodhaugland/cim/internal/catalog"
	"github.com/tormodhaugland/cim/internal/logging"
	"github.com/tormodhaugland/cim/internal/model"
)

// spinnerTickMsg is sent to animate the loading spinner.
type spinnerTickMsg struct{}

// toastTickMsg is sent to expire toasts.
type toastTickMsg struct{}

// spinnerFrames defines the animation frames for the loading spinner.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	spinnerInterval = 100 * time.Millisecond
	toastInterval   = time.Second
)

// CatalogModel is the interactive catalog browser. All state transitions go
// through the embedded catalog.Store; the model only adds cursor, search box
// and modal scrolling.
type CatalogModel struct {
	store    catalog.Store
	toasts   *toastQueue
	scroller *itemScroller
	loadCmd  tea.Cmd

	searchInput textinput.Model
	searching   bool
	detail      viewport.Model

	width        int
	height       int
	spinnerFrame int
	spinning     bool
	quitting     bool

	spinnerInterval time.Duration
	toastInterval   time.Duration
}

// NewCatalogModel creates the browser and issues the initial load. Every
// notification is shown as a toast and logged to logger.
func NewCatalogModel(backend catalog.Backend, opts catalog.Options, logger *zap.Logger) CatalogModel {
	toasts := newToastQueue()
	if opts.Logger == nil {
		opts.Logger = logger
	}
	store := catalog.NewStore(backend, logging.NewNotifier(logger, toasts), opts)

	ti := textinput.New()
	ti.Placeholder = "search (3+ characters)"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 30

	m := CatalogModel{
		toasts:          toasts,
		scroller:        newItemScroller(10),
		searchInput:     ti,
		detail:          viewport.New(40, 10),
		spinnerInterval: spinnerInterval,
		toastInterval:   toastInterval,
	}
	m.store, m.loadCmd = store.Load()
	m.spinning = true
	return m
}

// State returns the current catalog state.
func (m CatalogModel) State() catalog.State {
	return m.store.State()
}

// Init implements tea.Model.
func (m CatalogModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd, m.spinnerTick())
}

// Update implements tea.Model.
func (m CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Leave room for the header, footer and borders
		visibleHeight := msg.Height - 9
		if visibleHeight < 3 {
			visibleHeight = 3
		}
		m.scroller.setHeight(visibleHeight)
		m.detail.Width = max(20, msg.Width/2-6)
		m.detail.Height = visibleHeight
		m.refreshDetail()
		return m, nil

	case catalog.ItemsLoadedMsg, catalog.DetailFetchedMsg, catalog.ImportSubmittedMsg:
		var cmd tea.Cmd
		m.store, cmd = m.store.Update(msg)
		return m.afterStore(cmd)

	case spinnerTickMsg:
		if m.State().IsLoading {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
			return m, m.spinnerTick()
		}
		m.spinning = false
		return m, nil

	case toastTickMsg:
		m.toasts.prune()
		if m.toasts.len() > 0 {
			return m, m.toastTick()
		}
		m.toasts.ticking = false
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceOut) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		if m.State().Modal.Open {
			return m.handleModalKeys(msg)
		}
		return m.handleBrowseKeys(msg)
	}

	return m, nil
}

// afterStore syncs the view with the store and schedules the spinner and
// toast ticks the new state needs.
func (m CatalogModel) afterStore(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.scroller.setItems(m.State().FilteredItems)
	m.refreshDetail()

	cmds := []tea.Cmd{cmd}
	if m.State().IsLoading && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinnerTick())
	}
	if m.toasts.len() > 0 && !m.toasts.ticking {
		m.toasts.ticking = true
		cmds = append(cmds, m.toastTick())
	}
	return m, tea.Batch(cmds...)
}

func (m CatalogModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.store = m.store.SetSearchTerm("")
		return m.afterStore(nil)

	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if term := m.searchInput.Value(); !strings.EqualFold(term, m.State().SearchTerm) {
		m.store = m.store.SetSearchTerm(term)
	}
	return m.afterStore(cmd)
}

func (m CatalogModel) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Close), key.Matches(msg, keys.Detail), key.Matches(msg, keys.Quit):
		m.store = m.store.CloseDetail()
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m CatalogModel) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.scroller.moveUp()

	case key.Matches(msg, keys.Down):
		m.scroller.moveDown()

	case key.Matches(msg, keys.Top):
		m.scroller.moveToTop()

	case key.Matches(msg, keys.Bottom):
		m.scroller.moveToBottom()

	case key.Matches(msg, keys.Search):
		m.searching = true
		m.searchInput.SetValue(m.State().SearchTerm)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, keys.Close):
		if m.State().SearchTerm != "" {
			m.searchInput.SetValue("")
			m.store = m.store.SetSearchTerm("")
			return m.afterStore(nil)
		}

	case key.Matches(msg, keys.Toggle):
		if item, ok := m.scroller.current(); ok {
			m.store = m.store.ToggleSelection(item.ID, !item.IsSelected)
			return m.afterStore(nil)
		}

	case key.Matches(msg, keys.All):
		for _, item := range m.State().FilteredItems {
			if !item.IsSelected {
				m.store = m.store.ToggleSelection(item.ID, true)
			}
		}
		return m.afterStore(nil)

	case key.Matches(msg, keys.None):
		m.store = m.store.ClearSelection()
		return m.afterStore(nil)

	case key.Matches(msg, keys.Detail):
		if item, ok := m.scroller.current(); ok {
			var cmd tea.Cmd
			m.store, cmd = m.store.OpenDetail(item.ID)
			m.detail.GotoTop()
			return m.afterStore(cmd)
		}

	case key.Matches(msg, keys.Import):
		var cmd tea.Cmd
		m.store, cmd = m.store.SubmitImport()
		return m.afterStore(cmd)

	case key.Matches(msg, keys.Reload):
		var cmd tea.Cmd
		m.store, cmd = m.store.Load()
		return m.afterStore(cmd)
	}

	return m, nil
}

func (m CatalogModel) spinnerTick() tea.Cmd {
	return tea.Tick(m.spinnerInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m CatalogModel) toastTick() tea.Cmd {
	return tea.Tick(m.toastInterval, func(time.Time) tea.Msg {
		return toastTickMsg{}
	})
}

// refreshDetail re-renders the modal body into the viewport.
func (m *CatalogModel) refreshDetail() {
	modal := m.State().Modal
	if !modal.Open || modal.CurrentItem == nil {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(renderDetail(*modal.CurrentItem, modal.CurrentDetail, m.detail.Width))
}

func renderDetail(item model.Item, detail *model.ItemDetail, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(item.Name) + "\n\n")
	sb.WriteString(fmt.Sprintf("ID:     %s\n", item.ID))
	sb.WriteString(fmt.Sprintf("Price:  %s\n", priceStyle.Render(formatPrice(item.Price))))
	if item.ImageURL != "" {
		sb.WriteString(fmt.Sprintf("Image:  %s\n", item.ImageURL))
	}
	sb.WriteString("\n")

	switch {
	case detail == nil:
		sb.WriteString(helpStyle.Render("Loading description..."))
	case detail.Description == "":
		sb.WriteString(helpStyle.Render("No description."))
	default:
		sb.WriteString(lipgloss.NewStyle().Width(max(10, width)).Render(detail.Description))
	}
	return sb.String()
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}

// View implements tea.Model.
func (m CatalogModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	leftWidth := m.width/2 - 2
	rightWidth := m.width - leftWidth - 4
	paneHeight := m.height - 5

	state := m.State()
	left := activePaneStyle
	right := paneStyle
	if state.Modal.Open {
		left, right = paneStyle, activePaneStyle
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		left.Width(leftWidth).Height(paneHeight).Render(m.renderListPane()),
		right.Width(rightWidth).Height(paneHeight).Render(m.renderDetailPane()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), main, m.renderFooter())
}

func (m CatalogModel) renderHeader() string {
	state := m.State()
	header := titleStyle.Render("Catalog")
	header += helpStyle.Render(fmt.Sprintf("  %d/%d items", len(state.FilteredItems), len(state.AllItems)))
	if state.IsLoading {
		header += "  " + spinnerFrames[m.spinnerFrame%len(spinnerFrames)] + " loading"
	}
	return header
}

func (m CatalogModel) renderListPane() string {
	var sb strings.Builder
	state := m.State()

	switch {
	case m.searching:
		sb.WriteString(m.searchInput.View() + "\n")
	case state.SearchTerm != "":
		sb.WriteString(helpStyle.Render(fmt.Sprintf("Search: %s (esc to clear)", state.SearchTerm)) + "\n")
	}

	if len(state.FilteredItems) == 0 {
		switch {
		case state.IsLoading:
			sb.WriteString(helpStyle.Render("Loading catalog..."))
		case len(state.AllItems) == 0:
			sb.WriteString(helpStyle.Render("Catalog is empty."))
		default:
			sb.WriteString(helpStyle.Render("No items match."))
		}
		return sb.String()
	}

	start, end := m.scroller.visibleRange()
	for i := start; i < end; i++ {
		sb.WriteString(m.renderItem(m.scroller.items[i], i == m.scroller.cursor) + "\n")
	}
	if len(m.scroller.items) > m.scroller.height {
		sb.WriteString(helpStyle.Render(fmt.Sprintf("(%d/%d)", m.scroller.cursor+1, len(m.scroller.items))))
	}
	return sb.String()
}

func (m CatalogModel) renderItem(item model.ItemView, isCursor bool) string {
	check := "[ ] "
	if item.IsSelected {
		check = "[x] "
	}
	line := fmt.Sprintf("%s%s  %s", check, item.Name, priceStyle.Render(formatPrice(item.Price)))
	if isCursor {
		line = selectedItemStyle.Render(line)
	}
	return line
}

func (m CatalogModel) renderDetailPane() string {
	if m.State().Modal.Open {
		return headerStyle.Render("Details") + "\n" + m.detail.View()
	}
	item, ok := m.scroller.current()
	if !ok {
		return helpStyle.Render("No item selected")
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(item.Name) + "\n")
	sb.WriteString(fmt.Sprintf("ID:     %s\n", item.ID))
	sb.WriteString(fmt.Sprintf("Price:  %s\n", formatPrice(item.Price)))
	sb.WriteString("\n" + helpStyle.Render("enter: show details"))
	return sb.String()
}

func (m CatalogModel) renderFooter() string {
	state := m.State()
	var lines []string
	if msg := state.ErrorMessage(); msg != "" {
		lines = append(lines, errorStyle.Render(msg))
	}
	lines = append(lines, m.toasts.render()...)
	lines = append(lines, m.renderHelp())
	return strings.Join(lines, "\n")
}

func (m CatalogModel) renderHelp() string {
	var help string
	switch {
	case m.searching:
		help = "type to search • enter: confirm • esc: clear"
	case m.State().Modal.Open:
		help = "j/k: scroll • esc: close"
	default:
		help = "j/k: nav • space: select • a: all • n: none • /: search • enter: details • r: reload • q: quit"
		if m.State().ImportDisabled() {
			help = helpStyle.Render("i: import (select items first)") + " • " + help
		} else {
			help = "i: import • " + help
		}
	}

	if count := m.State().Selection.Len(); count > 0 {
		help = fmt.Sprintf("[%d selected] %s", count, help)
	}
	return helpStyle.Render(help)
}

// RunCatalogBrowser runs the interactive browser until the user quits and
// returns the final state.
func RunCatalogBrowser(backend catalog.Backend, opts catalog.Options, logger *zap.Logger) (catalog.State, error) {
	useStderrRenderer()

	m := NewCatalogModel(backend, opts, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stderr))

	finalModel, err := p.Run()
	if err != nil {
		return catalog.State{}, err
	}
	return finalModel.(CatalogModel).State(), nil
}
