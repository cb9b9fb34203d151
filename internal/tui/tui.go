// Package tui renders the catalog browser and the small prompts used by the
// cim commands.
package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedItemStyle = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("212")).Bold(true)
	paneStyle         = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(0, 1)
	activePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Search   key.Binding
	Toggle   key.Binding
	All      key.Binding
	None     key.Binding
	Detail   key.Binding
	Close    key.Binding
	Import   key.Binding
	Reload   key.Binding
	Quit     key.Binding
	ForceOut key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	All:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
	None:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "none")),
	Detail:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Import:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceOut: key.NewBinding(key.WithKeys("ctrl+c")),
}

// useStderrRenderer renders to stderr so stdout stays clean for command
// output, and detects colors from stderr.
func useStderrRenderer() {
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))
}
