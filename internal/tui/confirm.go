package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tormodhaugland/cim/internal/model"
)

var (
	confirmLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	confirmHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// maxConfirmLines caps how many items the import confirmation lists.
const maxConfirmLines = 10

type ConfirmResult struct {
	Confirmed bool
	Aborted   bool
}

type confirmModel struct {
	message  string
	lines    []string
	selected bool // true = Yes, false = No
	done     bool
	result   ConfirmResult
}

func newConfirmModel(message string, lines []string) confirmModel {
	return confirmModel{
		message:  message,
		lines:    lines,
		selected: true, // default to Yes
	}
}

// newImportConfirmModel asks whether to import items, listing them.
func newImportConfirmModel(items []model.Item) confirmModel {
	lines := make([]string, 0, min(len(items), maxConfirmLines)+1)
	for i, item := range items {
		if i == maxConfirmLines {
			lines = append(lines, fmt.Sprintf("... and %d more", len(items)-maxConfirmLines))
			break
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", item.Name, item.ID))
	}
	return newConfirmModel(fmt.Sprintf("Import %d item(s)?", len(items)), lines)
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.result.Aborted = true
			m.done = true
			return m, tea.Quit

		case "left", "right", "tab", "h", "l":
			m.selected = !m.selected
			return m, nil

		case "y", "Y":
			m.selected = true
			m.result.Confirmed = true
			m.done = true
			return m, tea.Quit

		case "n", "N":
			m.selected = false
			m.result.Confirmed = false
			m.done = true
			return m, tea.Quit

		case "enter":
			m.result.Confirmed = m.selected
			m.done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	var sb strings.Builder

	sb.WriteString(confirmLabelStyle.Render(m.message) + "\n\n")
	for _, line := range m.lines {
		sb.WriteString("  • " + line + "\n")
	}
	if len(m.lines) > 0 {
		sb.WriteString("\n")
	}

	yesStyle := lipgloss.NewStyle().Padding(0, 2)
	noStyle := lipgloss.NewStyle().Padding(0, 2)

	if m.selected {
		yesStyle = yesStyle.Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0"))
	} else {
		noStyle = noStyle.Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0"))
	}

	sb.WriteString(fmt.Sprintf("  %s  %s\n", yesStyle.Render("Yes"), noStyle.Render("No")))
	sb.WriteString("\n" + confirmHintStyle.Render("←/→: select • enter: confirm • y/n: quick select • esc: cancel"))

	return sb.String()
}

// RunConfirm asks a yes/no question on stderr.
func RunConfirm(message string) (ConfirmResult, error) {
	return runConfirm(newConfirmModel(message, nil))
}

// RunImportConfirm asks on stderr whether items should be imported.
func RunImportConfirm(items []model.Item) (ConfirmResult, error) {
	return runConfirm(newImportConfirmModel(items))
}

func runConfirm(m confirmModel) (ConfirmResult, error) {
	useStderrRenderer()

	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return ConfirmResult{Aborted: true}, err
	}

	return finalModel.(confirmModel).result, nil
}
