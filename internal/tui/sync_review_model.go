package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/sotsync/internal/tui/ui"
)

const (
	listWidth     = 28
	minPaneWidth  = 20
	minPaneHeight = 5
	chromeHeight  = 8 // title, summary, pane border, help
)

// syncReviewModel is the Bubble Tea model for sync review.
type syncReviewModel struct {
	plans     []DevicePlan
	cursor    int
	viewport  viewport.Model
	styles    ui.Styles
	keys      ui.KeyMap
	width     int
	height    int
	approved  bool
	cancelled bool
}

func newSyncReviewModel(plans []DevicePlan) syncReviewModel {
	m := syncReviewModel{
		plans:  plans,
		styles: ui.DefaultStyles(),
		keys:   ui.DefaultKeyMap(),
		width:  80,
		height: 24,
	}
	m.viewport = viewport.New(m.paneWidth(), m.paneHeight())
	m.refreshPane()
	return m
}

// Cursor returns the selected device index (for testing).
func (m syncReviewModel) Cursor() int {
	return m.cursor
}

// Init initializes the model.
func (m syncReviewModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages.
func (m syncReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.paneWidth()
		m.viewport.Height = m.paneHeight()
		m.refreshPane()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Approve):
			m.approved = true
			return m, tea.Quit

		case m.keys.IsUp(msg):
			if m.cursor > 0 {
				m.cursor--
				m.refreshPane()
			}
			return m, nil

		case m.keys.IsDown(msg):
			if m.cursor < len(m.plans)-1 {
				m.cursor++
				m.refreshPane()
			}
			return m, nil

		case m.keys.IsScroll(msg):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View renders the model.
func (m syncReviewModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Sync Review"))
	b.WriteString("\n")

	if len(m.plans) == 0 {
		b.WriteString(m.styles.Help.Render("No devices to review."))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Help.Render("Press q or Esc to exit"))
		return b.String()
	}

	total := 0
	for _, p := range m.plans {
		total += len(p.Commands)
	}
	b.WriteString(m.styles.Help.Render(fmt.Sprintf("%d devices, %d commands to apply", len(m.plans), total)))
	b.WriteString("\n\n")

	row := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderDevices(),
		m.styles.Pane.Render(m.viewport.View()),
	)
	b.WriteString(row)
	b.WriteString("\n")

	b.WriteString(m.styles.Help.Render("↑/k ↓/j device • pgup/pgdn scroll • a/Enter apply • q/Esc cancel"))
	return b.String()
}

func (m syncReviewModel) renderDevices() string {
	lines := make([]string, 0, len(m.plans))
	for i, p := range m.plans {
		line := fmt.Sprintf("%s (%d)", p.Device, len(p.Commands))
		if len(line) > listWidth-4 {
			line = line[:listWidth-7] + "..."
		}
		if i == m.cursor {
			lines = append(lines, m.styles.DeviceActive.Render("> "+line))
			continue
		}
		lines = append(lines, m.styles.Device.Render("  "+line))
	}
	return lipgloss.NewStyle().Width(listWidth).Render(strings.Join(lines, "\n"))
}

// refreshPane loads the selected device's commands into the viewport.
func (m *syncReviewModel) refreshPane() {
	if len(m.plans) == 0 {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderCommands(m.plans[m.cursor]))
	m.viewport.GotoTop()
}

func (m syncReviewModel) renderCommands(p DevicePlan) string {
	negations := make(map[string]struct{}, len(p.Negations))
	for _, n := range p.Negations {
		negations[n] = struct{}{}
	}
	additions := make(map[string]struct{}, len(p.Additions))
	for _, a := range p.Additions {
		additions[a] = struct{}{}
	}

	lines := []string{m.styles.Subtitle.Render(fmt.Sprintf("%s (%s)", p.Device, p.Platform))}
	if len(p.Commands) == 0 {
		lines = append(lines, m.styles.Help.Render("no changes"))
	}
	for _, c := range p.Commands {
		if _, ok := negations[c]; ok {
			lines = append(lines, m.styles.Negation.Render("- "+c))
			continue
		}
		if _, ok := additions[c]; ok {
			lines = append(lines, m.styles.Addition.Render("+ "+c))
			continue
		}
		lines = append(lines, m.styles.Wrapper.Render("  "+c))
	}
	for _, e := range p.Errors {
		lines = append(lines, m.styles.Error.Render(e))
	}
	return strings.Join(lines, "\n")
}

func (m syncReviewModel) paneWidth() int {
	return max(m.width-listWidth-4, minPaneWidth)
}

func (m syncReviewModel) paneHeight() int {
	return max(m.height-chromeHeight, minPaneHeight)
}
