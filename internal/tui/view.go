package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/cortexmem/internal/display"
	"github.com/dyike/cortexmem/internal/i18n"
	"github.com/dyike/cortexmem/internal/view"
)

var statusStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#848E9C")).
	Background(display.PanelBackground()).
	Padding(0, 1)

func (m Model) View() string {
	if !m.ready {
		return "\n  " + m.lang.T(i18n.Loading)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.statusLine())
}

func (m Model) contentHeight() int {
	if m.height <= 1 {
		return 1
	}
	return m.height - 1
}

func (m *Model) rebuildContent() {
	page := view.Build(m.state.Snapshot, m.state.Err, m.lang, m.now(), m.opts)
	m.viewport.SetContent(m.renderer.Text(page))
}

func (m Model) statusLine() string {
	trader := m.state.TraderID
	if trader == "" {
		trader = "-"
	}
	line := m.lang.T(i18n.Trader) + " " + trader
	if !m.state.FetchedAt.IsZero() {
		line += fmt.Sprintf(" · %s %s", m.lang.T(i18n.UpdatedAt), m.state.FetchedAt.Format("15:04:05"))
	}
	if m.notice != "" {
		line += " · " + m.lang.T(m.notice)
	}
	line += " · " + keys.help()
	return statusStyle.Width(m.width).MaxHeight(1).Render(line)
}
