package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dyike/cortexmem/internal/display"
	"github.com/dyike/cortexmem/internal/fetcher"
	"github.com/dyike/cortexmem/internal/i18n"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	forward := true

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(m.width, m.contentHeight())
		m.renderer = display.NewRenderer(nil, m.width-2)
		m.ready = true
		m.contentDirty = true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			forward = false
			if m.source.Refresh() {
				m.notice = i18n.Refreshing
			} else {
				m.notice = i18n.RefreshThrottle
			}
		case key.Matches(msg, keys.Language):
			forward = false
			m.lang = m.lang.Toggle()
			m.contentDirty = true
		}

	case stateMsg:
		m.state = fetcher.State(msg)
		m.notice = ""
		m.contentDirty = true
		cmds = append(cmds, waitForState(m.source.Updates()))

	case LanguageMsg:
		m.lang = i18n.Language(msg)
		m.contentDirty = true

	case clockMsg:
		forward = false
		m.contentDirty = true
		cmds = append(cmds, tickClock())
	}

	if m.ready {
		if m.contentDirty {
			m.rebuildContent()
			m.contentDirty = false
		}
		// scroll keys and resizes go to the viewport
		if forward {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}
