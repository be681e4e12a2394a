package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dyike/cortexmem/internal/display"
	"github.com/dyike/cortexmem/internal/fetcher"
	"github.com/dyike/cortexmem/internal/i18n"
	"github.com/dyike/cortexmem/internal/view"
)

// Source is the polling side of the watch view.
type Source interface {
	Updates() <-chan fetcher.State
	State() fetcher.State
	Refresh() bool
}

type Model struct {
	source Source
	opts   view.Options
	now    func() time.Time

	lang  i18n.Language
	state fetcher.State

	// UI state
	width        int
	height       int
	ready        bool
	notice       i18n.Key
	contentDirty bool

	renderer *display.Renderer
	viewport viewport.Model
}

// Messages

type stateMsg fetcher.State

type clockMsg time.Time

// LanguageMsg switches the display language from outside the program, e.g.
// after a config file reload.
type LanguageMsg i18n.Language

// clockInterval re-renders relative times. It never triggers a fetch.
const clockInterval = 15 * time.Second

func NewModel(source Source, lang i18n.Language, opts view.Options) Model {
	return Model{
		source:   source,
		opts:     opts,
		now:      time.Now,
		lang:     lang,
		state:    source.State(),
		renderer: display.NewRenderer(nil, 80),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.source.Updates()), tickClock())
}

// Commands

func waitForState(ch <-chan fetcher.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ch)
	}
}

func tickClock() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}
