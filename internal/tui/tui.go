// Package tui is the interactive task list: a routing shell over three views of the same
// collection, an add form, search, sort and per-task cards.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"todo-app/internal/store"
	"todo-app/internal/tasks"
)

type Options struct {
	KV store.KV
	// Seed fills an empty collection on start. Nil disables seeding.
	Seed   tasks.SeedSource
	Logger *log.Logger

	// Route is the initial view: / | /active | /completed.
	Route     string
	Debounce  time.Duration
	Locale    string
	SeedLimit int

	// Clock and id generator overrides for the controller (tests).
	Now   func() time.Time
	NewID func() string
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyGlyphPreference()

	m, err := newAppModel(opts)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(appModel); ok {
		fm.act.close()
	} else {
		m.act.close()
	}
	return err
}
