package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"todo-app/internal/logging"
	"todo-app/internal/model"
	"todo-app/internal/store"
	"todo-app/internal/tasks"
)

type focus int

const (
	focusList focus = iota
	focusTitle
	focusDescription
	focusSearch
	focusEdit
)

// activation is one mounted task list. Try Again replaces it with a fresh one.
type activation struct {
	ctrl   *tasks.Controller
	cancel context.CancelFunc
}

func (a *activation) close() {
	if a.cancel != nil {
		a.cancel()
	}
	a.ctrl.Close()
}

type seedResultMsg struct {
	act    *activation
	ticket tasks.SeedTicket
	tasks  []model.Task
	err    error
}

type searchDebounceMsg struct{ seq int }

type appModel struct {
	opts   Options
	logger *log.Logger
	act    *activation
	theme  *store.Binding[model.Theme]

	keys    keyMap
	fkeys   formKeys
	help    help.Model
	spinner spinner.Model

	width  int
	height int

	filter model.Filter
	sort   model.SortKey
	// search is the applied term; searchInput may hold a newer one still debouncing.
	search    string
	searchSeq int

	focus  focus
	cursor int
	editID string

	title       textinput.Model
	desc        textarea.Model
	searchInput textinput.Model
	editInput   textinput.Model
}

func newAppModel(opts Options) (appModel, error) {
	if opts.KV == nil {
		return appModel{}, fmt.Errorf("tui: no store")
	}
	filter, err := model.FilterForRoute(opts.Route)
	if err != nil {
		return appModel{}, err
	}

	m := appModel{
		opts:    opts,
		logger:  logging.OrDiscard(opts.Logger),
		keys:    defaultKeyMap(),
		fkeys:   defaultFormKeys(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		filter:  filter,
		sort:    model.SortNewest,
	}
	m.theme = store.Bind(opts.KV, store.KeyTheme, DefaultTheme(), store.WithLogger(m.logger))
	applyTheme(m.currentTheme())
	m.act = &activation{ctrl: m.newController()}

	m.title = textinput.New()
	m.title.Placeholder = "What needs to be done?"
	m.title.CharLimit = model.MaxTitleLen
	m.title.Prompt = ""

	m.desc = textarea.New()
	m.desc.Placeholder = "Add a description (optional)"
	m.desc.CharLimit = model.MaxDescriptionLen
	m.desc.ShowLineNumbers = false
	m.desc.SetHeight(3)

	m.searchInput = textinput.New()
	m.searchInput.Placeholder = "Search tasks..."
	m.searchInput.Prompt = ""

	m.editInput = textinput.New()
	m.editInput.CharLimit = model.MaxTitleLen
	m.editInput.Prompt = ""

	m.resizeInputs()
	return m, nil
}

func (m appModel) newController() *tasks.Controller {
	return tasks.New(m.opts.KV,
		tasks.WithLogger(m.logger),
		tasks.WithLocale(m.opts.Locale),
		tasks.WithSeedLimit(m.opts.SeedLimit),
		tasks.WithClock(m.opts.Now),
		tasks.WithIDGenerator(m.opts.NewID),
	)
}

func (m appModel) Init() tea.Cmd { return m.seedCmd() }

// seedCmd starts the one-shot seed for the current activation. The fetch runs off the event
// loop; its result comes back as a seedResultMsg.
func (m appModel) seedCmd() tea.Cmd {
	if m.opts.Seed == nil {
		return nil
	}
	act := m.act
	ticket, ok := act.ctrl.BeginSeed()
	if !ok {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	act.cancel = cancel

	src := m.opts.Seed
	limit := act.ctrl.SeedLimit()
	fetch := func() tea.Msg {
		seed, err := src.FetchTasks(ctx, limit)
		return seedResultMsg{act: act, ticket: ticket, tasks: seed, err: err}
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeInputs()
		return m, nil

	case seedResultMsg:
		if msg.act != m.act {
			// Result for an activation that was already replaced.
			return m, nil
		}
		m.act.ctrl.FinishSeed(msg.ticket, msg.tasks, msg.err)
		m.clampCursor()
		return m, nil

	case searchDebounceMsg:
		if msg.seq == m.searchSeq {
			m.search = m.searchInput.Value()
			m.cursor = 0
		}
		return m, nil

	case spinner.TickMsg:
		if m.act.ctrl.State() != tasks.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.act.ctrl.State() {
		case tasks.StateLoading:
			if key.Matches(msg, m.keys.Quit) {
				return m.quit()
			}
			return m, nil
		case tasks.StateErrored:
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m.quit()
			case key.Matches(msg, m.keys.Retry):
				return m.retry()
			}
			return m, nil
		}

		switch m.focus {
		case focusTitle, focusDescription:
			return m.updateForm(msg)
		case focusSearch:
			return m.updateSearch(msg)
		case focusEdit:
			return m.updateEdit(msg)
		}
		return m.updateList(msg)
	}

	// Cursor blink and similar input messages.
	return m.updateFocused(msg)
}

func (m appModel) quit() (tea.Model, tea.Cmd) {
	m.act.close()
	return m, tea.Quit
}

func (m appModel) retry() (tea.Model, tea.Cmd) {
	m.act.close()
	m.act = &activation{ctrl: m.newController()}
	m.cursor = 0
	m.logger.Info("retrying task load")
	return m, m.seedCmd()
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.act.ctrl
	view := m.visible()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(view)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextRoute):
		m.setFilter(stepFilter(m.filter, 1))
	case key.Matches(msg, m.keys.PrevRoute):
		m.setFilter(stepFilter(m.filter, -1))
	case key.Matches(msg, m.keys.RouteAll):
		m.setFilter(model.FilterAll)
	case key.Matches(msg, m.keys.RouteActive):
		m.setFilter(model.FilterActive)
	case key.Matches(msg, m.keys.RouteDone):
		m.setFilter(model.FilterCompleted)
	case key.Matches(msg, m.keys.Add):
		m.focus = focusTitle
		cmd := m.title.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Sort):
		m.sort = m.sort.Next()
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := selectedTask(view, m.cursor); ok {
			ctrl.ToggleComplete(t.ID)
		}
	case key.Matches(msg, m.keys.Edit):
		if t, ok := selectedTask(view, m.cursor); ok && !t.Completed {
			m.editID = t.ID
			m.editInput.SetValue(t.Title)
			m.editInput.CursorEnd()
			m.focus = focusEdit
			cmd := m.editInput.Focus()
			return m, cmd
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := selectedTask(view, m.cursor); ok {
			ctrl.Remove(t.ID)
		}
	case key.Matches(msg, m.keys.Clear):
		if ctrl.Stats().Completed > 0 {
			n := ctrl.ClearCompleted()
			m.logger.Debug("cleared completed tasks", "count", n)
		}
	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.clampCursor()
	return m, nil
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.fkeys.Cancel):
		m.resetForm()
		return m, nil
	case key.Matches(msg, m.fkeys.Submit):
		if _, ok := m.act.ctrl.Add(m.title.Value(), m.desc.Value()); ok {
			m.resetForm()
			m.cursor = 0
		}
		return m, nil
	case key.Matches(msg, m.fkeys.Next):
		if !m.formExpanded() {
			return m, nil
		}
		if m.focus == focusTitle {
			m.focus = focusDescription
			m.title.Blur()
			cmd := m.desc.Focus()
			return m, cmd
		}
		m.focus = focusTitle
		m.desc.Blur()
		cmd := m.title.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	if m.focus == focusDescription {
		if key.Matches(msg, m.fkeys.Newline) {
			// enter is reserved for submit; the textarea inserts a newline on enter.
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		}
		m.desc, cmd = m.desc.Update(msg)
		return m, cmd
	}
	m.title, cmd = m.title.Update(msg)
	return m, cmd
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.fkeys.Cancel), key.Matches(msg, m.fkeys.Submit):
		m.searchInput.Blur()
		m.focus = focusList
		return m, nil
	case key.Matches(msg, m.fkeys.Clear):
		m.searchInput.SetValue("")
		m.searchSeq++
		m.search = ""
		m.cursor = 0
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.debounceSearch())
}

// debounceSearch schedules the current input to be applied after the quiet period. Only the
// newest schedule is honored.
func (m *appModel) debounceSearch() tea.Cmd {
	m.searchSeq++
	seq := m.searchSeq
	fire := func(time.Time) tea.Msg { return searchDebounceMsg{seq: seq} }
	if m.opts.Debounce <= 0 {
		return func() tea.Msg { return fire(time.Time{}) }
	}
	return tea.Tick(m.opts.Debounce, fire)
}

func (m appModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.fkeys.Cancel):
		m.endEdit()
		return m, nil
	case key.Matches(msg, m.fkeys.Submit):
		m.act.ctrl.EditTitle(m.editID, m.editInput.Value())
		m.endEdit()
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

func (m appModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		m.title, cmd = m.title.Update(msg)
	case focusDescription:
		m.desc, cmd = m.desc.Update(msg)
	case focusSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case focusEdit:
		m.editInput, cmd = m.editInput.Update(msg)
	}
	return m, cmd
}

// visible is the derived presentation sequence for the current route, search and sort.
func (m appModel) visible() []model.Task {
	return m.act.ctrl.View(m.filter, m.search, m.sort)
}

func (m *appModel) setFilter(f model.Filter) {
	if f != m.filter {
		m.filter = f
		m.cursor = 0
	}
}

func (m *appModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m appModel) formExpanded() bool {
	return strings.TrimSpace(m.title.Value()) != ""
}

func (m *appModel) resetForm() {
	m.title.Reset()
	m.title.Blur()
	m.desc.Reset()
	m.desc.Blur()
	m.focus = focusList
}

func (m *appModel) endEdit() {
	m.editID = ""
	m.editInput.Reset()
	m.editInput.Blur()
	m.focus = focusList
}

func (m appModel) currentTheme() model.Theme {
	if t, err := model.ParseTheme(string(m.theme.Get())); err == nil {
		return t
	}
	return model.ThemeLight
}

func (m *appModel) toggleTheme() {
	next := m.currentTheme().Toggle()
	_ = m.theme.Set(next)
	applyTheme(next)
}

func (m *appModel) resizeInputs() {
	w := m.contentWidth() - 12
	if w < 10 {
		w = 10
	}
	m.title.Width = w
	m.searchInput.Width = w
	m.editInput.Width = w
	m.desc.SetWidth(w)
	m.help.Width = m.contentWidth()
}

func (m appModel) contentWidth() int {
	switch {
	case m.width <= 0:
		return 80
	case m.width > 100:
		return 100
	default:
		return m.width
	}
}

func stepFilter(f model.Filter, delta int) model.Filter {
	n := len(model.Filters)
	for i, x := range model.Filters {
		if x == f {
			return model.Filters[((i+delta)%n+n)%n]
		}
	}
	return model.FilterAll
}

func selectedTask(view []model.Task, cursor int) (model.Task, bool) {
	if cursor < 0 || cursor >= len(view) {
		return model.Task{}, false
	}
	return view[cursor], true
}
