package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"todo-app/internal/model"
	"todo-app/internal/tasks"
)

const dateLayout = "Jan 2, 2006"

func (m appModel) View() string {
	w := m.contentWidth()
	switch m.act.ctrl.State() {
	case tasks.StateLoading:
		return m.viewLoading(w)
	case tasks.StateErrored:
		return m.viewError(w)
	}

	stats := m.act.ctrl.Stats()
	top := []string{
		m.viewHeader(stats, w),
		m.viewNav(w),
		m.viewForm(w),
		m.viewControls(w),
	}
	if stats.Completed > 0 {
		top = append(top, m.viewClearButton(stats.Completed))
	}
	head := lipgloss.JoinVertical(lipgloss.Left, top...)
	footer := m.viewHelp()

	listH := 0
	if m.height > 0 {
		listH = m.height - lipgloss.Height(head) - lipgloss.Height(footer) - 1
		if listH < 3 {
			listH = 3
		}
	}
	body := m.viewList(m.visible(), w, listH)
	return lipgloss.JoinVertical(lipgloss.Left, head, body, "", footer)
}

func (m appModel) viewHeader(st model.Stats, width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("My Tasks")
	counts := styleMuted().Render(fmt.Sprintf("Total: %d  Active: %d  Completed: %d", st.Total, st.Active, st.Completed))
	gap := width - lipgloss.Width(title) - lipgloss.Width(counts)
	if gap < 2 {
		return title + "\n" + counts
	}
	return title + strings.Repeat(" ", gap) + counts
}

func (m appModel) viewNav(width int) string {
	labels := map[model.Filter]string{
		model.FilterAll:       "All",
		model.FilterActive:    "Active",
		model.FilterCompleted: "Completed",
	}
	tab := lipgloss.NewStyle().Padding(0, 1)
	active := tab.Bold(true).Background(colorAccent).Foreground(colorAccentFg)

	parts := make([]string, 0, len(model.Filters))
	for i, f := range model.Filters {
		label := fmt.Sprintf("%d %s", i+1, labels[f])
		if f == m.filter {
			parts = append(parts, active.Render(label))
			continue
		}
		parts = append(parts, tab.Foreground(colorMuted).Render(label))
	}
	nav := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	route := styleMuted().Render(m.filter.Route())
	if gap := width - lipgloss.Width(nav) - lipgloss.Width(route); gap > 0 {
		nav += strings.Repeat(" ", gap) + route
	}
	rule := styleMuted().Render(strings.Repeat(glyphHRule(), width))
	return nav + "\n" + rule
}

func (m appModel) viewForm(width int) string {
	inputW := width - 10
	counter := func(n, limit int) string {
		return styleMuted().Render(fmt.Sprintf("%d/%d", n, limit))
	}

	titleLine := renderInputLine(inputW, m.title.View()) + " " +
		counter(utf8.RuneCountInString(m.title.Value()), model.MaxTitleLen)
	if !m.formExpanded() {
		return titleLine
	}
	desc := lipgloss.JoinHorizontal(lipgloss.Bottom, m.desc.View(), " ",
		counter(utf8.RuneCountInString(m.desc.Value()), model.MaxDescriptionLen))
	hint := styleMuted().Render("enter add task " + glyphBullet() + " esc cancel")
	return lipgloss.JoinVertical(lipgloss.Left, titleLine, desc, hint)
}

func (m appModel) viewControls(width int) string {
	label := "Sort: " + m.sort.Label()
	search := renderInputLine(width-lipgloss.Width(label)-2, m.searchInput.View())
	return search + "  " + styleMuted().Render(label)
}

func (m appModel) viewClearButton(n int) string {
	button := lipgloss.NewStyle().
		Foreground(colorDanger).
		Bold(true).
		Render(fmt.Sprintf("[ Clear Completed (%d) ]", n))
	return button + " " + styleMuted().Render("C")
}

func (m appModel) viewList(view []model.Task, width, height int) string {
	if len(view) == 0 {
		return m.viewEmpty(width)
	}
	cards := make([]string, len(view))
	for i, t := range view {
		cards[i] = m.renderCard(t, i == m.cursor, width)
	}
	if height <= 0 {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	start, end := visibleRange(cards, m.cursor, height)
	return lipgloss.JoinVertical(lipgloss.Left, cards[start:end]...)
}

// visibleRange picks the window of cards around cursor that fits in height lines.
func visibleRange(cards []string, cursor, height int) (int, int) {
	if cursor < 0 || cursor >= len(cards) {
		cursor = 0
	}
	used := lipgloss.Height(cards[cursor])
	start, end := cursor, cursor+1
	for start > 0 && used+lipgloss.Height(cards[start-1]) <= height {
		start--
		used += lipgloss.Height(cards[start])
	}
	for end < len(cards) && used+lipgloss.Height(cards[end]) <= height {
		used += lipgloss.Height(cards[end])
		end++
	}
	return start, end
}

func (m appModel) renderCard(t model.Task, selected bool, width int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Padding(0, 1).
		Width(width - 2)
	if selected {
		box = box.BorderForeground(colorSelectedBorder)
	}
	inner := width - 4

	check := lipgloss.NewStyle().Foreground(colorMuted).Render(glyphCheckbox(t.Completed))
	if t.Completed {
		check = lipgloss.NewStyle().Foreground(colorSuccess).Render(glyphCheckbox(true))
	}
	titleW := inner - lipgloss.Width(check) - 1

	var title string
	if m.focus == focusEdit && t.ID == m.editID {
		title = renderInputLine(titleW, m.editInput.View())
	} else {
		st := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
		if t.Completed {
			st = st.Strikethrough(true).Bold(false).Foreground(colorMuted)
		}
		title = st.Render(truncateLine(t.Title, titleW))
	}

	lines := []string{check + " " + title}
	if d := renderDescription(t.Description, inner, m.currentTheme()); d != "" {
		lines = append(lines, d)
	}
	lines = append(lines, styleMuted().Render(cardMeta(t)))
	return box.Render(strings.Join(lines, "\n"))
}

func cardMeta(t model.Task) string {
	meta := "Created: " + formatDate(t.CreatedAt)
	if t.CompletedAt != nil {
		meta += " " + glyphBullet() + " Completed: " + formatDate(*t.CompletedAt)
	}
	return meta
}

func formatDate(ts time.Time) string {
	return ts.Local().Format(dateLayout)
}

func (m appModel) viewEmpty(width int) string {
	head, sub := "No tasks yet", "Add your first task to get started!"
	if m.search != "" {
		head, sub = "No matching tasks", "Try adjusting your search terms"
	}
	body := lipgloss.NewStyle().Bold(true).Render(head) + "\n" + styleMuted().Render(sub)
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Padding(1, 0).Render(body)
}

func (m appModel) viewLoading(width int) string {
	body := m.spinner.View() + " Loading your tasks..."
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Padding(2, 0).Render(body)
}

func (m appModel) viewError(width int) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(colorDanger).Render("Error")
	msg := lipgloss.NewStyle().Width(width - 4).Align(lipgloss.Center).Render(m.act.ctrl.ErrorMessage())
	button := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("[ Try Again ]") +
		" " + styleMuted().Render("r")
	quit := styleMuted().Render("q quit")
	body := lipgloss.JoinVertical(lipgloss.Center, head, "", msg, "", button, quit)
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Padding(2, 0).Render(body)
}

func (m appModel) viewHelp() string {
	var keys help.KeyMap = m.keys
	if m.focus != focusList {
		keys = m.fkeys
	}
	return m.help.View(keys)
}
