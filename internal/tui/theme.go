package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"todo-app/internal/model"
)

// Every color is an AdaptiveColor pair; applyTheme decides which side lipgloss picks.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted          = ac("240", "243")
	colorSurfaceFg      = ac("235", "252")
	colorAccent         = ac("27", "75")
	colorAccentFg       = ac("255", "235")
	colorSuccess        = ac("28", "78")
	colorDanger         = ac("160", "203")
	colorCardBorder     = ac("250", "240")
	colorSelectedBorder = ac("27", "75")
	colorInputBg        = ac("254", "234")
	colorCodeBg         = ac("252", "236")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts TERM/COLORTERM over
// termenv's probe, which under-reports on some terminals.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

func applyTheme(t model.Theme) {
	lipgloss.SetHasDarkBackground(t == model.ThemeDark)
}

// DefaultTheme guesses the theme for a first run, before one is persisted.
//
// Priority:
// 1) TODO_TUI_THEME=light|dark
// 2) COLORFGBG heuristic ("fg;bg", bg 0-6 is dark)
// 3) light
func DefaultTheme() model.Theme {
	if t, err := model.ParseTheme(os.Getenv("TODO_TUI_THEME")); err == nil {
		return t
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg < 7 {
				return model.ThemeDark
			}
			return model.ThemeLight
		}
	}
	return model.ThemeLight
}
