package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 500
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Filter selects which tasks a view shows. Each route of the UI maps to one filter.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("invalid filter %q (expected all|active|completed)", s)
	}
}

// Route returns the path of the view that shows this filter.
func (f Filter) Route() string {
	switch f {
	case FilterActive:
		return "/active"
	case FilterCompleted:
		return "/completed"
	default:
		return "/"
	}
}

func FilterForRoute(route string) (Filter, error) {
	switch strings.TrimSpace(route) {
	case "", "/":
		return FilterAll, nil
	case "/active":
		return FilterActive, nil
	case "/completed":
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("unknown route %q (expected / | /active | /completed)", route)
	}
}

type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortAlphabetical SortKey = "alphabetical"
	SortCompleted    SortKey = "completed"
)

var SortKeys = []SortKey{SortNewest, SortOldest, SortAlphabetical, SortCompleted}

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortAlphabetical, SortCompleted:
		return k, nil
	default:
		return "", fmt.Errorf("invalid sort %q (expected newest|oldest|alphabetical|completed)", s)
	}
}

// Label is the human-readable name shown in the sort selector.
func (k SortKey) Label() string {
	switch k {
	case SortOldest:
		return "Oldest First"
	case SortAlphabetical:
		return "Alphabetical"
	case SortCompleted:
		return "Completed Status"
	default:
		return "Newest First"
	}
}

// Next cycles through SortKeys in display order.
func (k SortKey) Next() SortKey {
	for i, sk := range SortKeys {
		if sk == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortNewest
}

type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("invalid theme %q (expected light|dark)", s)
	}
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
