package tasks

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"todo-app/internal/model"
)

// Query is the transient view state applied on top of the canonical collection.
type Query struct {
	Filter model.Filter
	Search string
	Sort   model.SortKey
	// Locale drives alphabetical ordering; the zero value sorts for English.
	Locale language.Tag
}

// Derive returns the presentation sequence for q: filter, then search, then a stable sort.
// The input slice and its order are never modified.
func Derive(all []model.Task, q Query) []model.Task {
	out := make([]model.Task, 0, len(all))
	term := strings.ToLower(q.Search)
	for _, t := range all {
		if !matchesFilter(t, q.Filter) {
			continue
		}
		if term != "" && !matchesSearch(t, term) {
			continue
		}
		out = append(out, t)
	}

	switch q.Sort {
	case model.SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case model.SortAlphabetical:
		tag := q.Locale
		if tag == language.Und {
			tag = language.English
		}
		col := collate.New(tag)
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Title, out[j].Title) < 0 })
	case model.SortCompleted:
		sort.SliceStable(out, func(i, j int) bool { return !out[i].Completed && out[j].Completed })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

func matchesFilter(t model.Task, f model.Filter) bool {
	switch f {
	case model.FilterActive:
		return !t.Completed
	case model.FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// term must already be lower-cased.
func matchesSearch(t model.Task, term string) bool {
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), term)
}

// ComputeStats counts over the whole collection, independent of any view.
func ComputeStats(all []model.Task) model.Stats {
	st := model.Stats{Total: len(all)}
	for _, t := range all {
		if t.Completed {
			st.Completed++
		}
	}
	st.Active = st.Total - st.Completed
	return st
}
