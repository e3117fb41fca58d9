package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"todo-app/internal/model"
)

type RenderOptions struct {
	// Title heads the index page. Defaults to "My Tasks".
	Title string
	// Now stamps the index page; zero omits the line.
	Now time.Time
	// LinkExt is the extension of linked task pages. Defaults to ".md".
	LinkExt string
}

const dateLayout = "Jan 2, 2006"

// RenderIndexMarkdown renders tasks as a GitHub-style checklist linking to the per-task pages.
func RenderIndexMarkdown(tasks []model.Task, stats model.Stats, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + indexTitle(opt))
	writeLn("")
	writeLn(fmt.Sprintf("Total: %d · Active: %d · Completed: %d", stats.Total, stats.Active, stats.Completed))
	if !opt.Now.IsZero() {
		writeLn("")
		writeLn("_Exported " + opt.Now.UTC().Format(time.RFC3339) + "_")
	}
	writeLn("")

	if len(tasks) == 0 {
		writeLn("_No tasks._")
		return buf.String()
	}
	ext := opt.LinkExt
	if ext == "" {
		ext = ".md"
	}
	for _, t := range tasks {
		writeLn(fmt.Sprintf("- %s [%s](tasks/%s%s)", checkbox(t.Completed), escapeLinkText(t.Title), t.ID, ext))
	}
	return buf.String()
}

// RenderTaskMarkdown renders one task page. The description is Markdown already and is copied as is.
func RenderTaskMarkdown(t model.Task) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + t.ID)
	if t.Completed {
		writeLn("- Status: completed")
	} else {
		writeLn("- Status: active")
	}
	writeLn("- Created: " + t.CreatedAt.Format(dateLayout))
	if t.CompletedAt != nil {
		writeLn("- Completed: " + t.CompletedAt.Format(dateLayout))
	}

	if d := strings.TrimSpace(t.Description); d != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(d)
	}
	return buf.String()
}

func indexTitle(opt RenderOptions) string {
	if t := strings.TrimSpace(opt.Title); t != "" {
		return t
	}
	return "My Tasks"
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func escapeLinkText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`)
	return r.Replace(strings.TrimSpace(s))
}
