// Package publish writes the task list as plain Markdown files.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"todo-app/internal/model"
)

type WriteOptions struct {
	Overwrite bool
	// HTML also writes index.html and tasks/<id>.html.
	HTML   bool
	Render RenderOptions
}

type WriteResult struct {
	Written []string `json:"written"`
}

// Write renders <toDir>/index.md and one <toDir>/tasks/<id>.md page per task (plus .html twins
// when opt.HTML is set).
func Write(tasks []model.Task, stats model.Stats, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	pagesDir := filepath.Join(toDir, "tasks")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	for _, t := range tasks {
		if strings.ContainsAny(t.ID, `/\`) || t.ID == "" || t.ID == "." || t.ID == ".." {
			return WriteResult{}, errors.New("unsafe task id for a file name: " + t.ID)
		}
	}

	// Stop on first error.
	var written []string
	put := func(path, content string) error {
		if err := writeFile(path, []byte(content), opt.Overwrite); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := put(indexPath, RenderIndexMarkdown(tasks, stats, opt.Render)); err != nil {
		return WriteResult{}, err
	}
	if opt.HTML {
		ro := opt.Render
		ro.LinkExt = ".html"
		page, err := RenderHTMLPage(indexTitle(ro), RenderIndexMarkdown(tasks, stats, ro))
		if err != nil {
			return WriteResult{}, err
		}
		if err := put(filepath.Join(toDir, "index.html"), page); err != nil {
			return WriteResult{}, err
		}
	}

	for _, t := range tasks {
		md := RenderTaskMarkdown(t)
		if err := put(filepath.Join(pagesDir, t.ID+".md"), md); err != nil {
			return WriteResult{}, err
		}
		if !opt.HTML {
			continue
		}
		page, err := RenderHTMLPage(t.Title, md)
		if err != nil {
			return WriteResult{}, err
		}
		if err := put(filepath.Join(pagesDir, t.ID+".html"), page); err != nil {
			return WriteResult{}, err
		}
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
