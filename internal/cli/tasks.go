package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"todo-app/internal/model"
)

func newListCmd(app *App) *cobra.Command {
	var filter, search, sortKey string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (filtered, searched and sorted like the TUI)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return writeErr(cmd, err)
			}
			k, err := model.ParseSortKey(sortKey)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctrl, err := loadController(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ctrl.View(f, search, k))
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "all|active|completed")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive match on title or description")
	cmd.Flags().StringVar(&sortKey, "sort", "newest", "newest|oldest|alphabetical|completed")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			ctrl, err := loadController(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, ok := ctrl.Add(title, description)
			if !ok {
				return writeErr(cmd, errors.New("task not added"))
			}
			return writeOut(cmd, app, t)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Task title (required, max 200 characters)")
	cmd.Flags().StringVar(&description, "description", "", "Optional description (Markdown, max 500 characters)")
	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Toggle a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := loadController(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			if !ctrl.ToggleComplete(id) {
				return writeErr(cmd, errNotFound("task", id))
			}
			t, _ := ctrl.Find(id)
			return writeOut(cmd, app, t)
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := loadController(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			if !ctrl.Remove(id) {
				return writeErr(cmd, errNotFound("task", id))
			}
			return writeOut(cmd, app, map[string]any{"id": id, "removed": true})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change a task title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := loadController(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			if _, ok := ctrl.Find(id); !ok {
				return writeErr(cmd, errNotFound("task", id))
			}
			if strings.TrimSpace(title) == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			if !ctrl.EditTitle(id, title) {
				return writeErr(cmd, errors.New("title unchanged"))
			}
			t, _ := ctrl.Find(id)
			return writeOut(cmd, app, t)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	return cmd
}

func newClearCompletedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := loadController(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]int{"removed": ctrl.ClearCompleted()})
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show total, active and completed counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := loadController(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ctrl.Stats())
		},
	}
}
