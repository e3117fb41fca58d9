package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"todo-app/internal/api"
)

// The remote commands exercise the demo service's write endpoints. They never touch local tasks.
func newRemoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Demo calls against the remote todo API",
	}
	cmd.AddCommand(newRemoteCreateCmd(app))
	cmd.AddCommand(newRemoteUpdateCmd(app))
	cmd.AddCommand(newRemoteDeleteCmd(app))
	return cmd
}

func newRemoteCreateCmd(app *App) *cobra.Command {
	var title string
	var completed bool
	var userID int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "POST /todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			out, err := newAPIClient(app).CreateTask(cmd.Context(), api.RemoteTodo{
				UserID:    userID,
				Title:     title,
				Completed: completed,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().BoolVar(&completed, "completed", false, "Mark as completed")
	cmd.Flags().IntVar(&userID, "user-id", 1, "Owning user id")
	return cmd
}

func newRemoteUpdateCmd(app *App) *cobra.Command {
	var title string
	var completed bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "PATCH /todos/<id>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch api.TodoPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("completed") {
				patch.Completed = &completed
			}
			if patch.Title == nil && patch.Completed == nil {
				return writeErr(cmd, errors.New("nothing to update (pass --title and/or --completed)"))
			}
			out, err := newAPIClient(app).UpdateTask(cmd.Context(), args[0], patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().BoolVar(&completed, "completed", false, "Completion state")
	return cmd
}

func newRemoteDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "DELETE /todos/<id>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient(app).DeleteTask(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "deleted": true})
		},
	}
}
