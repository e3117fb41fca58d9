package cli

import (
	"time"

	"github.com/spf13/cobra"

	"todo-app/internal/model"
	"todo-app/internal/publish"
)

func newExportCmd(app *App) *cobra.Command {
	var to, filter, sortKey, title string
	var overwrite, asHTML bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the task list as Markdown files (index.md + tasks/<id>.md)",
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
			res, err := publish.Write(ctrl.View(f, "", k), ctrl.Stats(), to, publish.WriteOptions{
				Overwrite: overwrite,
				HTML:      asHTML,
				Render:    publish.RenderOptions{Title: title, Now: time.Now()},
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, res)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory (required)")
	cmd.Flags().StringVar(&filter, "filter", "all", "all|active|completed")
	cmd.Flags().StringVar(&sortKey, "sort", "newest", "newest|oldest|alphabetical|completed")
	cmd.Flags().StringVar(&title, "title", "", "Index page heading (default: My Tasks)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Also write rendered .html pages")
	return cmd
}
