package cli

import (
	"github.com/spf13/cobra"

	"todo-app/internal/model"
	"todo-app/internal/tui"
)

func newThemeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle|reset]",
		Short:     "Show or change the TUI color theme",
		Long:      "Show or change the TUI color theme. reset forgets the stored choice so the terminal default applies again.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadTheme(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cur, err := model.ParseTheme(string(b.Get()))
			if err != nil {
				cur = tui.DefaultTheme()
			}

			if len(args) == 1 {
				switch args[0] {
				case "reset":
					cur = tui.DefaultTheme()
					if err := b.Reset(cur); err != nil {
						return writeErr(cmd, err)
					}
				default:
					next := cur.Toggle()
					if args[0] != "toggle" {
						if next, err = model.ParseTheme(args[0]); err != nil {
							return writeErr(cmd, err)
						}
					}
					if err := b.Set(next); err != nil {
						return writeErr(cmd, err)
					}
					cur = next
				}
			}
			return writeOut(cmd, app, map[string]string{"theme": string(cur)})
		},
	}
}
