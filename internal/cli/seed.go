package cli

import (
	"github.com/spf13/cobra"

	"todo-app/internal/tasks"
)

type seedReport struct {
	State  string `json:"state"`
	Seeded int    `json:"seeded"`
	Total  int    `json:"total"`
	Error  string `json:"error,omitempty"`
}

func newSeedCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fetch starter tasks from the remote API when the list is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("limit") {
				app.cfg.API.SeedLimit = limit
				if err := app.cfg.Validate(); err != nil {
					return writeErr(cmd, err)
				}
			}
			ctrl, err := loadController(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ctrl.Close()

			before := len(ctrl.Tasks())
			fetchErr := ctrl.SeedIfEmpty(cmd.Context(), newAPIClient(app))

			rep := seedReport{
				State: ctrl.State().String(),
				Total: len(ctrl.Tasks()),
			}
			rep.Seeded = rep.Total - before
			if ctrl.State() == tasks.StateErrored {
				rep.Error = ctrl.ErrorMessage()
			}
			if err := writeOut(cmd, app, rep); err != nil {
				return err
			}
			return fetchErr
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of remote tasks to request")
	return cmd
}
