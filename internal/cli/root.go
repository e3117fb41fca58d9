package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"todo-app/internal/api"
	"todo-app/internal/config"
	"todo-app/internal/format"
	"todo-app/internal/logging"
	"todo-app/internal/model"
	"todo-app/internal/store"
	"todo-app/internal/tasks"
	"todo-app/internal/tui"
)

type App struct {
	Dir        string
	ConfigPath string
	Backend    string
	LogLevel   string
	Route      string
	PrettyJSON bool
	Format     string

	cfg    *config.Config
	logger *log.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "todo",
		Short:        "Local-first task list (TUI + scriptable CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive task list
  todo

  # Open on the Active view
  todo --route /active

  # Scriptable commands
  todo add --title "Buy milk" --description "2 liters"
  todo list --filter active --sort alphabetical
  todo toggle <task-id>
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data directory (default: $TODO_DIR, data_dir from config, or ~/.todo)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default: $TODO_CONFIG or ~/.todo/config.toml)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (json|sqlite)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.Route, "route", "", "Initial TUI view (/ | /active | /completed)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TODO_FORMAT", "json"), "Output format (json|edn)")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newClearCompletedCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newThemeCmd(app))
	cmd.AddCommand(newRemoteCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

// setup resolves configuration (defaults < file < env < flags) and the command logger.
func (app *App) setup(cmd *cobra.Command) error {
	if _, err := format.Parse(app.Format); err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	if v := strings.TrimSpace(app.Dir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(app.Backend); v != "" {
		cfg.Storage.Backend = v
	}
	if v := strings.TrimSpace(app.LogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(app.Route); v != "" {
		cfg.UI.Route = v
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	app.logger = logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.Log.Level})
	return nil
}

func runTUI(app *App) error {
	cfg := app.cfg
	kv, err := openStore(app)
	if err != nil {
		return err
	}
	logger, closer, err := logging.OpenFile(cfg.LogFile(), logging.Options{Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("starting", "dir", cfg.DataDir, "backend", cfg.Storage.Backend)
	return tui.Run(tui.Options{
		KV:        kv,
		Seed:      api.New(cfg.API.BaseURL, api.WithTimeout(cfg.Timeout()), api.WithLogger(logger)),
		Logger:    logger,
		Route:     cfg.UI.Route,
		Debounce:  cfg.SearchDebounce(),
		Locale:    cfg.UI.Locale,
		SeedLimit: cfg.API.SeedLimit,
	})
}

func openStore(app *App) (store.KV, error) {
	kv, err := store.Open(app.cfg.Storage.Backend, app.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return kv, nil
}

func loadController(app *App) (*tasks.Controller, error) {
	kv, err := openStore(app)
	if err != nil {
		return nil, err
	}
	return tasks.New(kv,
		tasks.WithLogger(app.logger),
		tasks.WithLocale(app.cfg.UI.Locale),
		tasks.WithSeedLimit(app.cfg.API.SeedLimit),
	), nil
}

func newAPIClient(app *App) *api.Client {
	return api.New(app.cfg.API.BaseURL,
		api.WithTimeout(app.cfg.Timeout()),
		api.WithLogger(app.logger),
	)
}

func loadTheme(app *App) (*store.Binding[model.Theme], error) {
	kv, err := openStore(app)
	if err != nil {
		return nil, err
	}
	return store.Bind(kv, store.KeyTheme, tui.DefaultTheme(), store.WithLogger(app.logger)), nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	f, err := format.Parse(app.Format)
	if err != nil {
		return err
	}
	return format.Write(cmd.OutOrStdout(), format.Envelope{Data: v}, f, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
