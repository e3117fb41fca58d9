// Package config loads todo settings from defaults, an optional TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"todo-app/internal/model"
)

const (
	AppDirName     = ".todo"
	ConfigFileName = "config.toml"

	DefaultAPIBaseURL       = "https://jsonplaceholder.typicode.com"
	DefaultSeedLimit        = 10
	DefaultTimeoutSeconds   = 10
	DefaultSearchDebounceMs = 300
	DefaultLocale           = "en"
	DefaultBackend          = "json"
	DefaultLogLevel         = "info"
	DefaultLogFileName      = "todo.log"
)

type Config struct {
	DataDir string  `toml:"data_dir"`
	Storage Storage `toml:"storage"`
	API     API     `toml:"api"`
	UI      UI      `toml:"ui"`
	Log     Log     `toml:"log"`

	// Path is the file the config was read from ("" when no file existed).
	Path string `toml:"-"`
}

type Storage struct {
	// Backend is json|sqlite.
	Backend string `toml:"backend"`
}

type API struct {
	BaseURL        string `toml:"base_url"`
	SeedLimit      int    `toml:"seed_limit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type UI struct {
	SearchDebounceMs int    `toml:"search_debounce_ms"`
	Locale           string `toml:"locale"`
	// Route is the initial view: / | /active | /completed.
	Route string `toml:"route"`
}

type Log struct {
	Level string `toml:"level"`
	// File is used by the TUI; empty means <data dir>/todo.log.
	File string `toml:"file"`
}

func Default() *Config {
	return &Config{
		Storage: Storage{Backend: DefaultBackend},
		API: API{
			BaseURL:        DefaultAPIBaseURL,
			SeedLimit:      DefaultSeedLimit,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		UI: UI{
			SearchDebounceMs: DefaultSearchDebounceMs,
			Locale:           DefaultLocale,
			Route:            "/",
		},
		Log: Log{Level: DefaultLogLevel},
	}
}

// Dir returns the directory holding config.toml (and, by default, the data).
func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.todo).
	if v := strings.TrimSpace(os.Getenv("TODO_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, AppDirName), nil
}

// Path resolves the config file: explicit path, then $TODO_CONFIG, then <Dir>/config.toml.
func Path(explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		return p, nil
	}
	if p := strings.TrimSpace(os.Getenv("TODO_CONFIG")); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load applies defaults < file < environment. A missing file is not an error unless it was
// requested explicitly.
func Load(explicit string) (*Config, error) {
	cfg := Default()

	path, err := Path(explicit)
	if err != nil {
		return nil, err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || strings.TrimSpace(explicit) != "" {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	} else {
		cfg.Path = path
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("TODO_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TODO_BACKEND")); v != "" {
		cfg.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("TODO_API_BASE_URL")); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TODO_SEED_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TODO_SEED_LIMIT: %w", err)
		}
		cfg.API.SeedLimit = n
	}
	if v := strings.TrimSpace(os.Getenv("TODO_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid storage.backend %q (expected json|sqlite)", c.Storage.Backend)
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.SeedLimit <= 0 {
		return fmt.Errorf("api.seed_limit must be positive, got %d", c.API.SeedLimit)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must not be negative, got %d", c.API.TimeoutSeconds)
	}
	if c.UI.SearchDebounceMs < 0 {
		return fmt.Errorf("ui.search_debounce_ms must not be negative, got %d", c.UI.SearchDebounceMs)
	}
	if _, err := model.FilterForRoute(c.UI.Route); err != nil {
		return fmt.Errorf("ui.route: %w", err)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.UI.SearchDebounceMs) * time.Millisecond
}

func (c *Config) LogFile() string {
	if strings.TrimSpace(c.Log.File) != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, DefaultLogFileName)
}
