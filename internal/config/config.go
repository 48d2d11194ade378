package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/jask/tablebrowser/internal/viewstate"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	State    StateConfig
	UI       UIConfig
	Log      LogConfig
}

// DatabaseConfig holds the state database settings.
type DatabaseConfig struct {
	Path string
}

// StateConfig controls whether view state survives restarts.
type StateConfig struct {
	Persist bool
}

// UIConfig holds the defaults new pages start with.
type UIConfig struct {
	RowsPerPage        string `mapstructure:"rows_per_page"`
	RowsPerPageOptions []int  `mapstructure:"rows_per_page_options"`
	ViewType           string `mapstructure:"view_type"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
	Path  string
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "tablebrowser")
}

// Path returns the config file location: TABLEBROWSER_CONFIG if set,
// otherwise config.toml under the user config dir.
func Path() string {
	if p := os.Getenv("TABLEBROWSER_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "tablebrowser", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix TABLEBROWSER_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(dataDir(), "state.db"))
	v.SetDefault("state.persist", true)
	v.SetDefault("ui.rows_per_page", viewstate.DefaultRowsPerPage)
	v.SetDefault("ui.rows_per_page_options", []int{5, 10, 25, 50})
	v.SetDefault("ui.view_type", string(viewstate.ViewList))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dataDir(), "tablebrowser.log"))

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("TABLEBROWSER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the UI defaults.
func (c Config) Validate() error {
	n, err := strconv.Atoi(c.UI.RowsPerPage)
	if err != nil || n <= 0 {
		return fmt.Errorf("ui.rows_per_page: %q is not a positive number", c.UI.RowsPerPage)
	}
	for _, opt := range c.UI.RowsPerPageOptions {
		if opt <= 0 {
			return fmt.Errorf("ui.rows_per_page_options: %d is not positive", opt)
		}
	}
	switch viewstate.ViewType(c.UI.ViewType) {
	case viewstate.ViewList, viewstate.ViewTable:
	default:
		return fmt.Errorf("ui.view_type: unknown view type %q", c.UI.ViewType)
	}
	return nil
}

// Defaults converts the UI settings into registry defaults.
func (c Config) Defaults() viewstate.Defaults {
	return viewstate.Defaults{
		RowsPerPage: c.UI.RowsPerPage,
		ViewType:    viewstate.ViewType(c.UI.ViewType),
	}
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("state.persist", cfg.State.Persist)
	v.Set("ui.rows_per_page", cfg.UI.RowsPerPage)
	v.Set("ui.rows_per_page_options", cfg.UI.RowsPerPageOptions)
	v.Set("ui.view_type", cfg.UI.ViewType)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
