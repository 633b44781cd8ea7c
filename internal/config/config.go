package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/sadopc/playtime/internal/store"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Export   ExportConfig   `mapstructure:"export"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"` // empty logs to stderr, or nowhere while the TUI runs
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// ReportsConfig defines report defaults shared by the CLI, API and TUI
type ReportsConfig struct {
	DefaultDays  int    `mapstructure:"default_days"`
	ManualSource string `mapstructure:"manual_source"` // source tag written on manual corrections
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from configPath, then PLAYTIME_* environment
// variables. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("PLAYTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = "playtime.db"
	}
	v.SetDefault("database.path", dbPath)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	v.SetDefault("server.address", "127.0.0.1:8787")

	v.SetDefault("reports.default_days", 7)
	v.SetDefault("reports.manual_source", "manual")

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	v.SetDefault("export.dir", home)
}

func validate(cfg *Config) error {
	if cfg.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", cfg.Logging.Format)
	}

	if cfg.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}

	if cfg.Reports.DefaultDays < 1 || cfg.Reports.DefaultDays > 366 {
		return fmt.Errorf("invalid report span: %d days (want 1..366)", cfg.Reports.DefaultDays)
	}
	if strings.TrimSpace(cfg.Reports.ManualSource) == "" {
		return fmt.Errorf("manual source tag is required")
	}

	return nil
}
