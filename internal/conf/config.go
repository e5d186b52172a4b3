// Package conf loads and holds the application settings.
package conf

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"hikelog/internal/errors"
)

// SQLiteSettings holds the SQLite output configuration.
type SQLiteSettings struct {
	Path string // path to the database file
}

// OutputSettings groups persistence targets.
type OutputSettings struct {
	SQLite SQLiteSettings
}

// LogSettings holds logging configuration.
type LogSettings struct {
	Level string // trace, debug, info, warn, error
	Path  string // optional log file path, empty disables file logging
}

// Settings holds all runtime configuration.
type Settings struct {
	Debug  bool
	Output OutputSettings
	Log    LogSettings
}

// LogLevel maps the configured level string to a slog level.
// Unknown values fall back to info.
func (s *Settings) LogLevel() slog.Level {
	switch strings.ToLower(s.Log.Level) {
	case "trace":
		return slog.Level(-8)
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads settings from hikelog.yaml (working directory or
// $HOME/.config/hikelog), HIKELOG_* environment variables, and defaults.
// A missing config file is not an error; defaults apply.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("hikelog")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "hikelog"))
	}

	v.SetEnvPrefix("hikelog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.New(err).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Context("operation", "read_config").
				Build()
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal_config").
			Build()
	}

	return settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("output.sqlite.path", "hikelog.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
}
