// Package config loads cycle-journal settings from a YAML file and
// CYCLE_JOURNAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// ErrRemoteIncomplete is returned when the remote backend is selected
// without a database URL and user id.
var ErrRemoteIncomplete = errors.New("remote backend needs remote.database_url and remote.user_id")

// EnvPrefix is prepended to every environment variable, e.g.
// CYCLE_JOURNAL_REMOTE_DATABASE_URL.
const EnvPrefix = "CYCLE_JOURNAL"

// Config holds all settings.
type Config struct {
	Backend  string       `mapstructure:"backend" validate:"required,oneof=local remote"`
	Local    LocalConfig  `mapstructure:"local" validate:"required"`
	Remote   RemoteConfig `mapstructure:"remote"`
	Sync     SyncConfig   `mapstructure:"sync"`
	Log      LogConfig    `mapstructure:"log"`
	Timezone string       `mapstructure:"timezone"`
}

// LocalConfig is the device-local KV. It also holds the outbox of the
// remote backend.
type LocalConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite badger"`
	Path   string `mapstructure:"path" validate:"required"`
}

// RemoteConfig selects the per-user entry log.
type RemoteConfig struct {
	DatabaseURL string `mapstructure:"database_url" validate:"omitempty,url"`
	UserID      string `mapstructure:"user_id" validate:"omitempty,uuid"`
	Migrate     bool   `mapstructure:"migrate"`
}

// SyncConfig bounds retries of queued remote writes.
type SyncConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" validate:"gte=1"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// DefaultPath returns ~/.cycle-journal/<name>.
func DefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".cycle-journal", name)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "local")
	v.SetDefault("local.driver", "sqlite")
	v.SetDefault("local.path", DefaultPath("journal.db"))
	v.SetDefault("remote.database_url", "")
	v.SetDefault("remote.user_id", "")
	v.SetDefault("remote.migrate", false)
	v.SetDefault("sync.max_attempts", 5)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("timezone", "")
}

// Load reads path (when non-empty) and the environment. Environment
// variables take precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg after flags have been applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Backend == "remote" && (c.Remote.DatabaseURL == "" || c.Remote.UserID == "") {
		return fmt.Errorf("config validation failed: %w", ErrRemoteIncomplete)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// UserID parses Remote.UserID.
func (c *Config) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Remote.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("remote.user_id: %w", err)
	}
	return id, nil
}

// Location returns the zone used for "today"; time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
