// Package config loads the taskboard YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "taskboard.yaml"

// Config is the root configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	History  HistoryConfig  `yaml:"history"`
	Reminder ReminderConfig `yaml:"reminder"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StorageConfig selects the durable slot holding the task snapshot.
type StorageConfig struct {
	Backend StorageBackend `yaml:"backend"`
	// Path is the data directory for the file and sqlite backends.
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Bucket  string `yaml:"bucket,omitempty"`
	// Seed installs two sample tasks when the slot is empty.
	Seed  bool        `yaml:"seed"`
	Retry RetryConfig `yaml:"retry"`
}

// HistoryConfig controls the task event log.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path defaults to history.db inside the storage path.
	Path string `yaml:"path,omitempty"`
}

// ReminderConfig controls the overdue sweep of the watch command.
type ReminderConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads the configuration at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	// .env files are optional
	_ = loadEnvFile()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, errors.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	default:
		// Expand environment variables in the YAML content
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, errors.ConfigError("failed to parse config file").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
	}

	if err := normalizeConfig(&cfg); err != nil {
		return nil, err
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.AlreadyExistsError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    "${HOME}/.local/share/taskboard",
			Key:     DefaultSlotKey,
		},
		History:  HistoryConfig{Enabled: true},
		Reminder: ReminderConfig{Interval: time.Minute},
		Logging:  LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.InternalError("failed to marshal example config").WithCause(err).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
