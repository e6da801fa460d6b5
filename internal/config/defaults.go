package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// StorageDefaultApplier handles Storage configuration defaults.
type StorageDefaultApplier struct{}

func (StorageDefaultApplier) Domain() string { return "storage" }

func (StorageDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendFile
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = DefaultSlotKey
	}
	if cfg.Storage.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		cfg.Storage.Path = filepath.Join(home, ".local", "share", "taskboard")
	}
	applyRetryDefaults(&cfg.Storage.Retry)
	if cfg.Storage.Backend == BackendNATS {
		if cfg.Storage.NATSURL == "" {
			cfg.Storage.NATSURL = "nats://127.0.0.1:4222"
		}
		if cfg.Storage.Bucket == "" {
			cfg.Storage.Bucket = "taskboard"
		}
	}
	return nil
}

func applyRetryDefaults(r *RetryConfig) {
	if r.Backoff == "" {
		r.Backoff = RetryBackoffLinear
		if r.MaxRetries == 0 {
			r.MaxRetries = 2
		}
	}
	if r.Initial <= 0 {
		r.Initial = 100 * time.Millisecond
	}
	if r.Max <= 0 {
		r.Max = 2 * time.Second
	}
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
}

// ReminderDefaultApplier handles Reminder configuration defaults.
type ReminderDefaultApplier struct{}

func (ReminderDefaultApplier) Domain() string { return "reminder" }

func (ReminderDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Reminder.Interval <= 0 {
		cfg.Reminder.Interval = time.Minute
	}
	return nil
}

// LoggingDefaultApplier handles Logging configuration defaults.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		StorageDefaultApplier{},
		ReminderDefaultApplier{},
		LoggingDefaultApplier{},
	}
}

// applyDefaults applies default values to configuration
func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var cfg Config
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
