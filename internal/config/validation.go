package config

import (
	"strings"

	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
)

// normalizeConfig case-folds enumerations. Unknown backends are rejected.
func normalizeConfig(cfg *Config) error {
	if raw := strings.TrimSpace(string(cfg.Storage.Backend)); raw != "" {
		b := NormalizeStorageBackend(raw)
		if b == "" {
			return errors.ConfigError("unknown storage backend").
				WithContext("backend", raw).
				Build()
		}
		cfg.Storage.Backend = b
	}
	if raw := strings.TrimSpace(string(cfg.Storage.Retry.Backoff)); raw != "" {
		m := NormalizeRetryBackoffMode(raw)
		if m == "" {
			return errors.ConfigError("unknown retry backoff mode").
				WithContext("backoff", raw).
				Build()
		}
		cfg.Storage.Retry.Backoff = m
	}
	if cfg.Logging.Level != "" {
		cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	}
	if cfg.Logging.Format != "" {
		cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	}
	return nil
}

// validateConfig checks cross-field constraints after defaults are applied.
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Storage.Key) == "" {
		return errors.ConfigError("storage key must not be blank").Build()
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Textfile == "" {
		return errors.ConfigError("metrics.textfile is required when metrics are enabled").Build()
	}
	return nil
}
