package config

import (
	"time"

	"git.home.luguber.info/inful/taskboard/internal/foundation"
)

// RetryBackoffMode selects how the delay between slot write retries grows.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = foundation.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
	"exp":         RetryBackoffExponential,
}, "")

// NormalizeRetryBackoffMode returns "" for unknown modes.
func NormalizeRetryBackoffMode(raw string) RetryBackoffMode {
	return retryBackoffNormalizer.Normalize(raw)
}

// RetryConfig controls retries of failed slot writes.
type RetryConfig struct {
	Backoff RetryBackoffMode `yaml:"backoff"`
	Initial time.Duration    `yaml:"initial"`
	Max     time.Duration    `yaml:"max"`
	// MaxRetries counts retries after the first attempt. It defaults to 2
	// only when backoff is unset, so "backoff: fixed, max_retries: 0"
	// disables retries.
	MaxRetries int `yaml:"max_retries"`
}
