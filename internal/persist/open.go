package persist

import (
	"context"

	"git.home.luguber.info/inful/taskboard/internal/config"
	"git.home.luguber.info/inful/taskboard/internal/foundation/errors"
)

// OpenSlot builds the slot selected by cfg.
func OpenSlot(ctx context.Context, cfg config.StorageConfig) (Slot, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		s, err := NewFileSlot(cfg.Path)
		if err != nil {
			return nil, errors.FileSystemError("failed to open file storage").
				WithCause(err).
				WithContext("path", cfg.Path).
				Build()
		}
		return s, nil
	case config.BackendSQLite:
		if _, err := NewFileSlot(cfg.Path); err != nil {
			return nil, errors.FileSystemError("failed to create data directory").
				WithCause(err).
				WithContext("path", cfg.Path).
				Build()
		}
		s, err := NewSQLiteSlot(cfg.SQLitePath())
		if err != nil {
			return nil, errors.StorageError("failed to open sqlite storage").
				WithCause(err).
				WithContext("path", cfg.SQLitePath()).
				Build()
		}
		return s, nil
	case config.BackendNATS:
		s, err := NewNATSSlot(ctx, cfg.NATSURL, cfg.Bucket)
		if err != nil {
			return nil, errors.NetworkError("failed to open NATS storage").
				WithCause(err).
				WithContext("url", cfg.NATSURL).
				Build()
		}
		return s, nil
	case config.BackendMemory:
		return NewMemorySlot(), nil
	default:
		return nil, errors.ConfigError("unknown storage backend").
			WithContext("backend", string(cfg.Backend)).
			Build()
	}
}
