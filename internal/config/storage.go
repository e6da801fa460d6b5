package config

import (
	"path/filepath"

	"git.home.luguber.info/inful/taskboard/internal/foundation"
)

// DefaultSlotKey is the key the task snapshot is stored under.
const DefaultSlotKey = "task-storage"

// StorageBackend selects a slot implementation.
type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendSQLite StorageBackend = "sqlite"
	BackendNATS   StorageBackend = "nats"
	BackendMemory StorageBackend = "memory"
)

var backendNormalizer = foundation.NewNormalizer(map[string]StorageBackend{
	"file":     BackendFile,
	"json":     BackendFile,
	"sqlite":   BackendSQLite,
	"sqlite3":  BackendSQLite,
	"nats":     BackendNATS,
	"memory":   BackendMemory,
	"inmemory": BackendMemory,
}, "")

// NormalizeStorageBackend returns "" for unknown backends.
func NormalizeStorageBackend(raw string) StorageBackend {
	return backendNormalizer.Normalize(raw)
}

// SQLitePath is the database file of the sqlite backend.
func (s StorageConfig) SQLitePath() string {
	return filepath.Join(s.Path, "taskboard.db")
}

// HistoryPath resolves the history database location.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(c.Storage.Path, "history.db")
}
