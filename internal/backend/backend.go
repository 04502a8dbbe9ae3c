package backend

import (
	"fmt"

	"magbook/internal/config"
	"magbook/internal/log"
	"magbook/internal/store"
)

// Type selects the durable home of the record collections.
type Type string

const (
	CSV    Type = "csv"
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case CSV, SQLite, Memory:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result contains the opened store and an optional cleanup function.
type Result struct {
	Store   store.RecordStore
	Cleanup CleanupFunc
}

// Open creates the record store selected by the configuration.
func Open(cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentBackend)

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLite:
		s, err := store.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite record store", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: s, Cleanup: s.Close}, nil
	case Memory:
		logger.Info("Initialized in-memory record store")
		return &Result{Store: store.NewMemoryStore()}, nil
	default:
		logger.Info("Initialized CSV record store", "data_dir", cfg.DataDir)
		return &Result{Store: store.NewCSVStore(cfg.DataDir)}, nil
	}
}
