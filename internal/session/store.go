// Package session persists the bearer credential between kitlend runs.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/me/kitlend/internal/config"
)

// Store persists the single bearer credential.
type Store interface {
	// Load returns the stored credential, or "" with a nil error when none is
	// stored.
	Load(ctx context.Context) (string, error)
	// Save replaces the stored credential.
	Save(ctx context.Context, token string) error
	// Clear removes the stored credential. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	// Close releases resources held by the store.
	Close() error
}

const (
	credentialsFileName = "credentials.json"
	databaseFileName    = "session.db"
)

// Open returns the Store selected by cfg. An empty path resolves to the
// default location under ~/.kitlend.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Kind {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreFile, "":
		path, err := storePath(cfg.Path, credentialsFileName)
		if err != nil {
			return nil, err
		}
		return NewFileStore(path), nil
	case config.StoreSQLite:
		path, err := storePath(cfg.Path, databaseFileName)
		if err != nil {
			return nil, err
		}
		st, err := NewSQLiteStore(path, logger)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown session store kind %q", cfg.Kind)
	}
}

func storePath(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
