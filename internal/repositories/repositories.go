package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotdash/internal/shared"
)

// KeyValueStore is the durable storage contract used by the session store.
type KeyValueStore interface {
	// Get returns the value stored at key or [shared.ErrKeyNotFound].
	Get(ctx context.Context, key string) (string, error)
	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Close releases the underlying connection.
	Close() error
}

// Open builds the [KeyValueStore] selected by cfg.Storage.Backend.
//
// For the sqlite backend the returned *sql.DB is also handed back so callers can share it
// with [LoginEventRepository]; it is nil for other backends.
func Open(ctx context.Context, cfg *shared.Config) (KeyValueStore, *sql.DB, error) {
	switch cfg.Storage.Backend {
	case "", "sqlite":
		db, err := shared.OpenDatabase(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteStore(db), db, nil
	case "redis":
		store, err := DialRedis(ctx, cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case "memory":
		return NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, cfg.Storage.Backend)
	}
}
