// Package secrets persists small string values (the API key and the chat
// history) under well-known keys.
package secrets

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
)

var log = logger.WithPrefix("secrets")

// Store is a string key/value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	Close() error
}

// Watcher is implemented by stores that can report changes made by other
// processes. Watch blocks until ctx is done, calling fn with the new value
// whenever key changes underneath this process.
type Watcher interface {
	Watch(ctx context.Context, key string, fn func(value string)) error
}

// Open creates the store selected by cfg
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		s, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
