// Package storage persists client session state: login data, the last known
// user and the selected Library. Values are stored as JSON.
package storage

import (
	"context"
	"errors"
	"fmt"

	"library-client/internal/config"
)

// Store is a small key/value contract. Get reports false on a miss and
// leaves dest untouched.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

var ErrClosed = errors.New("storage: store is closed")

// Open builds the store selected by SESSION_STORE.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Session.Store {
	case "file":
		return NewFileStore(cfg.Session.Path)
	case "redis":
		s := NewRedisStore(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB, cfg.Session.Prefix)
		if err := s.Connect(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("storage: unknown store %q", cfg.Session.Store)
}
