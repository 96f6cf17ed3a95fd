package kv

import (
	"context"
	"fmt"

	"github.com/clive/todo-tui/internal/config"
)

// Open creates the store selected by cfg.Driver. On error the returned
// Store is nil.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.StorageFile:
		f, err := OpenFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.StorageSQLite:
		s, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageRedis:
		r, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.StorageMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
