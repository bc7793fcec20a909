// Package kvstore selects and opens the configured KeyValueStore backend.
package kvstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/repowatch/internal/adapter/driven/bolt"
	"github.com/ericfisherdev/repowatch/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/repowatch/internal/config"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

// Store is a KeyValueStore that owns an open database.
type Store interface {
	driven.KeyValueStore
	Close() error
}

type sqliteStore struct {
	*sqlite.KVRepo
	db *sqlite.DB
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// Open opens the backend named by cfg.Store. The sqlite backend is migrated
// before it is returned.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := sqlite.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Info("database opened", "store", cfg.Store, "path", cfg.DBPath)
		return &sqliteStore{KVRepo: sqlite.NewKVRepo(db), db: db}, nil

	case config.StoreBolt:
		s, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		slog.Info("database opened", "store", cfg.Store, "path", cfg.BoltPath)
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
