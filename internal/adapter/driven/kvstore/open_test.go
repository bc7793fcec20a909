package kvstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repowatch/internal/adapter/driven/kvstore"
	"github.com/ericfisherdev/repowatch/internal/config"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

func TestOpen(t *testing.T) {
	for _, kind := range []config.StoreKind{config.StoreSQLite, config.StoreBolt} {
		t.Run(string(kind), func(t *testing.T) {
			dir := t.TempDir()
			cfg := &config.Config{
				Store:    kind,
				DBPath:   filepath.Join(dir, "repowatch.db"),
				BoltPath: filepath.Join(dir, "repowatch.bolt"),
			}
			ctx := context.Background()

			store, err := kvstore.Open(ctx, cfg)
			require.NoError(t, err)
			require.NoError(t, store.Set(ctx, driven.WatchlistKey, []byte(`[{"name":"a/b"}]`)))
			require.NoError(t, store.Close())

			store, err = kvstore.Open(ctx, cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			got, err := store.Get(ctx, driven.WatchlistKey)
			require.NoError(t, err)
			assert.Equal(t, `[{"name":"a/b"}]`, string(got))
		})
	}
}

func TestOpen_UnknownStore(t *testing.T) {
	_, err := kvstore.Open(context.Background(), &config.Config{Store: "redis"})
	assert.Error(t, err)
}
