package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repowatch/internal/adapter/driven/bolt"
	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

func openStore(t *testing.T, path string) *bolt.Store {
	t.Helper()
	s, err := bolt.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetAbsent(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.bolt"))

	got, err := s.Get(context.Background(), driven.WatchlistKey)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SetOverwrites(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.bolt"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, driven.WatchlistKey, []byte(`[{"name":"a/b"}]`)))
	require.NoError(t, s.Set(ctx, driven.WatchlistKey, []byte(`[{"name":"a/b"},{"name":"c/d"}]`)))

	got, err := s.Get(ctx, driven.WatchlistKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"a/b"},{"name":"c/d"}]`, string(got))
}

func TestStore_ValueOutlivesTransaction(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.bolt"))
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("first")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("second")))

	assert.Equal(t, "first", string(got))
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.bolt")
	ctx := context.Background()

	first, err := bolt.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, driven.WatchlistKey, []byte(`[{"name":"golang/go"}]`)))
	require.NoError(t, first.Close())

	second := openStore(t, path)
	got, err := second.Get(ctx, driven.WatchlistKey)

	require.NoError(t, err)
	assert.Equal(t, `[{"name":"golang/go"}]`, string(got))
}

func TestStore_CanceledContext(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.bolt"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "k", []byte("v")), context.Canceled)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := bolt.Open(filepath.Join(t.TempDir(), "missing", "kv.bolt"))
	assert.Error(t, err)
}
