package driven

import "context"

// WatchlistKey is the single slot the watch list is persisted under.
const WatchlistKey = "repositories"

// KeyValueStore defines the driven port for byte storage that survives process
// restarts. Set replaces the previous value atomically.
type KeyValueStore interface {
	// Get returns the stored value, or nil, nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
