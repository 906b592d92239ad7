package kvstore

import (
	"context"
	"errors"
)

// Fixed keys shared with any other writer of the same store. Concurrent
// writers race last-writer-wins; there is no cross-instance coordination.
const (
	KeyEvents = "analytics_events"
	KeyTheme  = "theme"
)

var ErrNotFound = errors.New("kvstore: key not found")

// KVStore is the persisted medium behind the event log and the theme
// preference. A Set always overwrites the whole value, so a reader never
// observes a partial record.
type KVStore interface {
	// Get returns the value of a key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores val under key, replacing any previous value.
	Set(ctx context.Context, key string, val []byte) error

	// Delete removes a key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
