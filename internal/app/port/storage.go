package port

import "context"

// KeyValueStore defines the persistence interface for customization state,
// snapshots and the latest-portfolio cache. Values are serialized structured
// data; callers treat parse failures on read the same as absence.
type KeyValueStore interface {
	// Get returns the stored value and whether the key existed.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value, overwriting any previous one.
	Set(ctx context.Context, key string, value string) error
}
