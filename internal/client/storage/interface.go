// Package storage is the device-local key/value store that holds the identity
// keypair and the session token. Values are plain strings; a missing key is
// reported by the boolean result, never by an error.
package storage

import "context"

type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes keys. Missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
	// Update applies every write in set and every delete in remove, or none
	// of them.
	Update(ctx context.Context, set map[string]string, remove []string) error
}
