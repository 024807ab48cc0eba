// Package kv provides the volatile key-value store backing single-use
// confirmation token markers.
package kv

import (
	"context"
	"time"
)

// Store is the minimal surface the token subsystem needs: write a value with
// an expiry, read it back, and consume it. GetDel must be atomic per key so a
// marker can be redeemed at most once even under concurrent requests.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value and whether the key exists. A missing key is not
	// an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// GetDel removes the key and reports whether it existed.
	GetDel(ctx context.Context, key string) (bool, error)

	Delete(ctx context.Context, key string) error

	Close() error
}
