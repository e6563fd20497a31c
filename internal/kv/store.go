package kv

import (
	"context"
	"time"
)

// Store is the hash-store surface consumed by the record layer.
//
// Keys address whole hashes; fields address string values inside a hash.
// An absent key and an expired key are indistinguishable to callers -
// expiry is the authoritative notion of deletion in this system.
type Store interface {
	// HSet writes the given fields into the hash at key, creating the hash
	// if it does not exist. Existing fields not named in fields are left
	// untouched. Writing to an existing key does not disturb its TTL.
	HSet(ctx context.Context, key string, fields map[string]string) error

	// HGetAll returns every field of the hash at key. An absent or expired
	// key yields an empty map and no error.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HDel removes the named fields from the hash at key. Missing fields
	// are ignored.
	HDel(ctx context.Context, key string, fields ...string) error

	// Exists reports whether the key is present (and unexpired).
	Exists(ctx context.Context, key string) (bool, error)

	// Expire sets a time-to-live on the key. The key becomes absent once
	// the TTL lapses. ttl must be positive.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Incr atomically increments the integer counter at key and returns
	// the new value. A missing counter starts at zero, so the first call
	// returns 1. This is the only operation with a cross-caller atomicity
	// guarantee.
	Incr(ctx context.Context, key string) (int64, error)

	// Close releases the underlying connection, if any.
	Close() error
}

// Clock supplies the current instant. The in-memory store checks TTL
// deadlines against it; tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

// systemClock reads the real wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
