package kv

import (
	"context"
	"maps"
	"sync"
	"time"
)

// Mem is an in-memory Store for tests and ephemeral environments.
//
// Semantics mirror the Redis implementation: hashes and counters share one
// keyspace, a lapsed TTL makes a key behave exactly as if it never existed,
// and writing fields into an existing hash does not disturb its deadline.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Mem struct {
	mu        sync.Mutex
	clock     Clock
	hashes    map[string]map[string]string
	counters  map[string]int64
	deadlines map[string]time.Time
}

// MemOption configures a Mem store.
type MemOption func(*Mem)

// WithClock substitutes the clock used for TTL deadline checks.
// Tests pass a manual clock and advance it instead of sleeping.
func WithClock(c Clock) MemOption {
	return func(m *Mem) {
		m.clock = c
	}
}

// NewMem creates an empty in-memory store using the real wall clock
// unless overridden with WithClock.
func NewMem(opts ...MemOption) *Mem {
	m := &Mem{
		clock:     systemClock{},
		hashes:    make(map[string]map[string]string),
		counters:  make(map[string]int64),
		deadlines: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HSet writes fields into the hash at key, creating it if absent.
func (m *Mem) HSet(_ context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purge(key)

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		m.hashes[key] = h
	}
	maps.Copy(h, fields)
	return nil
}

// HGetAll returns a copy of the hash at key, or an empty map if absent.
func (m *Mem) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purge(key)

	out := make(map[string]string, len(m.hashes[key]))
	maps.Copy(out, m.hashes[key])
	return out, nil
}

// HDel removes fields from the hash at key. A hash emptied of its last
// field disappears entirely, matching Redis behavior.
func (m *Mem) HDel(_ context.Context, key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purge(key)

	h, ok := m.hashes[key]
	if !ok {
		return nil
	}
	for _, f := range fields {
		delete(h, f)
	}
	if len(h) == 0 {
		delete(m.hashes, key)
		delete(m.deadlines, key)
	}
	return nil
}

// Exists reports whether key holds an unexpired hash or counter.
func (m *Mem) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purge(key)

	if _, ok := m.hashes[key]; ok {
		return true, nil
	}
	_, ok := m.counters[key]
	return ok, nil
}

// Expire sets a TTL deadline on key. Expiring an absent key is a no-op,
// matching Redis (EXPIRE on a missing key returns 0).
func (m *Mem) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purge(key)

	_, isHash := m.hashes[key]
	_, isCounter := m.counters[key]
	if !isHash && !isCounter {
		return nil
	}
	m.deadlines[key] = m.clock.Now().Add(ttl)
	return nil
}

// Incr atomically increments the counter at key, starting from zero.
func (m *Mem) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purge(key)

	m.counters[key]++
	return m.counters[key], nil
}

// Close is a no-op for the in-memory store.
func (m *Mem) Close() error {
	return nil
}

// purge drops key if its deadline has lapsed. Callers must hold mu.
// Lazy expiry: a key is removed the first time it is touched past its
// deadline, which is observationally identical to eager expiry.
func (m *Mem) purge(key string) {
	deadline, ok := m.deadlines[key]
	if !ok {
		return
	}
	if m.clock.Now().Before(deadline) {
		return
	}
	delete(m.hashes, key)
	delete(m.counters, key)
	delete(m.deadlines, key)
}
