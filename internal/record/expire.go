package record

import (
	"context"
	"fmt"
)

// applyTTL sets the model's TTL on the record's storage key. A
// non-positive configured TTL means records never expire and this is a
// no-op. Called once at creation right after the key is first touched, and
// again after every successful persist so continued activity keeps the
// record alive.
func (r *Record) applyTTL(ctx context.Context) error {
	ttl := r.model.desc.expiresIn
	if ttl <= 0 {
		return nil
	}
	if err := r.bindStorage(); err != nil {
		return err
	}
	if err := r.model.store.Expire(ctx, r.key, ttl); err != nil {
		return fmt.Errorf("apply ttl on %s: %w", r.key, err)
	}
	return nil
}

// exists probes the store for the record's key. Used before every update
// to distinguish "present" from "expired or never created".
func (r *Record) exists(ctx context.Context) (bool, error) {
	if err := r.bindStorage(); err != nil {
		return false, err
	}
	ok, err := r.model.store.Exists(ctx, r.key)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", r.key, err)
	}
	return ok, nil
}
