package record

import (
	"github.com/roach88/hashrec/internal/attr"
)

// Record is one in-memory instance of a model type.
//
// A record holds its typed-attribute container and its storage-key binding
// as two independently named fields. The binding is resolved lazily and at
// most once per instance (memoized via the bound flag); construction has
// no storage side effect.
//
// Not safe for concurrent use by multiple goroutines; the backing store
// tolerates concurrent records for the same id under the documented
// last-write-wins-per-field policy.
type Record struct {
	model *Model
	id    int64
	attrs *attr.Set

	// storage binding, resolved at most once
	key   string
	bound bool
}

// ID returns the record's identifier. Assigned once at creation,
// immutable thereafter.
func (r *Record) ID() int64 {
	return r.id
}

// Model returns the model this record belongs to.
func (r *Record) Model() *Model {
	return r.model
}

// Get returns the current typed value of a declared attribute and whether
// one is set.
func (r *Record) Get(name string) (attr.Value, bool) {
	return r.attrs.Get(name)
}

// Attributes returns the plain mapping of every non-empty declared
// attribute name to its current typed value.
func (r *Record) Attributes() map[string]attr.Value {
	return r.attrs.Values()
}

// bindStorage resolves the record's storage key. Idempotent: the first
// call computes and caches the key, later calls return immediately.
func (r *Record) bindStorage() error {
	if r.bound {
		return nil
	}
	if r.model == nil || r.model.store == nil {
		model := ""
		if r.model != nil {
			model = r.model.desc.name
		}
		return NewMisconfigured(model, "record has no storage binding")
	}
	r.key = recordKey(r.model.desc.namespace, r.id)
	r.bound = true
	return nil
}

// Key returns the record's storage key, resolving the binding if needed.
func (r *Record) Key() (string, error) {
	if err := r.bindStorage(); err != nil {
		return "", err
	}
	return r.key, nil
}
