package record

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/roach88/hashrec/internal/attr"
	"github.com/roach88/hashrec/internal/journal"
)

// Create allocates a fresh identifier, touches the record's storage key
// with a creation marker and TTL, assigns the supplied attributes
// (validating governed ones), and persists. It returns the new record, or
// an error and no record if the store is unreachable or a governed value
// is outside its machine's legal states.
func (m *Model) Create(ctx context.Context, attrs map[string]any) (*Record, error) {
	id, err := m.nextID(ctx)
	if err != nil {
		return nil, err
	}

	r := m.newRecord(id)
	if err := r.bindStorage(); err != nil {
		return nil, err
	}

	createdAt := strconv.FormatInt(m.clock.Now().Unix(), 10)
	if err := m.store.HSet(ctx, r.key, map[string]string{CreatedAtField: createdAt}); err != nil {
		return nil, fmt.Errorf("create %s record %d: %w", m.desc.name, id, err)
	}
	if err := r.applyTTL(ctx); err != nil {
		return nil, err
	}

	if err := r.assign(attrs); err != nil {
		return nil, err
	}
	if err := r.persist(ctx); err != nil {
		return nil, err
	}

	m.journalAppend(ctx, journal.OpCreate, id, attrNames(attrs))
	m.logger.Debug("record created", "model", m.desc.name, "id", id)
	return r, nil
}

// Find constructs a record shell for id, reads its hash, and hydrates. An
// empty hash - never created or expired - yields a NOT_FOUND error naming
// the model type and id.
func (m *Model) Find(ctx context.Context, id int64) (*Record, error) {
	r := m.newRecord(id)
	if err := r.bindStorage(); err != nil {
		return nil, err
	}

	raw, err := m.store.HGetAll(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("find %s record %d: %w", m.desc.name, id, err)
	}
	if len(raw) == 0 {
		return nil, NewNotFound(m.desc.name, id)
	}
	if err := r.hydrate(raw); err != nil {
		return nil, err
	}
	return r, nil
}

// Update assigns the supplied attributes and persists.
//
// The update is refused with STORAGE_EXPIRED - leaving in-memory state
// untouched - when the storage key is absent, whether it expired or was
// never created. The identifier is immutable: an "id" key in attrs is
// rejected outright.
//
// Return contract: when exactly one attribute was supplied, Update returns
// that attribute's new typed value (attr.Value, or nil if it was cleared)
// so single-field updates read naturally; for zero or multiple attributes
// it returns the *Record.
func (r *Record) Update(ctx context.Context, attrs map[string]any) (any, error) {
	if err := r.bindStorage(); err != nil {
		return nil, err
	}

	ok, err := r.exists(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewStorageExpired(r.model.desc.name, r.id)
	}

	if _, found := attrs[attr.IDName]; found {
		return nil, fmt.Errorf("update %s record %d: attribute %q is immutable", r.model.desc.name, r.id, attr.IDName)
	}

	if err := r.assign(attrs); err != nil {
		return nil, err
	}
	if err := r.persist(ctx); err != nil {
		return nil, err
	}

	r.model.journalAppend(ctx, journal.OpUpdate, r.id, attrNames(attrs))

	if len(attrs) == 1 {
		for name := range attrs {
			v, set := r.attrs.Get(name)
			if !set {
				return nil, nil
			}
			return v, nil
		}
	}
	return r, nil
}

// Save persists the record's current in-memory state unconditionally.
// No existence precheck: saving resurrects an expired key with whatever
// the record holds now.
func (r *Record) Save(ctx context.Context) error {
	if err := r.bindStorage(); err != nil {
		return err
	}
	if err := r.persist(ctx); err != nil {
		return err
	}
	r.model.journalAppend(ctx, journal.OpSave, r.id, nil)
	return nil
}

// persist is the shared write path: pre-persist state validation, encode,
// field upsert, TTL refresh.
func (r *Record) persist(ctx context.Context) error {
	if err := r.validateStates(); err != nil {
		return err
	}
	values := r.persistableValues()
	if len(values) > 0 {
		if err := r.model.store.HSet(ctx, r.key, values); err != nil {
			return fmt.Errorf("persist %s record %d: %w", r.model.desc.name, r.id, err)
		}
	}
	return r.applyTTL(ctx)
}

// attrNames returns the sorted attribute names of a batch, for journaling.
func attrNames(attrs map[string]any) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	// journal entries should be stable regardless of map order
	sort.Strings(names)
	return names
}
