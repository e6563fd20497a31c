package record

import "fmt"

// CreatedAtField is the internal metadata field written when a record's
// storage key is first touched. It records creation time as a unix
// timestamp and is never hydrated into attributes.
const CreatedAtField = "_created_at"

// persistableValues encodes the write path: every declared attribute
// except the identifier, restricted to the ones currently non-empty, each
// converted to its storage string. Declaration order drives iteration so
// encoding is deterministic.
//
// An empty attribute is omitted, never written as an empty string. A
// previously persisted then cleared attribute therefore keeps its stale
// string in storage until overwritten or until the key expires; clearing
// affects in-memory state only. This mirrors the store's field-merge write
// semantics and keeps every persist a pure field upsert.
func (r *Record) persistableValues() map[string]string {
	out := make(map[string]string)
	for _, name := range r.model.desc.schema.Names() {
		v, ok := r.attrs.Get(name)
		if !ok || v.IsEmpty() {
			continue
		}
		out[name] = v.Encode()
	}
	return out
}

// hydrate populates the typed attribute container from raw stored fields.
// The raw key set is restricted to declared attribute names - storage
// metadata (CreatedAtField) and unknown keys are dropped - and each value
// is assigned through the coercing setter so it regains its declared type.
func (r *Record) hydrate(raw map[string]string) error {
	for _, name := range r.model.desc.schema.Names() {
		rawVal, ok := raw[name]
		if !ok {
			continue
		}
		if err := r.attrs.SetString(name, rawVal); err != nil {
			return fmt.Errorf("hydrate %s record %d: %w", r.model.desc.name, r.id, err)
		}
	}
	return nil
}
