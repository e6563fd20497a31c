// Package record implements the attribute-persistence and identity engine:
// plain in-memory records with persistence semantics backed by a remote
// key-value hash store.
//
// ARCHITECTURE:
//
// A Descriptor is the immutable definition of a model type: its qualified
// name, attribute schema, state machines, and TTL. A Model binds a
// Descriptor to a kv.Store (plus optional journal, clock, and logger) and
// is the entry point for Create and Find. A Record is one instance: an
// identifier assigned once at creation, a typed attribute container, and a
// memoized storage-key binding resolved at most once per instance.
//
// Lifecycle protocol:
//
//  1. Create: allocate id (atomic counter) -> bind storage -> touch the key
//     with a creation marker and apply TTL -> assign attributes (validating
//     governed ones) -> persist (encode + pre-persist validation + TTL
//     refresh).
//  2. Find: bind storage -> read the full hash; empty means not found ->
//     hydrate through the coercing typed setters.
//  3. Update: refuse if the key is absent (expired or never created) ->
//     reject identifier reassignment -> assign -> persist. A single-field
//     update returns the field's new value directly.
//  4. Save: persist unconditionally, no existence precheck.
//
// There is no delete operation. TTL expiry on the storage key is the
// authoritative notion of deletion; an expired record reads back exactly
// like one that never existed, except Update names the id it knew in a
// distinct STORAGE_EXPIRED error.
//
// CONSISTENCY:
//
// Only identifier allocation is atomic across concurrent callers. Persists
// from two processes interleave field-by-field, last-write-wins per field.
// This weak-consistency policy is accepted and documented, not a bug: the
// layer validates and encodes, it does not coordinate.
package record
