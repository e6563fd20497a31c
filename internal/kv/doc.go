// Package kv defines the key-value hash store boundary for hashrec.
//
// Records persist as one hash per record plus one integer counter per model
// type. The Store interface captures exactly the primitives the record layer
// needs: field-level hash writes, full-hash reads, existence checks, TTL
// application, and an atomic counter increment for identifier allocation.
//
// Two implementations are provided:
//
//   - Redis: production client over a single remote endpoint. The connection
//     is established lazily by the underlying client and memoized for the
//     lifetime of the handle. Connectivity failures propagate unmodified;
//     this layer adds no retry, backoff, or pooling policy of its own.
//   - Mem: in-memory store for tests and ephemeral environments. TTLs are
//     honored against an injectable Clock so expiry scenarios run
//     deterministically without sleeping.
//
// CONSISTENCY MODEL:
//
// Only Incr is atomic across concurrent callers. All other operations are
// independent round-trips with no multi-key transaction guarantee;
// concurrent writers to the same hash interleave field-by-field
// (last-write-wins per field, not per record). This weak-consistency policy
// is deliberate and documented - the record layer is a thin
// validation/consistency layer, not a resilience layer.
package kv
