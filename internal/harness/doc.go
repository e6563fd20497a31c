// Package harness provides conformance testing for the record layer.
//
// The harness loads model declarations, executes record lifecycle steps
// against a fresh in-memory store, and validates outcomes as executable
// contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	models: models
//	run_token: fixed-token
//	steps:
//	  - op: create
//	    model: Task
//	    attrs: { name: "write docs", status: "created" }
//	    expect:
//	      id: 1
//	  - op: advance
//	    duration: 3s
//	  - op: find
//	    model: Task
//	    id: 1
//	    expect:
//	      error: NOT_FOUND
//	assertions:
//	  - type: trace_count
//	    op: create
//	    count: 1
//
// # Step Operations
//
//   - create: allocate an id and persist attributes
//   - find: load a record by id
//   - update: apply assignments to an existing record
//   - save: persist a record's current attributes unconditionally
//   - advance: move the scenario clock forward
//
// # Assertion Types
//
//   - trace_contains: an event matching op/model/id appears in the trace
//   - trace_order: ops appear in the given relative order
//   - trace_count: events matching op/model/id appear exactly N times
//   - final_attributes: a record's persisted attributes match (subset)
//
// # Deterministic Testing
//
// Every run starts a fresh in-memory store with a manual clock frozen at
// a fixed epoch; advance steps move time explicitly instead of sleeping,
// so TTL expiry is exact. Scenarios that pin run_token produce
// byte-identical traces, which is what golden comparison relies on.
package harness
