package harness

import (
	"context"
	"fmt"
)

// EvaluateAssertions checks every assertion against the final trace and
// store state, returning one message per mismatch.
func EvaluateAssertions(ctx context.Context, h *Harness, result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err string
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(i, &a, result.Trace)
		case AssertTraceOrder:
			err = assertTraceOrder(i, &a, result.Trace)
		case AssertTraceCount:
			err = assertTraceCount(i, &a, result.Trace)
		case AssertFinalAttributes:
			err = assertFinalAttributes(ctx, i, &a, h)
		default:
			err = fmt.Sprintf("assertions[%d]: unknown type %q", i, a.Type)
		}
		if err != "" {
			errs = append(errs, err)
		}
	}
	return errs
}

// matches reports whether a trace event satisfies the assertion's op,
// model, and id filters.
func matches(a *Assertion, e TraceEvent) bool {
	if a.Op != "" && e.Op != a.Op {
		return false
	}
	if a.Model != "" && e.Model != a.Model {
		return false
	}
	if a.ID != 0 && e.ID != a.ID {
		return false
	}
	return true
}

func assertTraceContains(index int, a *Assertion, trace []TraceEvent) string {
	for _, e := range trace {
		if matches(a, e) {
			return ""
		}
	}
	return fmt.Sprintf("assertions[%d] trace_contains: no %s event matched (model=%q id=%d)", index, a.Op, a.Model, a.ID)
}

func assertTraceOrder(index int, a *Assertion, trace []TraceEvent) string {
	next := 0
	for _, e := range trace {
		if next < len(a.Ops) && e.Op == a.Ops[next] {
			next++
		}
	}
	if next != len(a.Ops) {
		return fmt.Sprintf("assertions[%d] trace_order: expected op %q at position %d, not found in order", index, a.Ops[next], next)
	}
	return ""
}

func assertTraceCount(index int, a *Assertion, trace []TraceEvent) string {
	count := 0
	for _, e := range trace {
		if matches(a, e) {
			count++
		}
	}
	if count != a.Count {
		return fmt.Sprintf("assertions[%d] trace_count: expected %d %s events, got %d", index, a.Count, a.Op, count)
	}
	return ""
}

// assertFinalAttributes re-reads the record from the store after all
// steps ran, so it observes persisted state rather than in-memory state.
func assertFinalAttributes(ctx context.Context, index int, a *Assertion, h *Harness) string {
	m, err := h.modelFor(a.Model)
	if err != nil {
		return fmt.Sprintf("assertions[%d] final_attributes: %v", index, err)
	}
	rec, err := m.Find(ctx, a.ID)
	if err != nil {
		return fmt.Sprintf("assertions[%d] final_attributes: %s %d: %v", index, a.Model, a.ID, err)
	}
	got := encodedAttributes(rec)
	for name, want := range a.Expect {
		if got[name] != want {
			return fmt.Sprintf("assertions[%d] final_attributes: %s %d attribute %q: expected %q, got %q", index, a.Model, a.ID, name, want, got[name])
		}
	}
	return ""
}
