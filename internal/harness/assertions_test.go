package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithAssertions(t *testing.T, assertions []Assertion) *Result {
	t.Helper()
	s := &Scenario{
		Name:        "assertion_fixture",
		Description: "two tasks and an update to assert over",
		Models:      "testdata/models",
		RunToken:    "assert-run",
		Steps: []Step{
			{Op: OpCreate, Model: "Task", Attrs: map[string]string{"name": "one", "status": "created"}},
			{Op: OpCreate, Model: "Task", Attrs: map[string]string{"name": "two"}},
			{Op: OpUpdate, Model: "Task", ID: 1, Attrs: map[string]string{"status": "processed"}},
		},
		Assertions: assertions,
	}
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestTraceContains(t *testing.T) {
	result := runWithAssertions(t, []Assertion{
		{Type: AssertTraceContains, Op: OpCreate, Model: "Task", ID: 2},
	})
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceContainsMiss(t *testing.T) {
	result := runWithAssertions(t, []Assertion{
		{Type: AssertTraceContains, Op: OpSave, Model: "Task"},
	})
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "trace_contains")
}

func TestTraceOrder(t *testing.T) {
	result := runWithAssertions(t, []Assertion{
		{Type: AssertTraceOrder, Ops: []string{OpCreate, OpUpdate}},
	})
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceOrderViolation(t *testing.T) {
	result := runWithAssertions(t, []Assertion{
		{Type: AssertTraceOrder, Ops: []string{OpUpdate, OpCreate}},
	})
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "trace_order")
}

func TestTraceCount(t *testing.T) {
	result := runWithAssertions(t, []Assertion{
		{Type: AssertTraceCount, Op: OpCreate, Count: 2},
		{Type: AssertTraceCount, Op: OpCreate, Model: "Task", ID: 1, Count: 1},
	})
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceCountMismatch(t *testing.T) {
	result := runWithAssertions(t, []Assertion{
		{Type: AssertTraceCount, Op: OpCreate, Count: 5},
	})
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected 5 create events, got 2")
}

func TestFinalAttributes(t *testing.T) {
	result := runWithAssertions(t, []Assertion{
		{Type: AssertFinalAttributes, Model: "Task", ID: 1,
			Expect: map[string]string{"name": "one", "status": "processed"}},
	})
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestFinalAttributesMismatch(t *testing.T) {
	result := runWithAssertions(t, []Assertion{
		{Type: AssertFinalAttributes, Model: "Task", ID: 1,
			Expect: map[string]string{"status": "failed"}},
	})
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `attribute "status"`)
}

func TestFinalAttributesMissingRecord(t *testing.T) {
	result := runWithAssertions(t, []Assertion{
		{Type: AssertFinalAttributes, Model: "Task", ID: 9,
			Expect: map[string]string{"name": "x"}},
	})
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "final_attributes")
}
