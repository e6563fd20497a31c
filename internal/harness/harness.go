package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/hashrec/internal/attr"
	"github.com/roach88/hashrec/internal/kv"
	"github.com/roach88/hashrec/internal/record"
	"github.com/roach88/hashrec/internal/schema"
	"github.com/roach88/hashrec/internal/testutil"
)

// scenarioEpoch is the instant every scenario clock starts at. Fixed so
// creation timestamps and expiry deadlines are reproducible across runs.
var scenarioEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// TokenGenerator produces run tokens for scenario executions.
type TokenGenerator interface {
	Generate() string
}

// RandomTokenGenerator produces a fresh UUID per run. Used when a
// scenario does not pin a token; golden scenarios should pin one.
type RandomTokenGenerator struct{}

func (RandomTokenGenerator) Generate() string {
	return uuid.NewString()
}

// Harness executes one scenario against a fresh in-memory store with a
// manual clock, so expiry steps advance time instead of sleeping.
type Harness struct {
	store  *kv.Mem
	clock  *testutil.ManualClock
	models map[string]*record.Model

	// records created or found during the run, kept so later steps can
	// exercise in-memory records whose storage has expired underneath
	records map[string]*record.Record

	logger *slog.Logger
}

// Run executes a scenario and returns its result.
//
// Each run gets a fresh in-memory store and a clock frozen at a fixed
// epoch. Declarations are loaded from the scenario's models directory,
// every step executes in order, and assertions are evaluated against the
// final trace and store.
func Run(scenario *Scenario) (*Result, error) {
	token := scenario.RunToken
	if token == "" {
		token = RandomTokenGenerator{}.Generate()
	} else {
		token = testutil.NewFixedTokenGenerator(token).Generate()
	}

	loaded, errs := schema.Load(scenario.Models, schema.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("load declarations: %w", errs[0])
	}

	clock := testutil.NewManualClock(scenarioEpoch)
	store := kv.NewMem(kv.WithClock(clock))
	defer store.Close()

	h := &Harness{
		store:   store,
		clock:   clock,
		models:  make(map[string]*record.Model),
		records: make(map[string]*record.Record),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, desc := range loaded.Descriptors {
		m, err := record.NewModel(desc, store,
			record.WithModelClock(clock),
			record.WithLogger(h.logger))
		if err != nil {
			return nil, fmt.Errorf("bind model %s: %w", desc.Name(), err)
		}
		h.models[desc.ShortName()] = m
	}

	ctx := context.Background()
	result := NewResult(token)
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(ctx, h, result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one step, appends its trace event, and validates the
// expect clause. Domain failures become trace events and expect
// mismatches; only infrastructure problems return an error.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	switch step.Op {
	case OpAdvance:
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return fmt.Errorf("step %d: %w", index, err)
		}
		h.clock.Advance(d)
		result.Trace = append(result.Trace, TraceEvent{
			Op: OpAdvance,
			At: h.clock.Now().Unix(),
		})
		return nil

	case OpCreate:
		m, err := h.modelFor(step.Model)
		if err != nil {
			return fmt.Errorf("step %d: %w", index, err)
		}
		rec, opErr := m.Create(ctx, toAssignments(step.Attrs))
		event := TraceEvent{
			Op:    OpCreate,
			Model: step.Model,
			Attrs: step.Attrs,
			Error: errorCode(opErr),
			At:    h.clock.Now().Unix(),
		}
		if opErr == nil {
			event.ID = rec.ID()
			h.records[recordRef(step.Model, rec.ID())] = rec
		}
		result.Trace = append(result.Trace, event)
		h.checkExpect(index, step, rec, nil, opErr, result)
		return nil

	case OpFind:
		m, err := h.modelFor(step.Model)
		if err != nil {
			return fmt.Errorf("step %d: %w", index, err)
		}
		rec, opErr := m.Find(ctx, step.ID)
		result.Trace = append(result.Trace, TraceEvent{
			Op:    OpFind,
			Model: step.Model,
			ID:    step.ID,
			Error: errorCode(opErr),
			At:    h.clock.Now().Unix(),
		})
		if opErr == nil {
			h.records[recordRef(step.Model, step.ID)] = rec
		}
		h.checkExpect(index, step, rec, nil, opErr, result)
		return nil

	case OpUpdate:
		rec, err := h.recordFor(ctx, step.Model, step.ID)
		if err != nil {
			result.Trace = append(result.Trace, TraceEvent{
				Op:    OpUpdate,
				Model: step.Model,
				ID:    step.ID,
				Attrs: step.Attrs,
				Error: errorCode(err),
				At:    h.clock.Now().Unix(),
			})
			h.checkExpect(index, step, nil, nil, err, result)
			return nil
		}
		updated, opErr := rec.Update(ctx, toAssignments(step.Attrs))
		event := TraceEvent{
			Op:    OpUpdate,
			Model: step.Model,
			ID:    step.ID,
			Attrs: step.Attrs,
			Error: errorCode(opErr),
			At:    h.clock.Now().Unix(),
		}
		if v, ok := updated.(attr.Value); ok && v != nil {
			event.Value = v.Encode()
		}
		result.Trace = append(result.Trace, event)
		h.checkExpect(index, step, rec, updated, opErr, result)
		return nil

	case OpSave:
		rec, err := h.recordFor(ctx, step.Model, step.ID)
		var opErr error
		if err != nil {
			opErr = err
		} else {
			opErr = rec.Save(ctx)
		}
		result.Trace = append(result.Trace, TraceEvent{
			Op:    OpSave,
			Model: step.Model,
			ID:    step.ID,
			Error: errorCode(opErr),
			At:    h.clock.Now().Unix(),
		})
		h.checkExpect(index, step, rec, nil, opErr, result)
		return nil

	default:
		return fmt.Errorf("step %d: unknown op %q", index, step.Op)
	}
}

// modelFor resolves a model by its short name.
func (h *Harness) modelFor(name string) (*record.Model, error) {
	m, ok := h.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", name)
	}
	return m, nil
}

// recordFor returns the in-memory record a previous step produced, or
// finds it fresh. The cache is what lets expiry scenarios update a
// record whose storage key is already gone.
func (h *Harness) recordFor(ctx context.Context, model string, id int64) (*record.Record, error) {
	if rec, ok := h.records[recordRef(model, id)]; ok {
		return rec, nil
	}
	m, err := h.modelFor(model)
	if err != nil {
		return nil, err
	}
	rec, err := m.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	h.records[recordRef(model, id)] = rec
	return rec, nil
}

// checkExpect validates a step's outcome against its expect clause.
func (h *Harness) checkExpect(index int, step Step, rec *record.Record, updated any, opErr error, result *Result) {
	expect := step.Expect
	if expect == nil {
		if opErr != nil {
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, step.Op, opErr))
		}
		return
	}

	if expect.Error != "" {
		if code := errorCode(opErr); code != expect.Error {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %q (%v)", index, step.Op, expect.Error, code, opErr))
		}
		return
	}
	if opErr != nil {
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, step.Op, opErr))
		return
	}

	if expect.ID != 0 && (rec == nil || rec.ID() != expect.ID) {
		got := int64(0)
		if rec != nil {
			got = rec.ID()
		}
		result.AddError(fmt.Sprintf("steps[%d] %s: expected id %d, got %d", index, step.Op, expect.ID, got))
	}

	if expect.Value != "" {
		v, ok := updated.(attr.Value)
		if !ok || v == nil {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected value %q, got no value", index, step.Op, expect.Value))
		} else if v.Encode() != expect.Value {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected value %q, got %q", index, step.Op, expect.Value, v.Encode()))
		}
	}

	if len(expect.Attributes) > 0 {
		if rec == nil {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected attributes on a missing record", index, step.Op))
			return
		}
		got := encodedAttributes(rec)
		for name, want := range expect.Attributes {
			if got[name] != want {
				result.AddError(fmt.Sprintf("steps[%d] %s: attribute %q: expected %q, got %q", index, step.Op, name, want, got[name]))
			}
		}
	}
}

// toAssignments widens a YAML string map into the lifecycle input shape.
func toAssignments(attrs map[string]string) map[string]any {
	out := make(map[string]any, len(attrs))
	for name, value := range attrs {
		out[name] = value
	}
	return out
}

// encodedAttributes returns a record's attributes in storage encoding.
func encodedAttributes(rec *record.Record) map[string]string {
	out := make(map[string]string)
	for name, v := range rec.Attributes() {
		out[name] = v.Encode()
	}
	return out
}

// errorCode maps a lifecycle failure to its code, empty for nil.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var rerr *record.Error
	if errors.As(err, &rerr) {
		return string(rerr.Code)
	}
	return "ERROR"
}

func recordRef(model string, id int64) string {
	return fmt.Sprintf("%s/%d", model, id)
}
