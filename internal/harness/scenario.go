package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a sequence of record
// lifecycle steps executed against a fresh in-memory store, with expect
// clauses per step and assertions over the final trace and state.
type Scenario struct {
	// Name uniquely identifies this scenario. Also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Models is the directory of CUE model declarations, relative to the
	// scenario file.
	Models string `yaml:"models"`

	// RunToken is an optional fixed token for deterministic golden
	// comparison. When empty a random token is generated per run.
	RunToken string `yaml:"run_token,omitempty"`

	// Steps is the ordered list of operations to execute.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation in a scenario.
type Step struct {
	// Op is one of "create", "find", "update", "save", "advance".
	Op string `yaml:"op"`

	// Model is the short model name (all ops except advance).
	Model string `yaml:"model,omitempty"`

	// ID targets an existing record (find, update, save).
	ID int64 `yaml:"id,omitempty"`

	// Attrs are the attribute assignments (create, update). Values are
	// strings coerced to the declared kind; an empty string clears.
	Attrs map[string]string `yaml:"attrs,omitempty"`

	// Duration moves the scenario clock forward (advance only).
	Duration string `yaml:"duration,omitempty"`

	// Expect validates the step's outcome. Nil means the step must
	// simply succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies a step's expected outcome.
type ExpectClause struct {
	// Error is the expected failure code, e.g. "NOT_FOUND". Empty means
	// the step must succeed.
	Error string `yaml:"error,omitempty"`

	// ID is the expected record identifier (create).
	ID int64 `yaml:"id,omitempty"`

	// Value is the expected single-attribute update result, in storage
	// encoding.
	Value string `yaml:"value,omitempty"`

	// Attributes are expected attribute values, in storage encoding.
	// Subset match: only listed attributes are checked.
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// Assertion validates the final trace or store state.
type Assertion struct {
	// Type is one of "trace_contains", "trace_order", "trace_count",
	// "final_attributes".
	Type string `yaml:"type"`

	// Op is the operation name (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Ops is the expected operation order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Model scopes the assertion to one model type.
	Model string `yaml:"model,omitempty"`

	// ID targets one record (trace_contains, final_attributes).
	ID int64 `yaml:"id,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect are expected attribute values in storage encoding
	// (final_attributes). Subset match.
	Expect map[string]string `yaml:"expect,omitempty"`
}

// Step operation constants.
const (
	OpCreate  = "create"
	OpFind    = "find"
	OpUpdate  = "update"
	OpSave    = "save"
	OpAdvance = "advance"
)

// Assertion type constants.
const (
	AssertTraceContains   = "trace_contains"
	AssertTraceOrder      = "trace_order"
	AssertTraceCount      = "trace_count"
	AssertFinalAttributes = "final_attributes"
)

// LoadScenario reads and parses a scenario YAML file. The models path is
// resolved relative to the scenario file. Unknown YAML fields are
// rejected to catch typos.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if scenario.Models != "" && !filepath.IsAbs(scenario.Models) {
		scenario.Models = filepath.Join(filepath.Dir(path), scenario.Models)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and per-step shape.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Models == "" {
		return fmt.Errorf("models directory is required")
	}
	if _, err := os.Stat(s.Models); os.IsNotExist(err) {
		return fmt.Errorf("models directory not found: %s", s.Models)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpCreate:
		if step.Model == "" {
			return fmt.Errorf("steps[%d]: model is required for create", index)
		}
	case OpFind, OpSave:
		if step.Model == "" {
			return fmt.Errorf("steps[%d]: model is required for %s", index, step.Op)
		}
		if step.ID <= 0 {
			return fmt.Errorf("steps[%d]: id is required for %s", index, step.Op)
		}
	case OpUpdate:
		if step.Model == "" {
			return fmt.Errorf("steps[%d]: model is required for update", index)
		}
		if step.ID <= 0 {
			return fmt.Errorf("steps[%d]: id is required for update", index)
		}
		if len(step.Attrs) == 0 {
			return fmt.Errorf("steps[%d]: attrs is required for update", index)
		}
	case OpAdvance:
		if step.Duration == "" {
			return fmt.Errorf("steps[%d]: duration is required for advance", index)
		}
		if _, err := time.ParseDuration(step.Duration); err != nil {
			return fmt.Errorf("steps[%d]: invalid duration %q: %v", index, step.Duration, err)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertFinalAttributes:
		if a.Model == "" {
			return fmt.Errorf("assertions[%d]: model is required for final_attributes", index)
		}
		if a.ID <= 0 {
			return fmt.Errorf("assertions[%d]: id is required for final_attributes", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_attributes", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
