// Package schema loads model declarations from CUE files and compiles them
// into record descriptors.
//
// A declaration file describes model types under a top-level "model" struct:
//
//	model: Task: {
//		qualified: "myapp.Task"
//		attributes: {
//			name:        "string"
//			description: "string"
//			status:      "string"
//		}
//		machines: status: {
//			attribute: "status"
//			initial:   "created"
//			states: ["created", "processed", "failed"]
//		}
//		expires_in: "2s"
//	}
//
// Compilation uses the CUE SDK's Go API directly (not a CLI subprocess) and
// produces immutable record.Descriptor values; every wiring rule the record
// layer enforces at construction (machines govern declared string
// attributes, durations parse) surfaces here with CUE positions attached.
package schema

import (
	"fmt"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/hashrec/internal/attr"
	"github.com/roach88/hashrec/internal/fsm"
	"github.com/roach88/hashrec/internal/record"
)

// CompileError describes a declaration problem with its CUE position.
type CompileError struct {
	Model   string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: model %s: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Model, e.Field, e.Message)
	}
	return fmt.Sprintf("model %s: %s: %s", e.Model, e.Field, e.Message)
}

// Compile parses one model declaration into a record descriptor. The label
// is the model's short name (the struct key under "model").
func Compile(label string, v cue.Value) (*record.Descriptor, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Model: label, Field: "model", Message: err.Error(), Pos: v.Pos()}
	}

	qualified := label
	qualVal := v.LookupPath(cue.ParsePath("qualified"))
	if qualVal.Exists() {
		q, err := qualVal.String()
		if err != nil {
			return nil, &CompileError{Model: label, Field: "qualified", Message: "must be a string", Pos: qualVal.Pos()}
		}
		qualified = q
	}

	schema, err := compileAttributes(label, v)
	if err != nil {
		return nil, err
	}

	var opts []record.DescriptorOption

	machines, err := compileMachines(label, v)
	if err != nil {
		return nil, err
	}
	for _, m := range machines {
		opts = append(opts, record.WithMachine(m))
	}

	ttlVal := v.LookupPath(cue.ParsePath("expires_in"))
	if ttlVal.Exists() {
		raw, err := ttlVal.String()
		if err != nil {
			return nil, &CompileError{Model: label, Field: "expires_in", Message: "must be a duration string", Pos: ttlVal.Pos()}
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, &CompileError{Model: label, Field: "expires_in", Message: fmt.Sprintf("invalid duration %q", raw), Pos: ttlVal.Pos()}
		}
		opts = append(opts, record.WithExpiresIn(d))
	}

	desc, err := record.NewDescriptor(qualified, schema, opts...)
	if err != nil {
		return nil, &CompileError{Model: label, Field: "model", Message: err.Error(), Pos: v.Pos()}
	}
	return desc, nil
}

// compileAttributes parses the required attributes struct into a schema.
func compileAttributes(label string, v cue.Value) (*attr.Schema, error) {
	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if !attrsVal.Exists() {
		return nil, &CompileError{Model: label, Field: "attributes", Message: "attributes are required", Pos: v.Pos()}
	}

	iter, err := attrsVal.Fields()
	if err != nil {
		return nil, &CompileError{Model: label, Field: "attributes", Message: err.Error(), Pos: attrsVal.Pos()}
	}

	schema := attr.NewSchema()
	for iter.Next() {
		name := iter.Selector().Unquoted()
		kindStr, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Model: label, Field: "attributes." + name, Message: "kind must be a string", Pos: iter.Value().Pos()}
		}
		kind, err := attr.ParseKind(kindStr)
		if err != nil {
			return nil, &CompileError{Model: label, Field: "attributes." + name, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		if err := schema.Declare(name, kind); err != nil {
			return nil, &CompileError{Model: label, Field: "attributes." + name, Message: err.Error(), Pos: iter.Value().Pos()}
		}
	}
	if schema.Len() == 0 {
		return nil, &CompileError{Model: label, Field: "attributes", Message: "at least one attribute is required", Pos: attrsVal.Pos()}
	}
	return schema, nil
}

// compileMachines parses the optional machines struct.
func compileMachines(label string, v cue.Value) ([]fsm.Machine, error) {
	machVal := v.LookupPath(cue.ParsePath("machines"))
	if !machVal.Exists() {
		return nil, nil
	}

	iter, err := machVal.Fields()
	if err != nil {
		return nil, &CompileError{Model: label, Field: "machines", Message: err.Error(), Pos: machVal.Pos()}
	}

	var machines []fsm.Machine
	for iter.Next() {
		name := iter.Selector().Unquoted()
		mv := iter.Value()

		m := fsm.Machine{Name: name}

		attrVal := mv.LookupPath(cue.ParsePath("attribute"))
		if !attrVal.Exists() {
			return nil, &CompileError{Model: label, Field: "machines." + name, Message: "attribute is required", Pos: mv.Pos()}
		}
		if m.Attribute, err = attrVal.String(); err != nil {
			return nil, &CompileError{Model: label, Field: "machines." + name + ".attribute", Message: "must be a string", Pos: attrVal.Pos()}
		}

		initVal := mv.LookupPath(cue.ParsePath("initial"))
		if initVal.Exists() {
			if m.Initial, err = initVal.String(); err != nil {
				return nil, &CompileError{Model: label, Field: "machines." + name + ".initial", Message: "must be a string", Pos: initVal.Pos()}
			}
		}

		statesVal := mv.LookupPath(cue.ParsePath("states"))
		if !statesVal.Exists() {
			return nil, &CompileError{Model: label, Field: "machines." + name, Message: "states are required", Pos: mv.Pos()}
		}
		stateIter, err := statesVal.List()
		if err != nil {
			return nil, &CompileError{Model: label, Field: "machines." + name + ".states", Message: "must be a list of strings", Pos: statesVal.Pos()}
		}
		for stateIter.Next() {
			s, err := stateIter.Value().String()
			if err != nil {
				return nil, &CompileError{Model: label, Field: "machines." + name + ".states", Message: "states must be strings", Pos: stateIter.Value().Pos()}
			}
			m.States = append(m.States, s)
		}

		if err := m.Validate(); err != nil {
			return nil, &CompileError{Model: label, Field: "machines." + name, Message: err.Error(), Pos: mv.Pos()}
		}
		machines = append(machines, m)
	}
	return machines, nil
}
