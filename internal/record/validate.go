package record

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/roach88/hashrec/internal/attr"
)

// assign applies a batch of attribute values, running the assignment-time
// state check on every governed attribute before accepting it. Keys are
// processed in sorted order so partial failures are deterministic.
//
// Accepted input types per attribute: string, int, int64, attr.Value, or
// nil (clears the attribute). Values pass through the typed setter, so
// coercion to the declared kind applies exactly as it does on hydration.
func (r *Record) assign(attrs map[string]any) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !r.model.desc.schema.Has(name) {
			return fmt.Errorf("assign: attribute %q is not declared on %s", name, r.model.desc.name)
		}
		raw, empty, err := encodeInput(attrs[name])
		if err != nil {
			return fmt.Errorf("assign %q: %w", name, err)
		}
		if empty {
			r.attrs.Clear(name)
			continue
		}
		if machine, ok := r.model.desc.machines.MachineFor(name); ok && !machine.Allows(raw) {
			return NewInvalidValue(name, raw, machine.States)
		}
		if err := r.attrs.SetString(name, raw); err != nil {
			return err
		}
	}
	return nil
}

// validateStates is the pre-persist check: re-validate the current value
// of every governed attribute, covering direct mutation that bypassed
// assign. Empty values are exempt - a record that has not yet entered its
// initial state is valid.
func (r *Record) validateStates() error {
	for _, machine := range r.model.desc.machines.Machines() {
		v, ok := r.attrs.Get(machine.Attribute)
		if !ok || v.IsEmpty() {
			continue
		}
		if !machine.Allows(v.Encode()) {
			return NewInvalidValue(machine.Attribute, v.Encode(), machine.States)
		}
	}
	return nil
}

// encodeInput converts a caller-supplied attribute value to its storage
// string, reporting whether it counts as empty.
func encodeInput(v any) (raw string, empty bool, err error) {
	switch val := v.(type) {
	case nil:
		return "", true, nil
	case string:
		return val, val == "", nil
	case int:
		return strconv.Itoa(val), val == 0, nil
	case int64:
		return strconv.FormatInt(val, 10), val == 0, nil
	case attr.Value:
		return val.Encode(), val.IsEmpty(), nil
	default:
		return "", false, fmt.Errorf("unsupported value type %T", v)
	}
}
