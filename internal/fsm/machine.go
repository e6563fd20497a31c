// Package fsm provides the finite-state-machine declarations that govern
// record attributes.
//
// A machine names an attribute, an initial state, and the full set of legal
// state names. The record layer consults machines in two places: when a
// caller assigns a governed attribute, and again before every persist
// (covering direct mutation outside the update path). Which attributes are
// governed is an ordinary map lookup built once at model-definition time -
// there is no runtime probing.
package fsm

import (
	"fmt"
	"slices"
)

// Machine declares the legal states for one governed attribute.
//
// Machines are immutable after construction and safe for concurrent readers.
type Machine struct {
	// Name uniquely identifies the machine within a model type.
	Name string

	// Attribute is the declared attribute this machine governs.
	Attribute string

	// Initial is the state a fresh record is expected to enter first.
	// Must be a member of States.
	Initial string

	// States is the ordered set of legal state names.
	States []string
}

// Validate checks the machine's own declaration for consistency.
func (m Machine) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("machine: name must not be empty")
	}
	if m.Attribute == "" {
		return fmt.Errorf("machine %q: governed attribute must not be empty", m.Name)
	}
	if len(m.States) == 0 {
		return fmt.Errorf("machine %q: at least one state is required", m.Name)
	}
	seen := make(map[string]bool, len(m.States))
	for _, s := range m.States {
		if s == "" {
			return fmt.Errorf("machine %q: state names must not be empty", m.Name)
		}
		if seen[s] {
			return fmt.Errorf("machine %q: duplicate state %q", m.Name, s)
		}
		seen[s] = true
	}
	if m.Initial != "" && !seen[m.Initial] {
		return fmt.Errorf("machine %q: initial state %q is not a declared state", m.Name, m.Initial)
	}
	return nil
}

// Allows reports whether state is a member of the legal state set.
func (m Machine) Allows(state string) bool {
	return slices.Contains(m.States, state)
}

// Claims reports whether this machine governs the named attribute.
// A machine with no states claims nothing; a mismatched attribute name is
// not a match.
func (m Machine) Claims(attribute string) bool {
	return len(m.States) > 0 && m.Attribute == attribute
}
