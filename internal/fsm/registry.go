package fsm

import "fmt"

// Registry holds the machines declared on one model type and the
// attribute-to-machine mapping derived from them.
//
// The registry is populated at model-definition time and read-only after,
// so governed-attribute discovery is a plain lookup.
type Registry struct {
	order  []string
	byName map[string]Machine
	byAttr map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Machine),
		byAttr: make(map[string]string),
	}
}

// Add registers a machine. The machine must validate, its name must be
// unique, and no other machine may already govern the same attribute.
func (r *Registry) Add(m Machine) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if _, ok := r.byName[m.Name]; ok {
		return fmt.Errorf("machine %q already registered", m.Name)
	}
	if other, ok := r.byAttr[m.Attribute]; ok {
		return fmt.Errorf("attribute %q already governed by machine %q", m.Attribute, other)
	}
	r.order = append(r.order, m.Name)
	r.byName[m.Name] = m
	r.byAttr[m.Attribute] = m.Name
	return nil
}

// MachineFor returns the machine governing the named attribute, if any.
func (r *Registry) MachineFor(attribute string) (Machine, bool) {
	name, ok := r.byAttr[attribute]
	if !ok {
		return Machine{}, false
	}
	return r.byName[name], true
}

// Machines returns all registered machines in declaration order.
func (r *Registry) Machines() []Machine {
	out := make([]Machine, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered machines.
func (r *Registry) Len() int {
	return len(r.order)
}
