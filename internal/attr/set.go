package attr

import "fmt"

// Set is the per-record typed attribute container.
//
// A Set holds at most one value per declared attribute; an attribute with
// no entry is empty. Setting an empty value clears the entry rather than
// storing it, so presence in the container and the persistence layer's
// notion of "non-empty" coincide.
//
// Not safe for concurrent use; a Set belongs to exactly one record.
type Set struct {
	schema *Schema
	values map[string]Value
}

// NewSet creates an empty container bound to schema.
func NewSet(schema *Schema) *Set {
	return &Set{
		schema: schema,
		values: make(map[string]Value),
	}
}

// Schema returns the schema this container is bound to.
func (s *Set) Schema() *Schema {
	return s.schema
}

// Get returns the current value of name and whether one is set.
func (s *Set) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set assigns a typed value to a declared attribute. The value's kind must
// match the declaration. A nil or empty value clears the attribute.
func (s *Set) Set(name string, v Value) error {
	kind, ok := s.schema.Kind(name)
	if !ok {
		return fmt.Errorf("set: attribute %q is not declared", name)
	}
	if v == nil || v.IsEmpty() {
		delete(s.values, name)
		return nil
	}
	if v.Kind() != kind {
		return fmt.Errorf("set: attribute %q is %v, got %v", name, kind, v.Kind())
	}
	s.values[name] = v
	return nil
}

// SetString assigns an attribute from its storage string, coercing to the
// declared kind. Hydration and user input both funnel through here so every
// value entering the container passes type coercion.
func (s *Set) SetString(name, raw string) error {
	kind, ok := s.schema.Kind(name)
	if !ok {
		return fmt.Errorf("set: attribute %q is not declared", name)
	}
	v, err := Decode(kind, raw)
	if err != nil {
		return fmt.Errorf("set %q: %w", name, err)
	}
	return s.Set(name, v)
}

// Clear removes any value set for name.
func (s *Set) Clear(name string) {
	delete(s.values, name)
}

// Values returns a copy of the name-to-value mapping for every non-empty
// attribute. This is the plain "attributes" view the typed-attribute
// system's consumers expect.
func (s *Set) Values() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Len returns the number of non-empty attributes.
func (s *Set) Len() int {
	return len(s.values)
}
