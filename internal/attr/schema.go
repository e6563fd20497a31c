package attr

import (
	"fmt"
	"strings"
)

// IDName is the reserved identifier attribute name. Identity is assigned
// once at creation and is immutable, so it can never be declared as an
// ordinary attribute.
const IDName = "id"

// Schema is the set of attribute declarations for one model type.
//
// Declarations are ordered; enumeration (Names) and everything built on it
// (encoding, validation, hydration) walk attributes in declaration order so
// behavior is deterministic.
//
// A Schema is built once at model-definition time and never mutated after,
// so it is safe for concurrent readers.
type Schema struct {
	names []string
	kinds map[string]Kind
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{kinds: make(map[string]Kind)}
}

// Declare registers an attribute with the given name and kind.
// Rejects the reserved identifier name, duplicates, empty names, and
// names starting with an underscore (reserved for storage metadata).
func (s *Schema) Declare(name string, kind Kind) error {
	if name == "" {
		return fmt.Errorf("declare: attribute name must not be empty")
	}
	if name == IDName {
		return fmt.Errorf("declare: %q is reserved for the record identifier", IDName)
	}
	if strings.HasPrefix(name, "_") {
		return fmt.Errorf("declare: attribute name %q is reserved for storage metadata", name)
	}
	if _, ok := s.kinds[name]; ok {
		return fmt.Errorf("declare: attribute %q already declared", name)
	}
	if kind != KindString && kind != KindInt {
		return fmt.Errorf("declare: invalid kind for attribute %q", name)
	}
	s.names = append(s.names, name)
	s.kinds[name] = kind
	return nil
}

// Names returns all declared attribute names in declaration order.
// The returned slice is a copy.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Kind returns the declared kind of name, and whether name is declared.
func (s *Schema) Kind(name string) (Kind, bool) {
	k, ok := s.kinds[name]
	return k, ok
}

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.kinds[name]
	return ok
}

// Len returns the number of declared attributes.
func (s *Schema) Len() int {
	return len(s.names)
}
