package attr

import (
	"fmt"
	"strconv"
)

// Kind identifies the primitive type of a declared attribute.
type Kind int

const (
	// KindString declares a string-valued attribute.
	KindString Kind = iota + 1
	// KindInt declares an integer-valued attribute. Always int64.
	KindInt
)

// String returns the declaration-file spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a declaration-file spelling to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "int":
		return KindInt, nil
	default:
		return 0, fmt.Errorf("unknown attribute kind %q: must be string or int", s)
	}
}

// Value is a sealed interface over attribute values.
// Only String and Int implement it; hash storage holds only their
// string encodings, so every Value must round-trip through Encode/Decode.
type Value interface {
	attrValue() // sealed

	// Kind returns the value's primitive kind.
	Kind() Kind

	// Encode returns the string representation written to hash storage.
	Encode() string

	// IsEmpty reports whether the value counts as empty for persistence.
	// Empty values are never written and are exempt from state validation.
	IsEmpty() bool
}

// String is a string attribute value.
type String string

func (String) attrValue() {}

// Kind returns KindString.
func (String) Kind() Kind { return KindString }

// Encode returns the string itself.
func (v String) Encode() string { return string(v) }

// IsEmpty reports whether the string is "".
func (v String) IsEmpty() bool { return v == "" }

// Int is an integer attribute value.
type Int int64

func (Int) attrValue() {}

// Kind returns KindInt.
func (Int) Kind() Kind { return KindInt }

// Encode returns the base-10 representation.
func (v Int) Encode() string { return strconv.FormatInt(int64(v), 10) }

// IsEmpty reports whether the value is zero.
func (v Int) IsEmpty() bool { return v == 0 }

// Decode converts a stored string back to a typed Value of the given kind.
// This is the coercion step of hydration: raw hash fields pass through here
// so in-memory attributes regain their declared types.
func Decode(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindString:
		return String(raw), nil
	case KindInt:
		if raw == "" {
			return Int(0), nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode int from %q: %w", raw, err)
		}
		return Int(n), nil
	default:
		return nil, fmt.Errorf("decode: unknown kind %v", kind)
	}
}
