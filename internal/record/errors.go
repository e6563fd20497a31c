package record

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes record-layer errors.
type Code string

const (
	// CodeNotFound indicates Find on a missing, expired, or never-created
	// record. Non-retriable without a new id.
	CodeNotFound Code = "NOT_FOUND"

	// CodeStorageExpired indicates Update after the storage key's TTL
	// lapsed (or before creation completed). Distinct from NOT_FOUND: it
	// names an id the caller holds, implying the record once existed.
	CodeStorageExpired Code = "STORAGE_EXPIRED"

	// CodeInvalidValue indicates assignment or persistence of a governed
	// attribute outside its machine's legal state set.
	CodeInvalidValue Code = "INVALID_VALUE"

	// CodeMisconfigured indicates a model type with no resolvable storage
	// binding. Fatal, never retried.
	CodeMisconfigured Code = "MISCONFIGURED"
)

// Error is the structured error type for the record layer.
//
// Store-connectivity failures are NOT wrapped in Error - they propagate
// from the kv client with operation context only, so callers can
// distinguish "the store said no" from "the store was unreachable".
type Error struct {
	// Code identifies the error category.
	Code Code

	// Model is the qualified model name, when known.
	Model string

	// RecordID identifies the affected record (NOT_FOUND, STORAGE_EXPIRED).
	RecordID int64

	// Attribute names the offending attribute (INVALID_VALUE).
	Attribute string

	// Value is the rejected value (INVALID_VALUE).
	Value string

	// Legal is the machine's legal state set (INVALID_VALUE).
	Legal []string

	// Message carries free-form context (MISCONFIGURED).
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case CodeNotFound:
		return fmt.Sprintf("%s: %s record %d not found", e.Code, e.Model, e.RecordID)
	case CodeStorageExpired:
		return fmt.Sprintf("%s: storage for %s record %d has expired or was never created", e.Code, e.Model, e.RecordID)
	case CodeInvalidValue:
		return fmt.Sprintf("%s: %q is not a legal state for attribute %q (legal: %s)",
			e.Code, e.Value, e.Attribute, strings.Join(e.Legal, ", "))
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// NewNotFound creates a NOT_FOUND error naming the model type and id.
func NewNotFound(model string, id int64) *Error {
	return &Error{Code: CodeNotFound, Model: model, RecordID: id}
}

// NewStorageExpired creates a STORAGE_EXPIRED error naming the model type and id.
func NewStorageExpired(model string, id int64) *Error {
	return &Error{Code: CodeStorageExpired, Model: model, RecordID: id}
}

// NewInvalidValue creates an INVALID_VALUE error naming the attribute, the
// rejected value, and the legal state set. The legal slice is copied.
func NewInvalidValue(attribute, value string, legal []string) *Error {
	legalCopy := make([]string, len(legal))
	copy(legalCopy, legal)
	return &Error{Code: CodeInvalidValue, Attribute: attribute, Value: value, Legal: legalCopy}
}

// NewMisconfigured creates a MISCONFIGURED error for a model type with no
// usable storage binding.
func NewMisconfigured(model, message string) *Error {
	return &Error{Code: CodeMisconfigured, Model: model, Message: message}
}

// IsNotFound reports whether err is a NOT_FOUND record error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsStorageExpired reports whether err is a STORAGE_EXPIRED record error.
func IsStorageExpired(err error) bool {
	return hasCode(err, CodeStorageExpired)
}

// IsInvalidValue reports whether err is an INVALID_VALUE record error.
func IsInvalidValue(err error) bool {
	return hasCode(err, CodeInvalidValue)
}

// IsMisconfigured reports whether err is a MISCONFIGURED record error.
func IsMisconfigured(err error) bool {
	return hasCode(err, CodeMisconfigured)
}

func hasCode(err error, code Code) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
