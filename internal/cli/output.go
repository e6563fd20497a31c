package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/roach88/hashrec/internal/attr"
	"github.com/roach88/hashrec/internal/record"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (not found, expired, invalid value)
	ExitCommandError = 2 // Command error (bad flags, unreadable declarations, store unreachable)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError, and
// ExitSuccess (0) for nil.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// recordView is the serializable projection of a record.
type recordView struct {
	Model      string         `json:"model"`
	ID         int64          `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

func viewOf(r *record.Record) recordView {
	attrs := make(map[string]any)
	for name, v := range r.Attributes() {
		attrs[name] = valueToAny(v)
	}
	return recordView{
		Model:      r.Model().Descriptor().Name(),
		ID:         r.ID(),
		Attributes: attrs,
	}
}

// valueToAny unwraps a typed attribute value for serialization.
func valueToAny(v attr.Value) any {
	switch val := v.(type) {
	case attr.Int:
		return int64(val)
	case attr.String:
		return string(val)
	default:
		return v.Encode()
	}
}

// WriteRecord renders a record in the requested format.
func WriteRecord(w io.Writer, format string, r *record.Record) error {
	view := viewOf(r)
	if format == "json" {
		return writeJSON(w, view)
	}

	fmt.Fprintf(w, "%s %d\n", view.Model, view.ID)
	names := make([]string, 0, len(view.Attributes))
	for name := range view.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %v\n", name, view.Attributes[name])
	}
	return nil
}

// WriteValue renders a bare attribute value (single-field update result).
func WriteValue(w io.Writer, format string, v attr.Value) error {
	if format == "json" {
		if v == nil {
			return writeJSON(w, map[string]any{"value": nil})
		}
		return writeJSON(w, map[string]any{"value": valueToAny(v)})
	}
	if v == nil {
		fmt.Fprintln(w, "(cleared)")
		return nil
	}
	fmt.Fprintln(w, v.Encode())
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
