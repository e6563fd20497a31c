package cli

import (
	"fmt"
	"strings"
)

// parseAssignments turns name=value arguments into an attribute mapping.
// Values are passed through as strings; the record layer coerces them to
// the declared attribute kind. An empty value clears the attribute.
func parseAssignments(args []string) (map[string]any, error) {
	attrs := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid assignment %q: expected name=value", arg))
		}
		if name == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid assignment %q: empty attribute name", arg))
		}
		if _, dup := attrs[name]; dup {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("duplicate assignment for %q", name))
		}
		attrs[name] = value
	}
	return attrs, nil
}
