package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/hashrec/internal/attr"
	"github.com/roach88/hashrec/internal/record"
)

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <model> <id> name=value [name=value ...]",
		Short: "Update attributes on a record",
		Long:  "Fetch the record, apply the given assignments, and persist the\nresult. A single assignment prints the new value; several print the\nwhole record. An empty value (name=) clears the attribute.",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, rootOpts, args[0], args[1], args[2:])
		},
	}
	return cmd
}

func runSet(cmd *cobra.Command, opts *RootOptions, modelName, rawID string, assignments []string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	attrs, err := parseAssignments(assignments)
	if err != nil {
		return err
	}

	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.close()

	m, err := rt.modelFor(modelName)
	if err != nil {
		return err
	}

	rec, err := m.Find(cmd.Context(), id)
	if err != nil {
		return operationExitError(err)
	}

	result, err := rec.Update(cmd.Context(), attrs)
	if err != nil {
		return operationExitError(err)
	}

	out := cmd.OutOrStdout()
	switch res := result.(type) {
	case *record.Record:
		return WriteRecord(out, opts.Format, res)
	case attr.Value:
		return WriteValue(out, opts.Format, res)
	default:
		// single-assignment update that cleared the attribute
		return WriteValue(out, opts.Format, nil)
	}
}
