package cli

import (
	"github.com/spf13/cobra"
)

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <model> [name=value ...]",
		Short: "Create a record",
		Long:  "Allocate an identifier, persist the given attributes, and print\nthe new record. Values are coerced to the declared attribute kind.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, rootOpts, args[0], args[1:])
		},
	}
	return cmd
}

func runCreate(cmd *cobra.Command, opts *RootOptions, modelName string, assignments []string) error {
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

	rec, err := m.Create(cmd.Context(), attrs)
	if err != nil {
		return operationExitError(err)
	}
	return WriteRecord(cmd.OutOrStdout(), opts.Format, rec)
}
