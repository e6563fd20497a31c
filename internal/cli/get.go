package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <model> <id>",
		Short: "Fetch a record by id",
		Long:  "Load the record's stored attributes and print them. A missing or\nexpired record fails with exit code 1.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, rootOpts, args[0], args[1])
		},
	}
	return cmd
}

func runGet(cmd *cobra.Command, opts *RootOptions, modelName, rawID string) error {
	id, err := parseID(rawID)
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
	return WriteRecord(cmd.OutOrStdout(), opts.Format, rec)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q: expected an integer", raw))
	}
	return id, nil
}
