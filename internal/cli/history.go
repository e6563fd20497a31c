package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <model> <id>",
		Short: "Show a record's audit trail",
		Long:  "List the journaled lifecycle operations for one record, oldest\nfirst. Requires --journal.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to show (0 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, modelName, rawID string) error {
	if opts.JournalPath == "" {
		return NewExitError(ExitCommandError, "history requires --journal")
	}
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	rt, err := newRuntime(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.close()

	desc, ok := rt.result.FindByShortName(modelName)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown model %q", modelName))
	}

	entries, err := rt.journal.History(cmd.Context(), desc.Name(), id, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading journal", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "no journal entries for %s %d\n", desc.Name(), id)
		return nil
	}
	for _, e := range entries {
		fields := ""
		if len(e.Fields) > 0 {
			fields = " " + strings.Join(e.Fields, ",")
		}
		fmt.Fprintf(out, "%6d  %s  %-6s%s\n", e.Seq, e.LoggedAt.Format(time.RFC3339), e.Op, fields)
	}
	return nil
}
