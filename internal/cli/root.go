// Package cli implements the hashrec command-line interface: declaration
// validation and record operations against a running store.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	Addr        string // store endpoint, host:port
	ModelsDir   string // CUE model declarations
	JournalPath string // optional sqlite journal
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hashrec CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hashrec",
		Short: "hashrec - hash-store-backed records",
		Long:  "A record-mapping layer over a remote key-value hash store:\ndeterministic identities, partial updates, TTL-based expiry, and\nstate-machine validation.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", "localhost:6379", "store endpoint (host:port)")
	cmd.PersistentFlags().StringVar(&opts.ModelsDir, "models", "models", "directory of CUE model declarations")
	cmd.PersistentFlags().StringVar(&opts.JournalPath, "journal", "", "path to the sqlite audit journal (disabled when empty)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
