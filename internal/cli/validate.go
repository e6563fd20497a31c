package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hashrec/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	FailFast bool
}

// validateReport is the JSON output shape of the validate command.
type validateReport struct {
	Valid     bool              `json:"valid"`
	FileCount int               `json:"file_count"`
	Models    []modelSummary    `json:"models"`
	Errors    []validationError `json:"errors,omitempty"`
}

type modelSummary struct {
	Name      string   `json:"name"`
	Namespace string   `json:"namespace"`
	Attrs     []string `json:"attributes"`
	Machines  []string `json:"machines,omitempty"`
	ExpiresIn string   `json:"expires_in,omitempty"`
}

type validationError struct {
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate model declarations",
		Long:  "Compile every CUE model declaration and report errors.\nNo store connection is made.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop at the first declaration error")
	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	mode := schema.LoadModeCollectAll
	if opts.FailFast {
		mode = schema.LoadModeFailFast
	}

	result, errs := schema.Load(opts.ModelsDir, mode)
	report := validateReport{Valid: len(errs) == 0}
	if result != nil {
		report.FileCount = result.FileCount
		for _, desc := range result.Descriptors {
			summary := modelSummary{
				Name:      desc.Name(),
				Namespace: desc.Namespace(),
				Attrs:     desc.Schema().Names(),
			}
			for _, m := range desc.Machines().Machines() {
				summary.Machines = append(summary.Machines, m.Name)
			}
			if ttl := desc.ExpiresIn(); ttl > 0 {
				summary.ExpiresIn = ttl.Round(time.Second).String()
			}
			report.Models = append(report.Models, summary)
		}
	}
	for _, err := range errs {
		report.Errors = append(report.Errors, validationError{Message: err.Error()})
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, m := range report.Models {
			fmt.Fprintf(out, "ok   %s -> %s (%d attributes)\n", m.Name, m.Namespace, len(m.Attrs))
		}
		for _, e := range report.Errors {
			fmt.Fprintf(out, "FAIL %s\n", e.Message)
		}
		if report.Valid {
			fmt.Fprintf(out, "%d file(s), %d model(s), no errors\n", report.FileCount, len(report.Models))
		}
	}

	if !report.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d declaration error(s)", len(report.Errors)))
	}
	return nil
}
