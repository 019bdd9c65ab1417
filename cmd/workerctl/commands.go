package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/workerdesk/internal/core"
)

type importOptions struct {
	batchSize int
	asJSON    bool
}

func newImportCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import workers from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			pool, workers, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svcOpts := core.Options{
				StagingDir:          a.cfg.Upload.StagingDir,
				MaxConcurrent:       1,
				BatchSize:           a.cfg.Upload.BatchSize,
				Timeout:             a.cfg.Upload.Timeout,
				MaxRejectedReported: a.cfg.Upload.MaxRejectedReported,
			}
			if opts.batchSize > 0 {
				svcOpts.BatchSize = opts.batchSize
			}

			svc, err := core.NewService(workers, svcOpts)
			if err != nil {
				return err
			}

			result, importErr := svc.ImportWorkers(ctx, filepath.Base(args[0]), f)
			if result != nil && result.Message != "" {
				if err := printImportResult(cmd.OutOrStdout(), result, opts.asJSON); err != nil {
					return err
				}
			}
			if importErr != nil {
				return errors.New(core.FormatUserError(importErr))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Rows per INSERT statement (default: UPLOAD_BATCH_SIZE)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full import result as JSON")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, workers, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			list, err := workers.ListWorkers(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeIndentedJSON(cmd.OutOrStdout(), list)
			}
			return printWorkers(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print workers as JSON")
	return cmd
}

func newInitDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the workers table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, workers, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := workers.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "workers table ready")
			return nil
		},
	}
}

// printImportResult writes the outcome line, then one line per listed
// rejected row.
func printImportResult(w io.Writer, result *core.ImportResult, asJSON bool) error {
	if asJSON {
		return writeIndentedJSON(w, result)
	}

	fmt.Fprintln(w, result.Message)
	fmt.Fprintf(w, "accepted: %d  inserted: %d  rejected: %d  (%dms)\n",
		result.AcceptedCount, result.InsertedCount, result.RejectedCount, result.DurationMS)

	for _, r := range result.RejectedRows {
		fmt.Fprintf(w, "  line %d: %s\n", r.Line, r.Reason)
	}
	if result.Truncated {
		fmt.Fprintf(w, "  ... %d more rejected rows not listed\n", result.RejectedCount-len(result.RejectedRows))
	}
	return nil
}

func printWorkers(w io.Writer, workers []core.Worker) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMPLOYEE ID\tEMAIL\tPHONE\tDEPARTMENT\tBORN\tJOINED\tROLE")
	for _, wk := range workers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			wk.ID, wk.Name, wk.EmployeeID, wk.Email, wk.PhoneNumber, wk.Department,
			dateOrDash(wk.DateOfBirth), dateOrDash(wk.DateOfJoining), wk.Role)
	}
	return tw.Flush()
}

func dateOrDash(d *string) string {
	if d == nil {
		return "-"
	}
	return *d
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
