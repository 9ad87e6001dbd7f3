package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/drivelab/oscheck/internal/batch"
	"github.com/drivelab/oscheck/internal/report"
	"github.com/drivelab/oscheck/internal/store"
)

// batchOptions holds flags specific to the batch command.
type batchOptions struct {
	Workers int
	CSVPath string
	DBPath  string
}

// NewBatchCommand creates the directory batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Analyze every .xosc file in a directory",
		Long: `Analyze all OpenSCENARIO files in a directory with a worker pool.

Each file is analyzed independently; a file that fails validation is
recorded as failed and never aborts the run. Exit code is 1 when any
file failed or produced error findings, 0 otherwise.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker pool size (default: config, then NumCPU)")
	cmd.Flags().StringVar(&opts.CSVPath, "out-csv", "", "write the per-file rollup as CSV to this path")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "record the run in a SQLite results database at this path")

	return cmd
}

func runBatch(rootOpts *RootOptions, opts *batchOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	cfg, err := loadConfig(rootOpts)
	if err != nil {
		_ = formatter.Error("E100", err.Error(), nil)
		return err
	}

	workers := cfg.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	startedAt := time.Now()
	res, err := batch.Run(cmd.Context(), dir, cfg.Checker(), workers)
	if err != nil {
		_ = formatter.Error("E200", err.Error(), nil)
		return WrapExitError(ExitCommandError, "batch run", err)
	}

	if opts.DBPath != "" {
		if err := recordRun(cmd, opts.DBPath, res, startedAt); err != nil {
			return WrapExitError(ExitCommandError, "record run", err)
		}
		formatter.VerboseLog("recorded run %s in %s", res.RunID, opts.DBPath)
	}

	rows := batchRows(res)
	if opts.CSVPath != "" {
		if err := writeBatchCSVFile(opts.CSVPath, rows); err != nil {
			return WrapExitError(ExitCommandError, "write CSV report", err)
		}
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(CLIResponse{Status: "ok", Data: res}); err != nil {
			return err
		}
	} else {
		if err := writeBatchText(formatter, res, rows); err != nil {
			return err
		}
	}

	if code := batchExitCode(res); code != ExitSuccess {
		return NewExitError(code, fmt.Sprintf("batch run %s had failed files or error findings", res.RunID))
	}
	return nil
}

func recordRun(cmd *cobra.Command, dbPath string, res *batch.Result, startedAt time.Time) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.WriteRun(cmd.Context(), res, startedAt)
}

func batchRows(res *batch.Result) []report.BatchRow {
	rows := make([]report.BatchRow, 0, len(res.Files))
	for _, fr := range res.Files {
		rows = append(rows, report.BatchRow{
			Path:     fr.Path,
			Analyzed: fr.Analyzed,
			Errors:   fr.Summary.Errors(),
			Warnings: fr.Summary.Warnings(),
			Total:    fr.Summary.Total,
		})
	}
	return rows
}

func writeBatchCSVFile(path string, rows []report.BatchRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteBatchCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeBatchText(formatter *OutputFormatter, res *batch.Result, rows []report.BatchRow) error {
	w := formatter.Writer
	if _, err := fmt.Fprintf(w, "run %s: %d file(s), %d analyzed, %d failed\n",
		res.RunID, len(res.Files), res.Analyzed, res.Failed); err != nil {
		return err
	}

	for _, row := range rows {
		status := "ok"
		if !row.Analyzed {
			status = "failed"
		} else if row.Errors > 0 {
			status = "errors"
		}
		if _, err := fmt.Fprintf(w, "  %-7s %s: %d error(s), %d warning(s)\n",
			status, row.Path, row.Errors, row.Warnings); err != nil {
			return err
		}
	}
	return nil
}

// batchExitCode reduces a batch result to the process exit code. Any
// failed file or error finding means failure.
func batchExitCode(res *batch.Result) int {
	if res.Failed > 0 {
		return ExitFailure
	}
	for _, fr := range res.Files {
		if fr.Summary.Errors() > 0 {
			return ExitFailure
		}
	}
	return ExitSuccess
}
