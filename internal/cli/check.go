package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/drivelab/oscheck/internal/check"
	"github.com/drivelab/oscheck/internal/model"
	"github.com/drivelab/oscheck/internal/report"
	"github.com/drivelab/oscheck/internal/xosc"
)

// checkOptions holds flags specific to the check command.
type checkOptions struct {
	CSVPath   string
	SARIFPath string
}

// NewCheckCommand creates the single-file check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <file.xosc>",
		Short: "Analyze a single scenario file",
		Long: `Analyze one OpenSCENARIO file and report its findings.

Files that fail structural validation are reported with their schema
findings and skip the rule engine. Exit code is 1 when the file failed
validation or any error-severity finding was produced, 0 otherwise.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CSVPath, "out-csv", "", "write findings as CSV to this path")
	cmd.Flags().StringVar(&opts.SARIFPath, "out-sarif", "", "write findings as SARIF to this path")

	return cmd
}

func runCheck(rootOpts *RootOptions, opts *checkOptions, path string, cmd *cobra.Command) error {
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

	rep := analyzeOne(path, cfg.Checker())
	formatter.VerboseLog("analyzed %s: %d finding(s)", path, rep.Summary.Total)

	if opts.CSVPath != "" {
		if err := writeReportFile(opts.CSVPath, rep, report.WriteCSV); err != nil {
			return WrapExitError(ExitCommandError, "write CSV report", err)
		}
	}
	if opts.SARIFPath != "" {
		if err := writeReportFile(opts.SARIFPath, rep, report.WriteSARIF); err != nil {
			return WrapExitError(ExitCommandError, "write SARIF report", err)
		}
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(CLIResponse{Status: "ok", Data: rep}); err != nil {
			return err
		}
	} else {
		if err := report.WriteText(formatter.Writer, rep); err != nil {
			return err
		}
	}

	if !rep.Analyzed {
		return NewExitError(ExitFailure, fmt.Sprintf("%s failed validation", path))
	}
	if errs := rep.Summary.Errors(); errs > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s has %d error finding(s)", path, errs))
	}
	return nil
}

// analyzeOne runs the single-file pipeline and keeps the scenario header
// for the report, which the batch rollup does not need.
func analyzeOne(path string, cfg check.Config) *report.FileReport {
	res, err := xosc.Load(path)
	if err != nil {
		findings := check.Aggregate([]check.Finding{xosc.FileFailure(err)})
		return &report.FileReport{
			Path:     path,
			Findings: findings,
			Summary:  check.Summarize(findings),
		}
	}

	var header model.Header
	if res.Scenario != nil {
		header = res.Scenario.Header
	}

	if res.Scenario == nil || len(res.Schema) > 0 {
		findings := check.Aggregate(res.Schema)
		return &report.FileReport{
			Path:     path,
			Header:   header,
			Findings: findings,
			Summary:  check.Summarize(findings),
		}
	}

	findings, summary := check.Analyze(res.Scenario, cfg)
	return &report.FileReport{
		Path:     path,
		Header:   header,
		Analyzed: true,
		Findings: findings,
		Summary:  summary,
	}
}

func writeReportFile(path string, rep *report.FileReport, write func(w io.Writer, r *report.FileReport) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
