// =============================================================================
// Payroll to Batch Transfer Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every payroll
// export waiting in the input directory.
//
// COMMAND USAGE:
//   converter process [flags]
//
// FLAGS:
//   --dry-run : Convert without writing output files or archiving inputs
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Read the template header row once
//   3. Discover payroll exports matching file_matching_patterns
//   4. For each file (concurrently, at most max_concurrency at a time):
//      a. Read the payroll sheet (or CSV)
//      b. Group, route and conform
//      c. Write the output workbook
//      d. Archive the export and the output
//   5. Write error and summary logs
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/converter"
	"github.com/ginjaninja78/payroll-batch-converter/internal/mapper"
	"github.com/ginjaninja78/payroll-batch-converter/internal/xlsxwriter"
	"github.com/ginjaninja78/payroll-batch-converter/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun converts without writing output files.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every payroll export in the input directory",
	Long: `The process command scans input_dir for payroll exports matching
file_matching_patterns and converts each against template_file.

Files are converted concurrently. An error in one file does not affect the
others unless continue_on_error is false.

On success:
  - The batch transfer workbook is placed in output_dir
  - The export is moved to input_archive_dir (archive_on_success)
  - A summary log is written to output_dir

On error:
  - The export stays in input_dir
  - An error log is written to output_dir`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Convert without writing output files or archiving inputs",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// fileOutcome is the result of processing one export.
type fileOutcome struct {
	result     converter.Result
	outputFile string
	archived   string
}

func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	fm.ArchiveOnSuccess = cfg.ShouldArchive() && !dryRun
	fm.UseTimestampSubdirs = cfg.ArchiveByDate
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	conv, err := converter.New(cfg.TransformationRules, logger)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: READ TEMPLATE
	// =========================================================================

	columns, err := readTemplate(cfg.TemplateFile, cfg.TemplateSheet)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	logger.Info("Loaded template", "file", cfg.TemplateFile, "columns", len(columns))

	// =========================================================================
	// STEP 3: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := fm.DiscoverInputFiles(cfg.FileMatchingPatterns)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		logger.Info("No payroll exports found", "dir", cfg.InputDir, "patterns", cfg.FileMatchingPatterns)
		return nil
	}
	logger.Info("Found payroll exports", "count", len(inputFiles), "dry_run", dryRun)

	// =========================================================================
	// STEP 4: PROCESS FILES CONCURRENTLY
	// =========================================================================

	outcomes := make([]fileOutcome, len(inputFiles))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.MaxConcurrency)

	for i, file := range inputFiles {
		i, file := i, file // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			outcomes[i] = processFile(ctx, cfg, conv, fm, logger, columns, file)
			if err := outcomes[i].result.Error; err != nil && !cfg.ShouldContinueOnError() {
				return fmt.Errorf("%s: %w", filepath.Base(file), err)
			}
			return nil
		})
	}
	groupErr := g.Wait()

	// =========================================================================
	// STEP 5: SUMMARY
	// =========================================================================

	summary, errorEntries := summarize(outcomes, startTime)

	fmt.Fprintln(cmd.OutOrStdout())
	for _, o := range outcomes {
		name := filepath.Base(o.result.Source)
		switch {
		case o.result.Source == "":
			// Never started: an earlier failure cancelled the run.
		case o.result.Success:
			fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s -> %s (%d transfer(s))\n", name, o.outputFile, o.result.Stats.RowsWritten)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "  ✗ %s: %v\n", name, o.result.Error)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\n=== Processing Complete ===")
	fmt.Fprintf(cmd.OutOrStdout(), "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(cmd.OutOrStdout(), "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(cmd.OutOrStdout(), "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(cmd.OutOrStdout(), "Transfers:       %d\n", summary.RowsWritten)
	fmt.Fprintf(cmd.OutOrStdout(), "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	if !dryRun {
		if path, err := utils.WriteErrorLog(errorEntries, cfg.OutputDir); err != nil {
			logger.Warn("Failed to write error log", "err", err)
		} else if path != "" {
			logger.Info("Wrote error log", "path", path)
		}
		if path, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
			logger.Warn("Failed to write summary log", "err", err)
		} else {
			logger.Debug("Wrote summary log", "path", path)
		}
	}

	if groupErr != nil {
		return groupErr
	}
	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// processFile converts one export and archives it on success.
func processFile(ctx context.Context, cfg *config.MainConfig, conv *converter.Converter, fm *utils.FileManager, logger *log.Logger, columns converter.Columns, file string) fileOutcome {
	var out fileOutcome
	if ctx.Err() != nil {
		return out
	}

	payroll, release, err := openPayroll(file, cfg.PayrollSheet, cfg.CSVSettings)
	if err != nil {
		out.result = converter.Result{Source: file, Error: err}
		return out
	}
	defer func() { release() }()

	var sink converter.ResultSink
	if dryRun {
		sink = xlsxwriter.Sink{W: io.Discard, Sheet: cfg.OutputSheet}
	} else {
		name := utils.GenerateOutputFileName(cfg.OutputFileFormat, map[string]string{
			"original": utils.BaseName(file),
		})
		out.outputFile = filepath.Join(cfg.OutputDir, name)
		sink = xlsxwriter.FileSink{Path: out.outputFile, Sheet: cfg.OutputSheet}
	}

	out.result = conv.Run(ctx, file, payroll, columns, sink)
	if !out.result.Success {
		return out
	}

	// Release the export before moving it.
	release()
	release = func() {}

	if fm.ArchiveOnSuccess {
		archived, err := fm.ArchiveInputFile(file)
		if err != nil {
			logger.Warn("Failed to archive payroll export", "file", file, "err", err)
		} else {
			out.archived = archived
		}
		if _, err := fm.ArchiveOutputFile(out.outputFile); err != nil {
			logger.Warn("Failed to archive output", "file", out.outputFile, "err", err)
		}
	}

	return out
}

// summarize folds the per-file outcomes into a summary and error log entries.
func summarize(outcomes []fileOutcome, startTime time.Time) (utils.ProcessingSummary, []utils.ErrorLogEntry) {
	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		EndTime:    time.Now(),
		TotalFiles: len(outcomes),
	}
	var entries []utils.ErrorLogEntry

	for _, o := range outcomes {
		r := o.result
		if r.Source == "" {
			continue
		}

		if !r.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.Source,
				ErrorMessage: r.Error.Error(),
				ErrorType:    errorType(r.Error),
			})
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     r.Source,
				ErrorType:    errorType(r.Error),
				ErrorMessage: r.Error.Error(),
			})
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalRows += r.Stats.RowsRead
		summary.TotalGroups += r.Stats.Groups
		summary.RowsWritten += r.Stats.RowsWritten
		summary.DroppedGroups += r.Stats.Dropped()
		summary.UnparsedAmounts += r.Stats.UnparsedAmounts
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   r.Source,
			OutputFile:  o.outputFile,
			ArchivePath: o.archived,
			Rows:        r.Stats.RowsRead,
			Groups:      r.Stats.Groups,
			RowsWritten: r.Stats.RowsWritten,
			ProcessTime: r.Stats.ProcessingTime,
		})
	}

	return summary, entries
}

// errorType classifies a conversion error for the logs.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, converter.ErrReadInput):
		return "read error"
	case errors.Is(err, mapper.ErrMalformedInput):
		return "malformed input"
	default:
		return "error"
	}
}
