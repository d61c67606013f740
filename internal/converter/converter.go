// =============================================================================
// Payroll to Batch Transfer Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the
// pipeline for a single payroll export, from reading the inputs to writing
// the batch transfer workbook.
//
// CONVERSION PIPELINE:
//   1. Read the output schema (template header row)
//   2. Read the payroll table
//   3. Validate the structure of both inputs
//   4. Apply the configured column transformations
//   5. Extract payroll records
//   6. Group, route and conform (mapper)
//   7. Write the result
//
// Steps 1, 2 and 7 go through small interfaces (PayrollSource, SchemaSource,
// ResultSink) so the same pipeline serves the CLI, the batch processor and
// the HTTP handler.
//
// ERRORS:
//   - ErrReadInput wraps failures to read either input (missing file or
//     sheet, corrupt workbook).
//   - mapper.ErrMalformedInput wraps structurally unusable input (missing
//     required columns, empty or duplicated schema columns). Payroll rows
//     with an empty key cell are skipped, not rejected.
//   - Unparseable amounts and unsupported currencies are NOT errors; they
//     are counted in the result statistics and logged as warnings.
//
// CONCURRENCY:
//   A Converter holds no per-run state and can be shared by goroutines.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/mapper"
	"github.com/ginjaninja78/payroll-batch-converter/internal/types"
	"github.com/ginjaninja78/payroll-batch-converter/internal/validation"
	"github.com/google/uuid"
)

// ErrReadInput is wrapped by errors that come from reading an input.
var ErrReadInput = errors.New("converter: error reading input")

// =============================================================================
// PORTS
// =============================================================================

// PayrollSource provides the payroll table.
type PayrollSource interface {
	ReadPayroll(ctx context.Context) (*types.Table, error)
}

// SchemaSource provides the ordered output columns.
type SchemaSource interface {
	ReadSchema(ctx context.Context) ([]string, error)
}

// ResultSink receives the converted rows.
type ResultSink interface {
	WriteResult(ctx context.Context, columns []string, rows []types.Row) error
}

// Columns is a schema that has already been read. It lets several runs
// share one template.
type Columns []string

// ReadSchema returns a copy of c.
func (c Columns) ReadSchema(context.Context) ([]string, error) {
	return append([]string(nil), c...), nil
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single payroll export.
type Result struct {
	// RunID identifies this run in the logs.
	RunID string

	// Source names the payroll input.
	Source string

	// Success indicates whether the output was written.
	Success bool

	// Error contains the error if the conversion failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of non-empty payroll rows read.
	RowsRead int

	// Records is the number of payroll records mapped.
	Records int

	// Groups is the number of recipient-currency groups.
	Groups int

	// RowsWritten is the number of batch transfer rows produced.
	RowsWritten int

	// DroppedGroups counts groups with an unsupported currency, per code.
	DroppedGroups map[string]int

	// UnparsedAmounts is the number of amount cells counted as zero.
	UnparsedAmounts int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// Dropped returns the total number of dropped groups.
func (s ProcessingStats) Dropped() int {
	n := 0
	for _, c := range s.DroppedGroups {
		n += c
	}
	return n
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the conversion pipeline.
type Converter struct {
	transformer *Transformer
	logger      *log.Logger
}

// New creates a Converter applying rules to every payroll table it reads.
// rules may be empty.
func New(rules []config.TransformationRule, logger *log.Logger) (*Converter, error) {
	transformer, err := NewTransformer(rules)
	if err != nil {
		return nil, fmt.Errorf("invalid transformation rules: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	if !transformer.Empty() {
		logger.Debug("Transformation rules enabled", "rules", len(rules))
	}
	return &Converter{transformer: transformer, logger: logger}, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline. source names the payroll input in
// logs and in the result.
func (c *Converter) Run(ctx context.Context, source string, payroll PayrollSource, schema SchemaSource, sink ResultSink) Result {
	startTime := time.Now()
	result := Result{
		RunID:  uuid.New().String(),
		Source: source,
	}
	logger := c.logger.With("run", result.RunID[:8], "source", source)

	// =========================================================================
	// STEP 1-2: READ INPUTS
	// =========================================================================

	columns, err := schema.ReadSchema(ctx)
	if err != nil {
		result.Error = fmt.Errorf("%w: template: %w", ErrReadInput, err)
		return finish(logger, result, startTime)
	}
	logger.Debug("Read output schema", "columns", len(columns))

	table, err := payroll.ReadPayroll(ctx)
	if err != nil {
		result.Error = fmt.Errorf("%w: payroll: %w", ErrReadInput, err)
		return finish(logger, result, startTime)
	}
	result.Stats.RowsRead = len(table.Rows)
	logger.Debug("Read payroll table", "rows", len(table.Rows), "columns", len(table.Headers))

	// =========================================================================
	// STEP 3-6: CONVERT
	// =========================================================================

	rows, report, err := c.Convert(table, columns)
	if err != nil {
		result.Error = err
		return finish(logger, result, startTime)
	}

	result.Stats.Records = report.Records
	result.Stats.Groups = report.Groups
	result.Stats.RowsWritten = report.RowsEmitted
	result.Stats.DroppedGroups = report.DroppedGroups
	result.Stats.UnparsedAmounts = report.UnparsedAmounts

	logReport(logger, report)

	// =========================================================================
	// STEP 7: WRITE OUTPUT
	// =========================================================================

	if err := ctx.Err(); err != nil {
		result.Error = err
		return finish(logger, result, startTime)
	}

	if err := sink.WriteResult(ctx, columns, rows); err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return finish(logger, result, startTime)
	}

	result.Success = true
	return finish(logger, result, startTime)
}

// Convert validates, transforms and maps an already-read payroll table
// against columns. table is modified in place by the transformation rules.
func (c *Converter) Convert(table *types.Table, columns []string) ([]types.Row, mapper.Report, error) {
	check := validation.ValidatePayroll(table)
	check.Merge(validation.ValidateSchema(columns))

	for _, problem := range check.Errors {
		switch problem.Severity {
		case validation.SeverityWarning:
			c.logger.Warn(problem.Message, "input", problem.Input, "column", problem.Column)
		case validation.SeverityInfo:
			c.logger.Debug(problem.Message, "input", problem.Input, "column", problem.Column)
		}
	}
	if !check.IsValid {
		return nil, mapper.Report{}, fmt.Errorf("%w:\n%s", mapper.ErrMalformedInput, validation.FormatErrors(check.Fatal()))
	}

	if err := c.transformer.TransformTable(table); err != nil {
		return nil, mapper.Report{}, fmt.Errorf("failed to apply transformations: %w", err)
	}

	records, err := mapper.RecordsFromTable(table)
	if err != nil {
		return nil, mapper.Report{}, err
	}

	rows, report := mapper.MapWithReport(records, columns)
	return rows, report, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// finish records the processing time and logs the outcome of a run.
func finish(logger *log.Logger, result Result, startTime time.Time) Result {
	result.Stats.ProcessingTime = time.Since(startTime)
	elapsed := result.Stats.ProcessingTime.Round(time.Millisecond)
	if result.Error != nil {
		logger.Error("Conversion failed", "err", result.Error, "elapsed", elapsed)
		return result
	}
	logger.Info("Conversion complete",
		"rows_read", result.Stats.RowsRead,
		"groups", result.Stats.Groups,
		"rows_written", result.Stats.RowsWritten,
		"elapsed", elapsed,
	)
	return result
}

// logReport warns about the lenient cases the mapper absorbed.
func logReport(logger *log.Logger, report mapper.Report) {
	if report.UnparsedAmounts > 0 {
		logger.Warn("Amounts that could not be parsed were counted as zero", "count", report.UnparsedAmounts)
	}

	currencies := make([]string, 0, len(report.DroppedGroups))
	for ccy := range report.DroppedGroups {
		currencies = append(currencies, ccy)
	}
	sort.Strings(currencies)

	for _, ccy := range currencies {
		logger.Warn("Dropped groups with unsupported currency",
			"currency", ccy,
			"groups", report.DroppedGroups[ccy],
			"supported", mapper.SupportedCurrencies(),
		)
	}
}
