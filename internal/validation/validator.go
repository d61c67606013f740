// =============================================================================
// Payroll to Batch Transfer Converter - Validation Engine
// =============================================================================
//
// This module checks the STRUCTURE of the two inputs before any mapping runs.
// It does not judge payroll data (amounts, names): bad amount cells and
// unsupported currencies are handled leniently by the mapper.
//
// CHECKS:
//   Payroll table
//     - every required column is present                  (error)
//     - the table has at least one data row               (warning)
//   Output schema
//     - at least one column                                (error)
//     - duplicate column names                             (error)
//     - no column the mapper fills                         (warning)
//     - columns the mapper does not fill (left blank)      (info)
//
// ERROR HANDLING:
//   - Problems are collected, not returned one at a time
//   - Any "error" severity problem makes the result invalid; the converter
//     refuses to produce output for it
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/payroll-batch-converter/internal/mapper"
	"github.com/ginjaninja78/payroll-batch-converter/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single structural problem.
type ValidationError struct {
	// Severity is SeverityError, SeverityWarning or SeverityInfo.
	Severity string

	// Input is "payroll" or "template".
	Input string

	// Column is the column the problem is about, if any.
	Column string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.Input, e.Message)
	}
	return fmt.Sprintf("[%s] %s, column '%s': %s",
		strings.ToUpper(e.Severity),
		e.Input,
		e.Column,
		e.Message,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no error-severity problems.
	IsValid bool

	// Errors contains every problem found, in check order.
	Errors []*ValidationError

	// ErrorCount is the number of error-severity problems.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

// add records a problem and updates the counters.
func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	switch e.Severity {
	case SeverityError:
		r.ErrorCount++
		r.IsValid = false
	case SeverityWarning:
		r.WarningCount++
	}
}

// Merge appends other's problems to r.
func (r *ValidationResult) Merge(other *ValidationResult) {
	for _, e := range other.Errors {
		r.add(e)
	}
}

// Fatal returns only the error-severity problems.
func (r *ValidationResult) Fatal() []*ValidationError {
	var out []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// PAYROLL VALIDATION
// =============================================================================

// ValidatePayroll checks that a payroll table has the columns the mapper needs.
func ValidatePayroll(t *types.Table) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	for _, col := range types.RequiredPayrollColumns {
		if !t.HasColumn(col) {
			result.add(&ValidationError{
				Severity: SeverityError,
				Input:    "payroll",
				Column:   col,
				Message:  fmt.Sprintf("required column is missing from %s", t.Source),
			})
		}
	}

	if len(t.Rows) == 0 {
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Input:    "payroll",
			Message:  fmt.Sprintf("%s has no data rows; the output will only contain a header", t.Source),
		})
	}

	return result
}

// =============================================================================
// SCHEMA VALIDATION
// =============================================================================

// ValidateSchema checks the output column list read from the template.
func ValidateSchema(columns []string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if len(columns) == 0 {
		result.add(&ValidationError{
			Severity: SeverityError,
			Input:    "template",
			Message:  "template header row has no columns",
		})
		return result
	}

	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			result.add(&ValidationError{
				Severity: SeverityError,
				Input:    "template",
				Column:   c,
				Message:  "column appears more than once",
			})
		}
		seen[c] = true
	}

	produced := 0
	for _, c := range mapper.ProducedColumns {
		if seen[c] {
			produced++
		}
	}
	if produced == 0 {
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Input:    "template",
			Message:  "none of the template columns are filled by the converter; is this the batch transfer sheet?",
		})
	}

	producedSet := make(map[string]bool, len(mapper.ProducedColumns))
	for _, c := range mapper.ProducedColumns {
		producedSet[c] = true
	}
	for _, c := range columns {
		if !producedSet[c] {
			result.add(&ValidationError{
				Severity: SeverityInfo,
				Input:    "template",
				Column:   c,
				Message:  "not filled by the converter; cells will be blank",
			})
		}
	}

	return result
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation problems for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
