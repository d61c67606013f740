// =============================================================================
// Payroll to Batch Transfer Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (produce Tables)
//   - mapper (consumes PayrollRecords, produces Rows)
//   - xlsxwriter (consumes Rows)
//   - converter (orchestrates all of the above)
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// PAYROLL INPUT COLUMNS
// =============================================================================

// Column headers the payroll export must provide.
const (
	ColumnEmail     = "Email"
	ColumnLastName  = "Last name (legal)"
	ColumnFirstName = "First name (legal)"
	ColumnCurrency  = "Currency"
	ColumnAmount    = "Amount"
)

// RequiredPayrollColumns lists the payroll columns in the order they are
// checked and reported.
var RequiredPayrollColumns = []string{
	ColumnEmail,
	ColumnLastName,
	ColumnFirstName,
	ColumnCurrency,
	ColumnAmount,
}

// =============================================================================
// TABLE
// =============================================================================

// Table is a tabular dataset read from a spreadsheet sheet or a CSV file.
// The first source row is the header; every data row is keyed by header name.
type Table struct {
	// Source identifies where the table came from (file name, sheet name).
	// Used for error messages only.
	Source string

	// Headers contains the cleaned column headers in source order.
	Headers []string

	// Rows contains the data rows as maps of header -> cell text.
	Rows []map[string]string

	// RowNumbers holds the 1-based source row number of each entry in Rows.
	RowNumbers []int
}

// NewTable builds a Table from raw rows where raw[0] is the header row.
// Headers are cleaned with CleanHeaders; rows with no non-blank cell are
// skipped. Cell values are kept verbatim.
func NewTable(source string, raw [][]string) *Table {
	t := &Table{Source: source}
	if len(raw) == 0 {
		return t
	}

	t.Headers = CleanHeaders(raw[0])

	for i, row := range raw[1:] {
		if isRowEmpty(row) {
			continue
		}

		rowMap := make(map[string]string, len(t.Headers))
		for col, header := range t.Headers {
			if col < len(row) {
				rowMap[header] = row[col]
			} else {
				rowMap[header] = ""
			}
		}

		t.Rows = append(t.Rows, rowMap)
		t.RowNumbers = append(t.RowNumbers, i+2)
	}

	return t
}

// HasColumn reports whether the table has a header named column.
func (t *Table) HasColumn(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// RowNumber returns the source row number of Rows[i], or i+2 when the
// table was assembled by hand without row numbers.
func (t *Table) RowNumber(i int) int {
	if i < len(t.RowNumbers) {
		return t.RowNumbers[i]
	}
	return i + 2
}

// CleanHeaders trims header cells and makes them unique.
//
// NAMING RULES:
//   - Blank headers are named "Unnamed: N" where N is the 0-based column index.
//   - Repeated headers get a ".1", ".2", ... suffix on each later occurrence.
//     A suffix already taken by another header is skipped, so
//     ["a", "a", "a.1"] becomes ["a", "a.2", "a.1"].
func CleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Unnamed: %d", i)
		}
		cleaned[i] = header
	}

	reserved := make(map[string]bool, len(cleaned))
	for _, header := range cleaned {
		reserved[header] = true
	}

	used := make(map[string]bool, len(cleaned))
	next := make(map[string]int, len(cleaned))
	for i, header := range cleaned {
		if !used[header] {
			used[header] = true
			continue
		}

		n := next[header]
		candidate := header
		for {
			n++
			candidate = fmt.Sprintf("%s.%d", header, n)
			if !used[candidate] && !reserved[candidate] {
				break
			}
		}
		next[header] = n
		used[candidate] = true
		cleaned[i] = candidate
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// PAYROLL RECORD
// =============================================================================

// PayrollRecord is one payroll line item. Amount is kept as the raw,
// locale-formatted text from the export.
type PayrollRecord struct {
	Email     string
	LastName  string
	FirstName string
	Currency  string
	Amount    string

	// RowNumber is the source row number (for logging).
	RowNumber int
}

// =============================================================================
// OUTPUT ROWS
// =============================================================================

// Fields is an unordered batch transfer record keyed by column name.
// Values are strings, or decimal amounts for numeric columns.
type Fields map[string]any

// Row is a record materialized against an ordered column list.
// Values[i] belongs to Columns[i].
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the value of column and whether the row has that column.
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}
