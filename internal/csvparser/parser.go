// =============================================================================
// Payroll to Batch Transfer Converter - CSV Parser Module
// =============================================================================
//
// This module reads payroll exports saved as CSV instead of XLSX. It produces
// the same types.Table as the workbook reader, so the rest of the pipeline
// does not care which format the export came in.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, pipe, tab)
//   - Header row below leading metadata rows
//   - Comment lines
//   - UTF-8 byte order mark removal (common in spreadsheet "Save as CSV")
//
// Cell values are never trimmed: grouping compares names exactly as exported.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/types"
)

// utf8BOM is stripped from the start of the input.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// parse reads CSV data from r and returns it as a table.
//
// PARSING PROCESS:
//   1. Strip a leading UTF-8 byte order mark
//   2. Configure the CSV reader (delimiter, comments, ragged rows)
//   3. Skip rows above the configured header row
//   4. Build the table: header row, then data rows keyed by header
func parse(r io.Reader, name string, settings config.CSVSettings) (*types.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}

	reader := csv.NewReader(br)
	configureReader(reader, settings)

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", name, err)
	}

	headerRow := settings.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}
	if len(allRows) < headerRow {
		return nil, fmt.Errorf("CSV %s has no header row (expected on row %d)", name, headerRow)
	}

	table := types.NewTable(name, allRows[headerRow-1:])

	// NewTable numbers rows from the header; shift to file row numbers.
	for i := range table.RowNumbers {
		table.RowNumbers[i] += headerRow - 1
	}

	return table, nil
}

// ParseFile opens path and parses it.
func ParseFile(path string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return parse(file, path, settings)
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	if len(settings.Comment) > 0 {
		reader.Comment = rune(settings.Comment[0])
	}

	// Exports often have ragged trailing columns.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// =============================================================================
// CONVERTER SOURCE
// =============================================================================

// PayrollFile reads payroll data from a CSV stream.
type PayrollFile struct {
	Reader   io.Reader
	Name     string
	Settings config.CSVSettings
}

// ReadPayroll parses the stream as a table.
func (p PayrollFile) ReadPayroll(ctx context.Context) (*types.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parse(p.Reader, p.Name, p.Settings)
}

// PayrollPath reads payroll data from a CSV file on disk. The file is only
// open while ReadPayroll runs.
type PayrollPath struct {
	Path     string
	Settings config.CSVSettings
}

// ReadPayroll opens and parses the file.
func (p PayrollPath) ReadPayroll(ctx context.Context) (*types.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseFile(p.Path, p.Settings)
}
