// =============================================================================
// Payroll to Batch Transfer Converter - XLSX Workbook Writer
// =============================================================================
//
// This module serializes batch transfer rows into a new workbook with a
// single sheet, ready for the payment provider's bulk-transfer import.
//
// OUTPUT STRUCTURE:
//   Row 1   : the output columns, in schema order (bold)
//   Row 2.. : one row per recipient-currency group
//
// CELL TYPES:
//   - decimal amounts are written as numbers
//   - empty strings are written as empty cells
//   - everything else is written as text
//
// =============================================================================

package xlsxwriter

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ginjaninja78/payroll-batch-converter/internal/types"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// defaultSheet is the sheet every new excelize workbook starts with.
const defaultSheet = "Sheet1"

// Write serializes columns and rows into a workbook with one sheet named
// sheet and writes it to w.
func Write(w io.Writer, sheet string, columns []string, rows []types.Row) error {
	f, err := Build(sheet, columns, rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Bytes is Write into memory.
func Bytes(sheet string, columns []string, rows []types.Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, sheet, columns, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build creates the workbook without writing it. The caller must Close it.
func Build(sheet string, columns []string, rows []types.Row) (*excelize.File, error) {
	f := excelize.NewFile()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("invalid sheet name %q: %w", sheet, err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := sw.SetRow(cell, cellValues(columns, row)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	return f, nil
}

// cellValues lays out row in columns order. Columns the row does not have
// are left empty.
func cellValues(columns []string, row types.Row) []interface{} {
	values := make([]interface{}, len(columns))
	for i, col := range columns {
		v, ok := row.Get(col)
		if !ok {
			continue
		}
		values[i] = cellValue(v)
	}
	return values
}

// cellValue converts a row value into something excelize writes natively.
func cellValue(v any) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return val
	case decimal.Decimal:
		return val.InexactFloat64()
	default:
		return val
	}
}

// =============================================================================
// CONVERTER SINK
// =============================================================================

// Sink writes a conversion result to W as a one-sheet workbook.
type Sink struct {
	W     io.Writer
	Sheet string
}

// WriteResult implements the converter's result sink.
func (s Sink) WriteResult(ctx context.Context, columns []string, rows []types.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Write(s.W, s.Sheet, columns, rows)
}

// FileSink writes a conversion result to a workbook file at Path. Nothing is
// created when the conversion fails before writing.
type FileSink struct {
	Path  string
	Sheet string
}

// WriteResult implements the converter's result sink.
func (s FileSink) WriteResult(ctx context.Context, columns []string, rows []types.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := Build(s.Sheet, columns, rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(s.Path); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.Path, err)
	}
	return nil
}
