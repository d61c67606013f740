// =============================================================================
// Payroll to Batch Transfer Converter - XLSX Workbook Parser
// =============================================================================
//
// This module reads the two workbooks a conversion needs:
//   - The payroll export: a named sheet whose first row is the header and
//     whose remaining rows are payroll line items.
//   - The batch transfer template: a named sheet whose header row is the
//     ordered list of output columns.
//
// SHEET STRUCTURE (payroll):
//
//   | Email   | Last name (legal) | First name (legal) | Currency | Amount       |
//   |---------|-------------------|--------------------|----------|--------------|
//   | a@x.com | Doe               | Jane               | BRL      | 1,234.56 BRL |
//
// Cells are read without number formatting, so numeric cells arrive as plain
// decimal text ("1234.56") and text cells arrive exactly as typed.
//
// =============================================================================

package xlsxparser

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ginjaninja78/payroll-batch-converter/internal/types"
	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when a workbook has no sheet with the
// requested name.
var ErrSheetNotFound = errors.New("xlsxparser: sheet not found")

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is an open spreadsheet file.
type Workbook struct {
	// Name identifies the workbook in error messages (usually the file name).
	Name string

	f *excelize.File
}

// OpenFile opens a workbook from disk.
func OpenFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{Name: path, f: f}, nil
}

// OpenReader opens a workbook from a stream, e.g. an uploaded file.
func OpenReader(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	return &Workbook{Name: name, f: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// rows returns the raw rows of sheet.
func (w *Workbook) rows(sheet string) ([][]string, error) {
	idx, err := w.f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q in %s (available: %v)", ErrSheetNotFound, sheet, w.Name, w.Sheets())
	}

	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %q in %s: %w", sheet, w.Name, err)
	}
	return rows, nil
}

// Table reads sheet as a table: the first row is the header, the rest are
// data rows keyed by header.
func (w *Workbook) Table(sheet string) (*types.Table, error) {
	rows, err := w.rows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q in %s is empty", sheet, w.Name)
	}
	return types.NewTable(fmt.Sprintf("%s [%s]", w.Name, sheet), rows), nil
}

// Header returns the cleaned header row of sheet.
func (w *Workbook) Header(sheet string) ([]string, error) {
	rows, err := w.rows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("sheet %q in %s has no header row", sheet, w.Name)
	}
	return types.CleanHeaders(rows[0]), nil
}

// =============================================================================
// CONVERTER SOURCES
// =============================================================================

// PayrollSheet reads payroll data from one sheet of a workbook.
type PayrollSheet struct {
	Workbook *Workbook
	Sheet    string
}

// ReadPayroll returns the sheet as a table.
func (p PayrollSheet) ReadPayroll(ctx context.Context) (*types.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Workbook.Table(p.Sheet)
}

// Name describes the source for logs.
func (p PayrollSheet) Name() string {
	return fmt.Sprintf("%s [%s]", p.Workbook.Name, p.Sheet)
}

// TemplateSheet reads the output schema from the header row of a sheet.
type TemplateSheet struct {
	Workbook *Workbook
	Sheet    string
}

// ReadSchema returns the ordered output columns.
func (t TemplateSheet) ReadSchema(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.Workbook.Header(t.Sheet)
}
