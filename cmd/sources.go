package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/converter"
	"github.com/ginjaninja78/payroll-batch-converter/internal/csvparser"
	"github.com/ginjaninja78/payroll-batch-converter/internal/xlsxparser"
	"github.com/ginjaninja78/payroll-batch-converter/pkg/utils"
)

// openPayroll opens a payroll export as a converter source. CSV files are
// recognized by extension; everything else is read as a workbook. The
// returned func releases the file.
func openPayroll(path, sheet string, settings config.CSVSettings) (converter.PayrollSource, func(), error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		if !utils.FileExists(path) {
			return nil, nil, fmt.Errorf("%w: %s does not exist", converter.ErrReadInput, path)
		}
		return csvparser.PayrollPath{Path: path, Settings: settings}, func() {}, nil
	}

	wb, err := xlsxparser.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", converter.ErrReadInput, err)
	}
	return xlsxparser.PayrollSheet{Workbook: wb, Sheet: sheet}, func() { wb.Close() }, nil
}

// readTemplate reads the ordered output columns from the template workbook.
func readTemplate(path, sheet string) (converter.Columns, error) {
	wb, err := xlsxparser.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", converter.ErrReadInput, err)
	}
	defer wb.Close()

	columns, err := wb.Header(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", converter.ErrReadInput, err)
	}
	return converter.Columns(columns), nil
}
