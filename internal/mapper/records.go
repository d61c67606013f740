package mapper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/payroll-batch-converter/internal/types"
)

// ErrMalformedInput means the payroll dataset does not have the shape the
// mapper needs, usually because the wrong sheet or file was selected.
var ErrMalformedInput = errors.New("mapper: malformed payroll input")

// RecordsFromTable extracts payroll records from a table. Every required
// column must be present in the header and in every row; otherwise the
// returned error wraps ErrMalformedInput. Cell values are copied verbatim.
//
// Rows with an empty email, last name, first name or currency cell are
// skipped: they cannot form a recipient group. Spreadsheet exports carry such
// rows as totals, subtotals or trailing formatting.
func RecordsFromTable(t *types.Table) ([]types.PayrollRecord, error) {
	var missing []string
	for _, col := range types.RequiredPayrollColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s is missing column(s) %s",
			ErrMalformedInput, t.Source, quoteAll(missing))
	}

	records := make([]types.PayrollRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		rowNum := t.RowNumber(i)

		rec, err := recordFromRow(row, rowNum)
		if err != nil {
			return nil, err
		}
		if missingKey(rec) {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// recordFromRow reads the required fields of one row.
func recordFromRow(row map[string]string, rowNum int) (types.PayrollRecord, error) {
	values := make([]string, len(types.RequiredPayrollColumns))
	for i, col := range types.RequiredPayrollColumns {
		v, ok := row[col]
		if !ok {
			return types.PayrollRecord{}, fmt.Errorf("%w: row %d has no %q field",
				ErrMalformedInput, rowNum, col)
		}
		values[i] = v
	}

	return types.PayrollRecord{
		Email:     values[0],
		LastName:  values[1],
		FirstName: values[2],
		Currency:  values[3],
		Amount:    values[4],
		RowNumber: rowNum,
	}, nil
}

// missingKey reports whether any group key cell is empty. Whitespace-only
// cells are values and are kept.
func missingKey(r types.PayrollRecord) bool {
	return r.Email == "" || r.LastName == "" || r.FirstName == "" || r.Currency == ""
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
