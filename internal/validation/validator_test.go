package validation

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/payroll-batch-converter/internal/mapper"
	"github.com/ginjaninja78/payroll-batch-converter/internal/types"
)

func payrollTable(headers ...string) *types.Table {
	row := make([]string, len(headers))
	for i := range row {
		row[i] = "x"
	}
	return types.NewTable("payroll.xlsx", [][]string{headers, row})
}

func TestValidatePayroll(t *testing.T) {
	tests := []struct {
		name        string
		table       *types.Table
		wantValid   bool
		wantMissing []string
	}{
		{
			name:      "all required columns",
			table:     payrollTable(types.RequiredPayrollColumns...),
			wantValid: true,
		},
		{
			name:      "extra columns are fine",
			table:     payrollTable(append([]string{"Department"}, types.RequiredPayrollColumns...)...),
			wantValid: true,
		},
		{
			name:        "missing amount and currency",
			table:       payrollTable(types.ColumnEmail, types.ColumnLastName, types.ColumnFirstName),
			wantValid:   false,
			wantMissing: []string{types.ColumnCurrency, types.ColumnAmount},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidatePayroll(tt.table)
			if result.IsValid != tt.wantValid {
				t.Fatalf("IsValid = %v, want %v: %s", result.IsValid, tt.wantValid, FormatErrors(result.Errors))
			}
			if result.ErrorCount != len(tt.wantMissing) {
				t.Fatalf("ErrorCount = %d, want %d", result.ErrorCount, len(tt.wantMissing))
			}
			for i, col := range tt.wantMissing {
				if got := result.Fatal()[i].Column; got != col {
					t.Errorf("missing[%d] = %q, want %q", i, got, col)
				}
			}
		})
	}
}

func TestValidatePayrollNoRows(t *testing.T) {
	table := types.NewTable("payroll.xlsx", [][]string{types.RequiredPayrollColumns})
	result := ValidatePayroll(table)
	if !result.IsValid {
		t.Fatalf("header-only table should be valid: %s", FormatErrors(result.Errors))
	}
	if result.WarningCount != 1 {
		t.Errorf("WarningCount = %d, want 1", result.WarningCount)
	}
}

func TestValidateSchema(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		result := ValidateSchema(nil)
		if result.IsValid || result.ErrorCount != 1 {
			t.Fatalf("got %+v", result)
		}
	})

	t.Run("produced columns plus extra", func(t *testing.T) {
		columns := append([]string{}, mapper.ProducedColumns...)
		columns = append(columns, "Notes")

		result := ValidateSchema(columns)
		if !result.IsValid {
			t.Fatalf("unexpected errors: %s", FormatErrors(result.Errors))
		}
		if result.WarningCount != 0 {
			t.Errorf("WarningCount = %d, want 0", result.WarningCount)
		}
		if len(result.Errors) != 1 || result.Errors[0].Column != "Notes" || result.Errors[0].Severity != SeverityInfo {
			t.Errorf("expected one info about Notes, got %s", FormatErrors(result.Errors))
		}
	})

	t.Run("duplicate column", func(t *testing.T) {
		result := ValidateSchema([]string{mapper.ColTransferTo, mapper.ColTransferAmount, mapper.ColTransferTo})
		if result.IsValid {
			t.Fatal("duplicate column should be invalid")
		}
		if got := result.Fatal()[0].Column; got != mapper.ColTransferTo {
			t.Errorf("duplicate column = %q", got)
		}
	})

	t.Run("unrelated sheet", func(t *testing.T) {
		result := ValidateSchema([]string{"Name", "Department"})
		if !result.IsValid {
			t.Fatal("unrelated columns are a warning, not an error")
		}
		if result.WarningCount != 1 {
			t.Errorf("WarningCount = %d, want 1", result.WarningCount)
		}
	})

	t.Run("numbered notes columns", func(t *testing.T) {
		columns := types.CleanHeaders([]string{mapper.ColTransferTo, "Notes", "Notes", "Notes.1"})
		result := ValidateSchema(columns)
		if !result.IsValid {
			t.Fatalf("cleaned headers %q should be valid:\n%s", columns, FormatErrors(result.Errors))
		}
	})
}

func TestMerge(t *testing.T) {
	result := ValidatePayroll(payrollTable(types.ColumnEmail))
	result.Merge(ValidateSchema(nil))

	if result.IsValid {
		t.Fatal("merged result should be invalid")
	}
	if result.ErrorCount != len(types.RequiredPayrollColumns)-1+1 {
		t.Errorf("ErrorCount = %d", result.ErrorCount)
	}
}

func TestFormatErrors(t *testing.T) {
	if got := FormatErrors(nil); got != "No validation errors." {
		t.Errorf("FormatErrors(nil) = %q", got)
	}

	out := FormatErrors([]*ValidationError{
		{Severity: SeverityError, Input: "payroll", Column: "Amount", Message: "required column is missing"},
		{Severity: SeverityWarning, Input: "template", Message: "no known columns"},
	})
	for _, want := range []string{
		"2 problem(s)",
		"1. [ERROR] payroll, column 'Amount': required column is missing",
		"2. [WARNING] template: no known columns",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
