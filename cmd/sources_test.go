package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/converter"
)

func TestOpenPayrollCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "July.CSV")
	content := "Email,Last name (legal),First name (legal),Currency,Amount\na@x.com,Doe,Jane,USD,100\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	src, release, err := openPayroll(path, "ignored", config.CSVSettings{Delimiter: ","})
	if err != nil {
		t.Fatalf("openPayroll: %v", err)
	}
	defer release()

	table, err := src.ReadPayroll(context.Background())
	if err != nil {
		t.Fatalf("ReadPayroll: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0]["Amount"] != "100" {
		t.Errorf("rows = %v", table.Rows)
	}
}

func TestOpenPayrollMissing(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"missing.csv", "missing.xlsx"} {
		_, _, err := openPayroll(filepath.Join(dir, name), "Sheet1", config.CSVSettings{})
		if !errors.Is(err, converter.ErrReadInput) {
			t.Errorf("%s: err = %v, want ErrReadInput", name, err)
		}
	}
}
