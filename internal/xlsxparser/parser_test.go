package xlsxparser

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook returns an xlsx file with one sheet holding rows.
func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestPayrollSheetReadPayroll(t *testing.T) {
	data := buildWorkbook(t, "Salary data July", [][]interface{}{
		{"Email", "Last name (legal)", "First name (legal)", "Currency", "Amount"},
		{"a@x.com", "Doe", "Jane", "BRL", "1,234.56 BRL"},
		{"a@x.com", "Doe", "Jane", "BRL", 100.5},
		{nil, nil, nil, nil, nil},
		{"b@x.com", "Lee ", "Sam", "USD", 42},
	})

	wb, err := OpenReader(data, "payroll.xlsx")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer wb.Close()

	table, err := PayrollSheet{Workbook: wb, Sheet: "Salary data July"}.ReadPayroll(context.Background())
	if err != nil {
		t.Fatalf("ReadPayroll: %v", err)
	}

	if len(table.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(table.Rows))
	}
	if got := table.Rows[0]["Amount"]; got != "1,234.56 BRL" {
		t.Errorf("text amount = %q", got)
	}
	if got := table.Rows[1]["Amount"]; got != "100.5" {
		t.Errorf("numeric amount = %q, want raw value", got)
	}
	if got := table.Rows[2]["Last name (legal)"]; got != "Lee " {
		t.Errorf("last name = %q, values must not be trimmed", got)
	}
	if table.RowNumber(2) != 5 {
		t.Errorf("RowNumber(2) = %d, want 5", table.RowNumber(2))
	}
}

func TestTemplateSheetReadSchema(t *testing.T) {
	data := buildWorkbook(t, "Airwallex batch transfer", [][]interface{}{
		{"Transfer to", " Transfer method ", nil, "Notes", "Notes"},
		{"example", "row"},
	})

	wb, err := OpenReader(data, "template.xlsx")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer wb.Close()

	got, err := TemplateSheet{Workbook: wb, Sheet: "Airwallex batch transfer"}.ReadSchema(context.Background())
	if err != nil {
		t.Fatalf("ReadSchema: %v", err)
	}
	want := []string{"Transfer to", "Transfer method", "Unnamed: 2", "Notes", "Notes.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("schema = %q, want %q", got, want)
	}
}

func TestMissingSheet(t *testing.T) {
	data := buildWorkbook(t, "Other", [][]interface{}{{"a"}})

	wb, err := OpenReader(data, "payroll.xlsx")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer wb.Close()

	_, err = wb.Table("Salary data July")
	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("err = %v, want ErrSheetNotFound", err)
	}
	_, err = wb.Header("Salary data July")
	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("err = %v, want ErrSheetNotFound", err)
	}
}

func TestOpenReaderRejectsGarbage(t *testing.T) {
	if _, err := OpenReader(bytes.NewReader([]byte("not a workbook")), "junk.xlsx"); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadPayrollHonorsContext(t *testing.T) {
	data := buildWorkbook(t, "S", [][]interface{}{{"Email"}})
	wb, err := OpenReader(data, "p.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (PayrollSheet{Workbook: wb, Sheet: "S"}).ReadPayroll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
