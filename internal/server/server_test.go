package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/converter"
	"github.com/ginjaninja78/payroll-batch-converter/internal/logging"
	"github.com/ginjaninja78/payroll-batch-converter/internal/mapper"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T, mutate func(*config.MainConfig)) http.Handler {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	conv, err := converter.New(cfg.TransformationRules, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	srv, err := New(cfg, conv, logging.Discard(), "test")
	if err != nil {
		t.Fatal(err)
	}
	return srv.Handler()
}

func workbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func payrollWorkbook(t *testing.T) []byte {
	return workbook(t, config.DefaultPayrollSheet, [][]interface{}{
		{"Email", "Last name (legal)", "First name (legal)", "Currency", "Amount"},
		{"a@x.com", "Doe", "Jane", "THB", "1,000"},
		{"a@x.com", "Doe", "Jane", "THB", 250},
		{"b@x.com", "Lee", "Sam", "EUR", "10"},
	})
}

func templateWorkbook(t *testing.T) []byte {
	row := make([]interface{}, len(mapper.ProducedColumns))
	for i, c := range mapper.ProducedColumns {
		row[i] = c
	}
	return workbook(t, config.DefaultTemplateSheet, [][]interface{}{row})
}

type upload struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, path string, files []upload, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(f.data)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestInfo(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var info Info
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Name != Name || info.Version != "test" {
		t.Errorf("info = %+v", info)
	}
	if strings.Join(info.Currencies, ",") != "BRL,PKR,THB,USD" {
		t.Errorf("currencies = %v", info.Currencies)
	}
}

func TestIndexWithBasePath(t *testing.T) {
	h := newTestServer(t, func(c *config.MainConfig) { c.Server.BasePath = "/payroll/" })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payroll/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `const base = "/payroll";`) {
		t.Error("base path not injected into page")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payroll/api/info", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("info under base path: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/info", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("info outside base path: status = %d, want 404", rec.Code)
	}
}

func TestConvert(t *testing.T) {
	h := newTestServer(t, nil)

	req := multipartRequest(t, "/api/convert", []upload{
		{"payroll", "payroll.xlsx", payrollWorkbook(t)},
		{"template", "template.xlsx", templateWorkbook(t)},
	}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, config.DefaultDownloadFileName) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if got := rec.Header().Get("X-Rows-Written"); got != "1" {
		t.Errorf("X-Rows-Written = %q", got)
	}
	if got := rec.Header().Get("X-Groups-Dropped"); got != "1" {
		t.Errorf("X-Groups-Dropped = %q", got)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.DefaultOutputSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	got := map[string]string{}
	for i, col := range rows[0] {
		if i < len(rows[1]) {
			got[col] = rows[1][i]
		}
	}
	if got[mapper.ColTransferTo] != "Thailand" || got[mapper.ColTransferMethod] != "SWIFT" {
		t.Errorf("route = %s/%s", got[mapper.ColTransferTo], got[mapper.ColTransferMethod])
	}
	if got[mapper.ColTransferAmount] != "1250" {
		t.Errorf("amount = %q, want 1250", got[mapper.ColTransferAmount])
	}
	if got[mapper.ColReference] != "Payroll - Jane Doe" {
		t.Errorf("reference = %q", got[mapper.ColReference])
	}
}

func TestConvertCSVPayroll(t *testing.T) {
	h := newTestServer(t, nil)

	csv := "Email,Last name (legal),First name (legal),Currency,Amount\n" +
		"a@x.com,Doe,Jane,USD,10\n"
	req := multipartRequest(t, "/api/convert", []upload{
		{"payroll", "payroll.CSV", []byte(csv)},
		{"template", "template.xlsx", templateWorkbook(t)},
	}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Rows-Written"); got != "1" {
		t.Errorf("X-Rows-Written = %q", got)
	}
}

func TestConvertErrors(t *testing.T) {
	wrongColumns := workbook(t, config.DefaultPayrollSheet, [][]interface{}{
		{"Email", "Name", "Amount"},
		{"a@x.com", "Jane", 10},
	})

	tests := []struct {
		name       string
		files      func(t *testing.T) []upload
		fields     map[string]string
		wantStatus int
		wantPrefix bool
	}{
		{
			name: "missing template",
			files: func(t *testing.T) []upload {
				return []upload{{"payroll", "payroll.xlsx", payrollWorkbook(t)}}
			},
			wantStatus: http.StatusBadRequest,
			wantPrefix: true,
		},
		{
			name: "payroll is not a workbook",
			files: func(t *testing.T) []upload {
				return []upload{
					{"payroll", "payroll.xlsx", []byte("not a zip")},
					{"template", "template.xlsx", templateWorkbook(t)},
				}
			},
			wantStatus: http.StatusBadRequest,
			wantPrefix: true,
		},
		{
			name: "unknown payroll sheet",
			files: func(t *testing.T) []upload {
				return []upload{
					{"payroll", "payroll.xlsx", payrollWorkbook(t)},
					{"template", "template.xlsx", templateWorkbook(t)},
				}
			},
			fields:     map[string]string{"payroll_sheet": "Salary data August"},
			wantStatus: http.StatusBadRequest,
			wantPrefix: true,
		},
		{
			name: "payroll missing columns",
			files: func(t *testing.T) []upload {
				return []upload{
					{"payroll", "payroll.xlsx", wrongColumns},
					{"template", "template.xlsx", templateWorkbook(t)},
				}
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, multipartRequest(t, "/api/convert", tt.files(t), tt.fields))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			msg := errorBody(t, rec)
			if msg == "" {
				t.Fatal("empty error message")
			}
			if tt.wantPrefix && !strings.HasPrefix(msg, readErrorPrefix) {
				t.Errorf("message %q does not start with %q", msg, readErrorPrefix)
			}
		})
	}
}

func TestConvertTooLarge(t *testing.T) {
	h := newTestServer(t, func(c *config.MainConfig) { c.Server.MaxUploadMB = 1 })

	req := multipartRequest(t, "/api/convert", []upload{
		{"payroll", "payroll.csv", bytes.Repeat([]byte("x"), 2<<20)},
	}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestConvertMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/convert", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
