package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ginjaninja78/payroll-batch-converter/internal/converter"
	"github.com/ginjaninja78/payroll-batch-converter/internal/mapper"
)

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: payroll: boom", converter.ErrReadInput), "read error"},
		{fmt.Errorf("%w: missing column", mapper.ErrMalformedInput), "malformed input"},
		{context.Canceled, "cancelled"},
		{errors.New("disk full"), "error"},
	}

	for _, tt := range tests {
		if got := errorType(tt.err); got != tt.want {
			t.Errorf("errorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	start := time.Now()
	outcomes := []fileOutcome{
		{
			result: converter.Result{
				Source:  "in/july.xlsx",
				Success: true,
				Stats: converter.ProcessingStats{
					RowsRead:        5,
					Groups:          3,
					RowsWritten:     2,
					DroppedGroups:   map[string]int{"EUR": 1},
					UnparsedAmounts: 1,
				},
			},
			outputFile: "out/batch_july.xlsx",
			archived:   "archive/july.xlsx",
		},
		{
			result: converter.Result{
				Source: "in/august.csv",
				Error:  fmt.Errorf("%w: missing column", mapper.ErrMalformedInput),
			},
		},
		{}, // never started
	}

	summary, entries := summarize(outcomes, start)

	if summary.TotalFiles != 3 || summary.SuccessfulFiles != 1 || summary.FailedFiles != 1 {
		t.Errorf("files: total %d, ok %d, failed %d", summary.TotalFiles, summary.SuccessfulFiles, summary.FailedFiles)
	}
	if summary.TotalRows != 5 || summary.TotalGroups != 3 || summary.RowsWritten != 2 {
		t.Errorf("counts: rows %d, groups %d, written %d", summary.TotalRows, summary.TotalGroups, summary.RowsWritten)
	}
	if summary.DroppedGroups != 1 || summary.UnparsedAmounts != 1 {
		t.Errorf("dropped %d, unparsed %d", summary.DroppedGroups, summary.UnparsedAmounts)
	}
	if len(summary.ProcessedFiles) != 1 || summary.ProcessedFiles[0].ArchivePath != "archive/july.xlsx" {
		t.Errorf("processed files = %+v", summary.ProcessedFiles)
	}
	if len(entries) != 1 || entries[0].FileName != "in/august.csv" || entries[0].ErrorType != "malformed input" {
		t.Errorf("error entries = %+v", entries)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "Sheet1", "Sheet2"); got != "Sheet1" {
		t.Errorf("got %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("got %q", got)
	}
}
