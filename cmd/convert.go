// =============================================================================
// Payroll to Batch Transfer Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which converts one payroll export
// into one batch transfer workbook.
//
// COMMAND USAGE:
//   converter convert --payroll <file> --template <file> [flags]
//
// FLAGS:
//   --payroll        : Payroll export (.xlsx or .csv)               (required)
//   --template       : Airwallex batch transfer template (.xlsx)     (required)
//   --out            : Output workbook (default: output_file_format in the
//                      current directory)
//   --payroll-sheet  : Payroll sheet name  (default: payroll_sheet)
//   --template-sheet : Template sheet name (default: template_sheet)
//   --output-sheet   : Output sheet name   (default: output_sheet)
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/payroll-batch-converter/internal/converter"
	"github.com/ginjaninja78/payroll-batch-converter/internal/xlsxwriter"
	"github.com/ginjaninja78/payroll-batch-converter/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	convertPayroll       string
	convertTemplate      string
	convertOut           string
	convertPayrollSheet  string
	convertTemplateSheet string
	convertOutputSheet   string
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one payroll export into a batch transfer workbook",
	Long: `The convert command reads the payroll sheet and the template header row,
groups payroll lines by recipient and currency, and writes one transfer per
group in the template's column order.

Amounts that cannot be parsed count as zero. Recipients paid in a currency
without a transfer route are skipped. Both are reported as warnings.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&convertPayroll, "payroll", "", "Payroll export (.xlsx or .csv)")
	convertCmd.Flags().StringVar(&convertTemplate, "template", "", "Airwallex batch transfer template (.xlsx)")
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "Output workbook path")
	convertCmd.Flags().StringVar(&convertPayrollSheet, "payroll-sheet", "", "Payroll sheet name")
	convertCmd.Flags().StringVar(&convertTemplateSheet, "template-sheet", "", "Template sheet name")
	convertCmd.Flags().StringVar(&convertOutputSheet, "output-sheet", "", "Output sheet name")

	convertCmd.MarkFlagRequired("payroll")
	convertCmd.MarkFlagRequired("template")
}

// =============================================================================
// MAIN FUNCTION
// =============================================================================

func runConvert(cmd *cobra.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	payrollSheet := firstNonEmpty(convertPayrollSheet, cfg.PayrollSheet)
	templateSheet := firstNonEmpty(convertTemplateSheet, cfg.TemplateSheet)
	outputSheet := firstNonEmpty(convertOutputSheet, cfg.OutputSheet)

	out := convertOut
	if out == "" {
		out = utils.GenerateOutputFileName(cfg.OutputFileFormat, map[string]string{
			"original": utils.BaseName(convertPayroll),
		})
	}

	conv, err := converter.New(cfg.TransformationRules, logger)
	if err != nil {
		return err
	}

	columns, err := readTemplate(convertTemplate, templateSheet)
	if err != nil {
		return err
	}

	payroll, release, err := openPayroll(convertPayroll, payrollSheet, cfg.CSVSettings)
	if err != nil {
		return err
	}
	defer release()

	result := conv.Run(cmd.Context(), convertPayroll, payroll, columns, xlsxwriter.FileSink{Path: out, Sheet: outputSheet})
	if result.Error != nil {
		return result.Error
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transfer(s) to %s\n", result.Stats.RowsWritten, out)
	if n := result.Stats.Dropped(); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d recipient group(s) with unsupported currency\n", n)
	}
	return nil
}

// firstNonEmpty returns the first argument that is not "".
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
