// =============================================================================
// Payroll to Batch Transfer Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a template and,
// optionally, a payroll export without writing anything.
//
// COMMAND USAGE:
//   converter validate --template <file> [--payroll <file>]
//
// VALIDATION CHECKS:
//   Template:
//   - The header row is present and has no duplicate column names
//   - The template names at least one column the converter fills
//   Payroll (when given):
//   - Every required column is present
//   - The rows group and route; unsupported currencies are reported
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/converter"
	"github.com/ginjaninja78/payroll-batch-converter/internal/validation"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	validateTemplate string
	validatePayroll  string
)

// =============================================================================
// VALIDATE COMMAND DEFINITION
// =============================================================================

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a template and payroll export without converting",
	Long: `The validate command reads the template header row and reports problems
that would stop or degrade a conversion. With --payroll it also checks the
payroll columns and previews the grouping: how many transfers would be
written and which currencies have no transfer route.

Use it to check a new template or export before running 'process'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateTemplate, "template", "", "Airwallex batch transfer template (.xlsx)")
	validateCmd.Flags().StringVar(&validatePayroll, "payroll", "", "Payroll export to check (.xlsx or .csv)")

	validateCmd.MarkFlagRequired("template")
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Validating template: %s\n", validateTemplate)
	columns, err := readTemplate(validateTemplate, cfg.TemplateSheet)
	if err != nil {
		return err
	}

	result := validation.ValidateSchema(columns)
	fmt.Fprintf(out, "  %d column(s)\n", len(columns))

	if validatePayroll != "" && result.IsValid {
		fmt.Fprintf(out, "Validating payroll: %s\n", validatePayroll)
		if err := previewPayroll(cmd, cfg, logger, columns, result); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, validation.FormatErrors(result.Errors))
	logger.Debug("Validation finished", "errors", result.ErrorCount, "warnings", result.WarningCount)

	if !result.IsValid {
		return errors.New("validation failed")
	}
	fmt.Fprintln(out, "✓ Ready to convert")
	return nil
}

// previewPayroll checks the payroll export and, when its columns are usable,
// prints what a conversion would produce.
func previewPayroll(cmd *cobra.Command, cfg *config.MainConfig, logger *log.Logger, columns []string, result *validation.ValidationResult) error {
	out := cmd.OutOrStdout()

	payroll, release, err := openPayroll(validatePayroll, cfg.PayrollSheet, cfg.CSVSettings)
	if err != nil {
		return err
	}
	defer release()

	table, err := payroll.ReadPayroll(cmd.Context())
	if err != nil {
		return fmt.Errorf("%w: payroll: %w", converter.ErrReadInput, err)
	}
	fmt.Fprintf(out, "  %d row(s)\n", len(table.Rows))

	check := validation.ValidatePayroll(table)
	result.Merge(check)
	if !check.IsValid {
		return nil
	}

	conv, err := converter.New(cfg.TransformationRules, logger)
	if err != nil {
		return err
	}
	_, report, err := conv.Convert(table, columns)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  %d recipient group(s), %d transfer(s)\n", report.Groups, report.RowsEmitted)
	if report.UnparsedAmounts > 0 {
		fmt.Fprintf(out, "  %d amount(s) could not be parsed and count as zero\n", report.UnparsedAmounts)
	}

	currencies := make([]string, 0, len(report.DroppedGroups))
	for currency := range report.DroppedGroups {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	for _, currency := range currencies {
		fmt.Fprintf(out, "  skipped: %d group(s) paid in %q (no transfer route)\n", report.DroppedGroups[currency], currency)
	}
	return nil
}
