// =============================================================================
// Payroll to Batch Transfer Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the converter CLI. It delegates command
// execution to the cmd package.
//
// USAGE:
//   converter convert   - Convert one payroll export
//   converter process   - Convert every payroll export in the input directory
//   converter validate  - Check a template (and optionally a payroll export)
//   converter serve     - Serve the upload page and conversion API
//   converter version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, grouping, routing and output writing
//   - pkg/       : File discovery, archiving and run logs
//   - web/       : Embedded upload page
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/payroll-batch-converter/cmd"
)

func main() {
	cmd.Execute()
}
