// =============================================================================
// Payroll to Batch Transfer Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (converter)
//   ├── convertCmd  (converter convert)
//   ├── processCmd  (converter process)
//   ├── validateCmd (converter validate)
//   ├── serveCmd    (converter serve)
//   └── versionCmd  (converter version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading a .env file into the environment, if present
//   3. Loading config.yaml and building the logger for subcommands
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "Payroll to Airwallex batch transfer converter",
	Long: `Converts a payroll spreadsheet export into an Airwallex batch transfer
workbook: one transfer per recipient and currency, with the amounts summed and
the transfer route picked from the currency.

Supported currencies: BRL, PKR, THB (SWIFT) and USD (ACH). Recipients paid in
any other currency are skipped and reported.

Example Usage:
  converter convert --payroll payroll.xlsx --template airwallex.xlsx
  converter process                    # Convert every export in input_dir
  converter validate --template airwallex.xlsx --payroll payroll.xlsx
  converter serve --port 9090          # Upload page at http://localhost:9090/`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). Commands see a context that is cancelled
// on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	cobra.OnInitialize(loadDotEnv)
}

// loadDotEnv loads .env into the process environment. Variables that are
// already set win over the file.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}
}

// loadConfig loads the main configuration and builds the logger. A missing
// config file is only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, *log.Logger, error) {
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.LoadMainConfig(cfgFile, allowMissing)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load main config: %w", err)
	}

	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: verbose,
		Prefix:  "converter",
	})
	return cfg, logger, nil
}
