// =============================================================================
// Payroll to Batch Transfer Converter - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which starts the HTTP upload page
// and conversion API.
//
// COMMAND USAGE:
//   converter serve [--port 8080] [--base-path /payroll]
//
// ENDPOINTS:
//   GET  /              upload page
//   GET  /api/info      name, version and supported currencies
//   POST /api/convert   multipart payroll + template, returns the workbook
//
// =============================================================================

package cmd

import (
	"github.com/ginjaninja78/payroll-batch-converter/internal/converter"
	"github.com/ginjaninja78/payroll-batch-converter/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort     string
	serveBasePath string
)

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload page and conversion API",
	Long: `The serve command starts an HTTP server with a page for uploading a
payroll export and a batch transfer template. The converted workbook is
returned as a download. Nothing is stored on the server.

Stop the server with Ctrl+C; in-flight conversions are allowed to finish.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if cmd.Flags().Changed("base-path") {
			cfg.Server.BasePath = serveBasePath
		}

		conv, err := converter.New(cfg.TransformationRules, logger)
		if err != nil {
			return err
		}

		srv, err := server.New(cfg, conv, logger, buildVersion())
		if err != nil {
			return err
		}
		return srv.ListenAndServe(cmd.Context(), ":"+cfg.Server.Port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8080", "Port to listen on (overrides server.port)")
	serveCmd.Flags().StringVar(&serveBasePath, "base-path", "", "URL prefix to serve under, e.g. /payroll")
}
