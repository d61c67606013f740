// =============================================================================
// Payroll to Batch Transfer Converter - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   converter version [--short]
//
// Release builds stamp the build variables below, e.g.:
//   go build -ldflags "-X $PKG.Version=0.3.0 -X $PKG.Commit=$(git rev-parse --short HEAD)"
// with PKG=github.com/ginjaninja78/payroll-batch-converter/cmd
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ginjaninja78/payroll-batch-converter/internal/mapper"
	"github.com/spf13/cobra"
)

// Build variables, stamped with -ldflags.
var (
	Version   = "0.3.0"
	Commit    = ""
	BuildDate = ""
)

// versionShort prints only the version number.
var versionShort bool

// buildVersion is the version reported by the CLI and by the server's
// /api/info endpoint: the release number plus the commit when stamped.
func buildVersion() string {
	if Commit == "" {
		return Version
	}
	return Version + "+" + Commit
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long: `Display the application version, the build it came from and the
currencies this build can route.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, buildVersion())
			return nil
		}

		fmt.Fprintf(out, "converter %s (%s, %s/%s)\n", buildVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		if BuildDate != "" {
			fmt.Fprintf(out, "built %s\n", BuildDate)
		}
		fmt.Fprintf(out, "routes: %s\n", strings.Join(mapper.SupportedCurrencies(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}
