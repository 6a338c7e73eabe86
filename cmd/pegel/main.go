// Command pegel serves the gauge station tables.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pegelboard/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var noColor, jsonErrors bool

	rootCmd := &cobra.Command{
		Use:   "pegel",
		Short: "Live gauge station tables driven by the URL hash",
		Long: `pegel serves sortable, filterable and paginated tables of gauge
stations. The browser runs a thin client; every piece of view state
lives in the URL hash and is owned by a router on the server.

Examples:
  pegel serve
  pegel serve --config ./pegel.yaml --port 9090
  pegel hash parse '#RHEIN?sort=name&dir=desc'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				errors.DisableColors()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored error output")
	rootCmd.PersistentFlags().BoolVar(&jsonErrors, "json-errors", false, "Print errors as JSON on stderr")

	rootCmd.AddCommand(
		serveCmd(),
		hashCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err, jsonErrors)
		os.Exit(1)
	}
}

// printError writes err for a terminal, or as one JSON line. In JSON mode
// errors without a code, such as cobra's flag errors, are reported as P180.
func printError(w io.Writer, err error, asJSON bool) {
	switch {
	case asJSON:
		fmt.Fprintln(w, errors.FromError(err, "P180").FormatJSON())
	case errors.CodeOf(err) != "":
		fmt.Fprint(w, errors.FromError(err, "").Format())
	default:
		fmt.Fprintf(w, "\033[31mError:\033[0m %s\n", err)
	}
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
