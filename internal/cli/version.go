// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/rsys"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rsys version %s\n", rsys.Version)
		fmt.Fprintln(out, "Go bindings for native runtimes")
		fmt.Fprintln(out, "https://github.com/arc-language/rsys")
	},
}
