// internal/cli/info.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arc-language/rsys"
)

var infoCmd = &cobra.Command{
	Use:   "info [runtime]",
	Short: "Show information about a runtime",
	Long:  `Display the descriptor rsys uses for a runtime (the configured one by default).`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg := *config
	if len(args) == 1 {
		cfg.Runtime = args[0]
	}

	desc, err := rsys.LoadRuntime(&cfg)
	if err != nil {
		return err
	}

	// Display info
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Runtime: %s (%s)\n", desc.Label(), desc.Name)
	fmt.Fprintf(out, "Source: %s\n", desc.Source)
	fmt.Fprintf(out, "Home variable: %s\n", desc.HomeEnv)
	fmt.Fprintf(out, "Executable: %s\n", desc.Executable)
	fmt.Fprintf(out, "Link library: %s\n", desc.LinkLib)
	fmt.Fprintf(out, "Version constant: %s\n", desc.VersionConst)
	fmt.Fprintf(out, "Package: %s\n", desc.Package)
	if len(desc.Blocklist) > 0 {
		fmt.Fprintf(out, "Blocklist: %s\n", strings.Join(desc.Blocklist, ", "))
	}
	if len(desc.Accept) > 0 {
		fmt.Fprintf(out, "Accept: %s\n", strings.Join(desc.Accept, ", "))
	}

	return nil
}
