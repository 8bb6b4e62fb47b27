// internal/cli/list.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/rsys/pkg/backend"
	"github.com/arc-language/rsys/pkg/platform"
	"github.com/arc-language/rsys/pkg/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List binding generators and runtimes",
	Long:  `List the binding generators available on this system and the runtimes rsys knows about.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	// Detect platform
	plat, err := platform.Detect()
	if err != nil {
		return fmt.Errorf("detecting platform: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Platform: %s/%s (%s)\n\n", plat.OS, plat.Arch, platform.HostTriple())
	fmt.Fprintf(out, "Available generators:\n")
	for _, gen := range plat.Available {
		marker := " "
		if gen == plat.Preferred {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, gen)
	}

	if plat.Preferred != "" {
		fmt.Fprintf(out, "\n* = preferred generator\n")
	}

	fmt.Fprintf(out, "\nSupported generators: %v\n", backend.Available())
	fmt.Fprintf(out, "Runtimes: %v\n", registry.New(config.CachePath).Available())

	return nil
}
