// internal/cli/sync.go
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arc-language/rsys/pkg/registry"
)

var syncCmd = &cobra.Command{
	Use:   "sync <repo-url>",
	Short: "Fetch runtime descriptors from a git repository",
	Long: `Clone a repository holding a runtimes/ directory and copy it into the
cache, where its descriptors take precedence over the built-in ones.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	logger.Info("syncing runtimes", "repo", args[0], "cache", config.CachePath)

	var progress io.Writer
	if config.Debug {
		progress = cmd.ErrOrStderr()
	}
	if err := registry.Sync(cmd.Context(), args[0], config.CachePath, progress); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Runtimes: %v\n", registry.New(config.CachePath).Available())
	return nil
}
