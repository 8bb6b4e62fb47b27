// internal/cli/root.go
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/arc-language/rsys"
	"github.com/arc-language/rsys/pkg/core"
)

var (
	cfgFile     string
	runtimeName string
	debug       bool
	config      *core.Config
	logger      = log.NewWithOptions(os.Stderr, log.Options{Prefix: "rsys"})
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rsys",
	Short: "Go bindings for native runtimes",
	Long: `rsys - Go bindings for native runtimes

Locates an installed runtime (R by default), generates Go bindings for its
C API and publishes where it was found, which library to link and which
version the bindings were generated from.

Set R_HOME to point rsys at an installation. Without it rsys asks the R
executable on PATH, which is slower and discouraged.`,
	Version:           rsys.Version,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./rsys.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&runtimeName, "runtime", "", "runtime to bind (default r)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(bundleCmd)
	rootCmd.AddCommand(unbundleCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	config, err = core.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	if config.Debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	logger.Debug("loaded config", "file", config.File, "runtime", config.Runtime)
	return nil
}

func options(cmd *cobra.Command) *rsys.Options {
	return &rsys.Options{
		Signals: cmd.OutOrStdout(),
		Logger:  logger,
	}
}
