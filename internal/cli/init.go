// internal/cli/init.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arc-language/rsys"
	"github.com/arc-language/rsys/pkg/core"
)

var initOverwrite bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create rsys.yaml and a wrapper header",
	Long: `Write a default rsys.yaml and the runtime's wrapper header into dir
(the current directory by default). Existing files are kept unless
--overwrite is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initOverwrite, "overwrite", false, "replace existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	desc, err := rsys.LoadRuntime(config)
	if err != nil {
		return err
	}

	cfg := core.DefaultConfig()
	cfg.Runtime = desc.Name
	cfg.Package = desc.Package
	cfg.CachePath = ""

	out := cmd.OutOrStdout()

	cfgPath := filepath.Join(dir, core.DefaultConfigFile)
	if initOverwrite || !exists(cfgPath) {
		if err := core.SaveConfig(cfg, cfgPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", cfgPath)
	} else {
		fmt.Fprintf(out, "Kept %s\n", cfgPath)
	}

	if desc.WrapperHeader == "" {
		logger.Warn("runtime has no default wrapper header, write one yourself", "runtime", desc.Label(), "header", cfg.Header)
		return nil
	}

	headerPath := filepath.Join(dir, cfg.Header)
	if initOverwrite || !exists(headerPath) {
		if err := os.WriteFile(headerPath, []byte(desc.WrapperHeader), 0644); err != nil {
			return fmt.Errorf("writing wrapper header: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", headerPath)
	} else {
		fmt.Fprintf(out, "Kept %s\n", headerPath)
	}

	return nil
}
