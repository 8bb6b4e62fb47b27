// internal/cli/generate.go
package cli

import (
	"github.com/spf13/cobra"

	"github.com/arc-language/rsys"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate Go bindings for the runtime",
	Long: `Locate the runtime, generate Go bindings for the wrapper header and write
them to the output directory, and to the bindings directory when one is set.

Signals for the build driver are printed to stdout as rsys:key=value lines.
Output that is still up to date is reused unless --force is given.

Examples:
  R_HOME=/usr/lib/R TARGET=x86_64-unknown-linux-gnu OUT_DIR=./rsys rsys generate
  rsys generate --generator godefs --target aarch64-apple-darwin --out-dir ./rsys
  rsys generate --bindings-dir ./bindings --force`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("generator", "", "binding generator (cforgo, godefs); detected when empty")
	generateCmd.Flags().String("header", "", "wrapper header (default wrapper.h)")
	generateCmd.Flags().String("out-dir", "", "primary output directory ($OUT_DIR)")
	generateCmd.Flags().String("bindings-dir", "", "also write the bindings here ($RSYS_BINDINGS_DIR)")
	generateCmd.Flags().String("target", "", "target triple ($TARGET)")
	generateCmd.Flags().String("package", "", "Go package name of the bindings")
	generateCmd.Flags().String("godefs-input", "", "hand written cgo -godefs input file")
	generateCmd.Flags().String("tool", "", "path of the generator executable")
	generateCmd.Flags().Bool("force", false, "regenerate even when the output is up to date")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	res, err := rsys.Generate(cmd.Context(), config, options(cmd))
	if err != nil {
		return err
	}

	if res.Fresh {
		logger.Info("reused bindings", "dir", config.OutDir, "version", res.Version)
		return nil
	}
	logger.Debug("generated bindings", "files", len(res.Bindings.Files), "dirs", res.Written)
	return nil
}
