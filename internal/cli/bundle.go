// internal/cli/bundle.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arc-language/rsys"
	"github.com/arc-language/rsys/pkg/metadata"
)

var bundleOutput string

var bundleCmd = &cobra.Command{
	Use:   "bundle [dir]",
	Short: "Pack generated bindings into a tar.xz",
	Long: `Pack a bindings directory (the output directory by default) and its
manifest into a tar.xz that unbundle can restore elsewhere. The files must
still match the hash recorded when they were generated.

Examples:
  rsys bundle ./rsys
  rsys bundle ./rsys -o rsys-bindings.tar.xz`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBundle,
}

var unbundleCmd = &cobra.Command{
	Use:   "unbundle <archive> <dir>",
	Short: "Restore bindings packed by bundle",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnbundle,
}

func init() {
	bundleCmd.Flags().StringVarP(&bundleOutput, "output", "o", "", "archive path (default <package>-<version>-<target>.tar.xz)")
}

func runBundle(cmd *cobra.Command, args []string) error {
	dir := config.OutDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("%w: pass a directory or set --out-dir", rsys.ErrOutDirNotSet)
	}

	path := bundleOutput
	if path == "" {
		m, err := metadata.ReadManifest(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w in %s", rsys.ErrNoManifest, dir)
			}
			return err
		}
		path = rsys.BundleName(m)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}

	m, err := rsys.Bundle(dir, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s version %d, %s)\n", path, m.Package, m.Version, m.BindingsHash)
	return nil
}

func runUnbundle(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer f.Close()

	m, err := rsys.Unbundle(f, args[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d files to %s (%s version %d)\n", len(m.Files), args[1], m.Package, m.Version)
	return nil
}
