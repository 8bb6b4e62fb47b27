// internal/cli/locate.go
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/arc-language/rsys"
	"github.com/arc-language/rsys/pkg/env"
)

var locateCheck bool

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show where the runtime is installed",
	Long: `Print the home, include and library directories of the runtime
installation, found the same way generate finds them.

With --check the directories must exist and the library directory must
hold the runtime's shared library.`,
	Args: cobra.NoArgs,
	RunE: runLocate,
}

func init() {
	locateCmd.Flags().BoolVar(&locateCheck, "check", false, "verify the directories and the shared library exist")
}

func runLocate(cmd *cobra.Command, args []string) error {
	paths, desc, err := rsys.Locate(cmd.Context(), config, options(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Runtime: %s\n", desc.Label())
	fmt.Fprintf(out, "Found via: %s\n", paths.Strategy)
	fmt.Fprintf(out, "Home: %s\n", paths.Home)
	fmt.Fprintf(out, "Include: %s\n", paths.Include)
	fmt.Fprintf(out, "Library: %s\n", paths.Library)

	if !locateCheck {
		return nil
	}

	fail := func(err error) error {
		return &env.DiscoveryError{Runtime: desc.Label(), Strategy: paths.Strategy, Err: err}
	}
	if !isDir(paths.Home) {
		return fail(fmt.Errorf("%w: %s is not a directory", env.ErrHomeNotFound, paths.Home))
	}
	if !isDir(paths.Include) {
		return fail(fmt.Errorf("%w: %s is not a directory", env.ErrIncludeNotFound, paths.Include))
	}
	lib := env.FindSharedLibrary(paths.Library, desc.LinkLib, runtime.GOOS)
	if lib == nil {
		return fail(fmt.Errorf("%w: no %s shared library in %s", env.ErrLibraryNotFound, desc.LinkLib, paths.Library))
	}

	fmt.Fprintf(out, "Shared library: %s\n", lib.Path)
	return nil
}
