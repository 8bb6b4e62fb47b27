// internal/cli/exit.go
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arc-language/rsys"
)

// Exit codes
const (
	ExitOK        = 0
	ExitDiscovery = 1 // the runtime installation could not be located
	ExitFatal     = 2 // any other failure
)

// Report prints err where its kind belongs and returns the exit code for it.
// Discovery problems go to stdout, where the build driver reads signals;
// everything else goes to stderr.
func Report(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}

	var derr *rsys.DiscoveryError
	if errors.As(err, &derr) {
		fmt.Fprintf(stdout, "Problem locating local %s installation: %v\n", derr.Runtime, derr.Err)
		return ExitDiscovery
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitFatal
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
