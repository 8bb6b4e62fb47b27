// pkg/env/locate.go
package env

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/arc-language/rsys/pkg/platform"
	"github.com/arc-language/rsys/pkg/registry"
)

// Runner runs a command and returns its standard output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Locator finds the installation of one runtime
type Locator struct {
	Runtime *registry.Descriptor

	// GOOS selects the library directory layout. Defaults to runtime.GOOS.
	GOOS string

	// LookupEnv reads the home variable. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	// Run executes the probe. Defaults to os/exec.
	Run Runner

	Logger *log.Logger
}

// NewLocator creates a Locator for the given runtime with host defaults
func NewLocator(desc *registry.Descriptor) *Locator {
	return &Locator{
		Runtime:   desc,
		GOOS:      runtime.GOOS,
		LookupEnv: os.LookupEnv,
		Run:       execRunner,
		Logger:    log.New(io.Discard),
	}
}

// Locate returns the installation paths, preferring the home variable over
// probing the runtime executable. Every error is a *DiscoveryError.
func (l *Locator) Locate(ctx context.Context) (*InstallationPaths, error) {
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if home, ok := lookup(l.Runtime.HomeEnv); ok && home != "" {
		l.logger().Debug("using home from environment", "var", l.Runtime.HomeEnv, "home", home)
		return FromHome(home, l.goos()), nil
	}

	l.logger().Warn("home variable not set, asking the runtime executable (discouraged)",
		"var", l.Runtime.HomeEnv, "executable", l.Runtime.Executable)

	paths, err := l.probe(ctx)
	if err != nil {
		return nil, &DiscoveryError{Runtime: l.Runtime.Label(), Strategy: StrategyProbe, Err: err}
	}
	return paths, nil
}

// FromHome derives the include and library directories from a runtime home.
// It does no I/O.
func FromHome(home, goos string) *InstallationPaths {
	return &InstallationPaths{
		Home:     home,
		Include:  filepath.Join(home, "include"),
		Library:  filepath.Join(home, platform.LibDir(goos)),
		Strategy: StrategyEnv,
	}
}

func (l *Locator) probe(ctx context.Context) (*InstallationPaths, error) {
	run := l.Run
	if run == nil {
		run = execRunner
	}

	args := l.Runtime.ProbeArgsFor(platform.LibDir(l.goos()))
	l.logger().Debug("probing runtime", "cmd", l.Runtime.Executable, "args", args)

	out, err := run(ctx, l.Runtime.Executable, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: running %s: %v: %s", ErrProbeFailed, l.Runtime.Executable, err,
				strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%w: running %s: %v", ErrProbeFailed, l.Runtime.Executable, err)
	}

	return ParseProbeOutput(out)
}

// ParseProbeOutput reads home, include and library directories, in that
// order, from line separated probe output. Lines are taken verbatim apart
// from their line ending. A missing or blank line fails with the error for
// the first field it should have held.
func ParseProbeOutput(out []byte) (*InstallationPaths, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))

	var fields [3]string
	for i, missing := range []error{ErrHomeNotFound, ErrIncludeNotFound, ErrLibraryNotFound} {
		// an empty line is never a usable path, so it counts as missing
		if !scanner.Scan() || scanner.Text() == "" {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("%w: reading probe output: %v", missing, err)
			}
			return nil, missing
		}
		fields[i] = scanner.Text()
	}

	return &InstallationPaths{
		Home:     fields[0],
		Include:  fields[1],
		Library:  fields[2],
		Strategy: StrategyProbe,
	}, nil
}

func (l *Locator) goos() string {
	if l.GOOS == "" {
		return runtime.GOOS
	}
	return l.GOOS
}

func (l *Locator) logger() *log.Logger {
	if l.Logger == nil {
		return log.New(io.Discard)
	}
	return l.Logger
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
