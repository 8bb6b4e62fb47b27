// pkg/backend/types.go
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/arc-language/rsys/pkg/platform"
)

// BackendType names a binding generator
type BackendType string

const (
	// BackendCForGo drives github.com/xlab/c-for-go
	BackendCForGo BackendType = platform.GeneratorCForGo
	// BackendGodefs drives `go tool cgo -godefs`
	BackendGodefs BackendType = platform.GeneratorGodefs
)

// Backend defines the interface that all binding generator backends must implement
type Backend interface {
	// Name returns the name of the backend
	Name() string

	// Available reports whether the generator tool can be found
	Available() bool

	// Generate produces Go bindings for opts.Header
	Generate(ctx context.Context, opts *Options) (*Bindings, error)
}

// Options configures one generation run
type Options struct {
	Package      string   // Go package name of the generated code
	Header       string   // Wrapper header, the sole generation input
	IncludeDirs  []string // Header search path
	Target       string   // Target triple
	Blocklist    []string // Names never emitted
	Accept       []string // Name patterns to translate (c-for-go)
	VersionConst string   // Constant the generated code must carry
	Input        string   // Hand written godefs input file (godefs only)

	// OnInclude is called with every header the wrapper pulls in, itself
	// included, before the generator runs.
	OnInclude func(path string)
}

// Command is a process to run on behalf of a backend
type Command struct {
	Dir  string
	Env  []string // Added to the current environment
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner runs a command and returns its standard output
type Runner func(ctx context.Context, cmd Command) ([]byte, error)

// Config holds configuration shared by the backends
type Config struct {
	// Tool overrides the generator executable (c-for-go or go)
	Tool string

	// WorkDir is where scratch directories are created. Defaults to os.TempDir.
	WorkDir string

	// Run executes generator commands. Defaults to os/exec.
	Run Runner

	Logger *log.Logger
}

func (c *Config) runner() Runner {
	if c.Run != nil {
		return c.Run
	}
	return execRunner
}

func (c *Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.New(io.Discard)
}

// New creates the backend called name
func New(name BackendType, cfg *Config) (Backend, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	switch name {
	case BackendCForGo:
		return NewCForGoBackend(cfg), nil
	case BackendGodefs:
		return NewGodefsBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported generator: %s (available: %s)",
			name, strings.Join(Available(), ", "))
	}
}

// Available returns the names of all backends
func Available() []string {
	names := []string{string(BackendCForGo), string(BackendGodefs)}
	sort.Strings(names)
	return names
}

func execRunner(ctx context.Context, c Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w\n%s", c.Name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	return stdout.Bytes(), nil
}
