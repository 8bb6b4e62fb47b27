// pkg/env/types.go
package env

// Strategy identifies how an installation was located
type Strategy string

const (
	// StrategyEnv derives every path from the runtime home variable
	StrategyEnv Strategy = "env"
	// StrategyProbe asks the runtime executable for its paths
	StrategyProbe Strategy = "probe"
)

// InstallationPaths holds the directories of a located runtime. It is built
// once by a Locator and never modified afterwards.
type InstallationPaths struct {
	Home     string   // Runtime home (e.g. /usr/lib/R)
	Include  string   // Header directory
	Library  string   // Directory holding the shared library (lib, or bin on Windows)
	Strategy Strategy // How the paths were found
}

// Library represents a found library file
type Library struct {
	Name    string // Library name (e.g., "R")
	Path    string // Absolute path to library file
	Type    string // Extension: ".so", ".dylib", ".dll"
	Version string // Version suffix if present (e.g., "3" from libfoo.so.3)
}

// CompilerFlags holds compiler and linker flags
type CompilerFlags struct {
	IncludeFlags []string // -I flags
	LibraryFlags []string // -L flags
	LinkFlags    []string // -l flags
}

// Flags returns the compiler and linker flags needed to build against the
// installation and link linkLib dynamically.
func (p *InstallationPaths) Flags(linkLib string) CompilerFlags {
	f := CompilerFlags{
		IncludeFlags: []string{"-I" + p.Include},
		LibraryFlags: []string{"-L" + p.Library},
	}
	if linkLib != "" {
		f.LinkFlags = []string{"-l" + linkLib}
	}
	return f
}

// CFlags returns the include flags
func (f CompilerFlags) CFlags() []string {
	return append([]string(nil), f.IncludeFlags...)
}

// LDFlags returns the library search flags followed by the link flags
func (f CompilerFlags) LDFlags() []string {
	out := make([]string, 0, len(f.LibraryFlags)+len(f.LinkFlags))
	out = append(out, f.LibraryFlags...)
	return append(out, f.LinkFlags...)
}
