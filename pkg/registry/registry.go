// pkg/registry/registry.go
package registry

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed runtimes
var builtin embed.FS

const (
	descriptorFile = "runtime.toml"
	wrapperFile    = "wrapper.h"

	// libDirPlaceholder is replaced in probe arguments by the platform's
	// library directory name (lib or bin).
	libDirPlaceholder = "{libdir}"
)

// ErrUnknownRuntime is returned when no descriptor exists for a runtime name
var ErrUnknownRuntime = errors.New("unknown runtime")

// Descriptor is the metadata for a native runtime, read from
// runtimes/<name>/runtime.toml
type Descriptor struct {
	Name         string   `toml:"name"`
	DisplayName  string   `toml:"display_name"`
	HomeEnv      string   `toml:"home_env"`      // e.g. R_HOME
	Executable   string   `toml:"executable"`    // CLI able to report its own paths
	ProbeArgs    []string `toml:"probe_args"`    // prints home, include and lib dir, one per line
	LinkLib      string   `toml:"link_lib"`      // shared library name without prefix/extension
	VersionConst string   `toml:"version_const"` // constant holding the runtime version
	Package      string   `toml:"package"`       // default Go package for generated code
	Blocklist    []string `toml:"blocklist"`
	Accept       []string `toml:"accept"`

	// WrapperHeader holds the contents of wrapper.h stored next to the
	// descriptor, if any.
	WrapperHeader string `toml:"-"`

	// Source is where the descriptor was loaded from ("builtin" or a path).
	Source string `toml:"-"`
}

// ProbeArgsFor returns the probe arguments with the library directory filled in
func (d *Descriptor) ProbeArgsFor(libDir string) []string {
	args := make([]string, len(d.ProbeArgs))
	for i, a := range d.ProbeArgs {
		args[i] = strings.ReplaceAll(a, libDirPlaceholder, libDir)
	}
	return args
}

// Label returns the human readable runtime name
func (d *Descriptor) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

func (d *Descriptor) validate() error {
	var missing []string
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.HomeEnv == "" {
		missing = append(missing, "home_env")
	}
	if d.Executable == "" {
		missing = append(missing, "executable")
	}
	if d.LinkLib == "" {
		missing = append(missing, "link_lib")
	}
	if d.VersionConst == "" {
		missing = append(missing, "version_const")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Registry provides lookup of runtime descriptors. Descriptors synced into the
// cache directory take precedence over the built-in ones.
type Registry struct {
	runtimesDir string
}

// New creates a Registry backed by cacheDir. An empty cacheDir means only the
// built-in descriptors are used.
func New(cacheDir string) *Registry {
	r := &Registry{}
	if cacheDir != "" {
		r.runtimesDir = filepath.Join(cacheDir, "runtimes")
	}
	return r
}

// Load reads and parses runtimes/<name>/runtime.toml.
func (r *Registry) Load(name string) (*Descriptor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("registry: %w: empty name", ErrUnknownRuntime)
	}

	if r.runtimesDir != "" {
		dir := filepath.Join(r.runtimesDir, name)
		data, err := os.ReadFile(filepath.Join(dir, descriptorFile))
		if err == nil {
			d, err := decode(name, data, dir)
			if err != nil {
				return nil, err
			}
			if wrapper, err := os.ReadFile(filepath.Join(dir, wrapperFile)); err == nil {
				d.WrapperHeader = string(wrapper)
			}
			return d, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("registry: reading '%s': %w", name, err)
		}
	}

	dir := path.Join("runtimes", name)
	data, err := builtin.ReadFile(path.Join(dir, descriptorFile))
	if err != nil {
		return nil, fmt.Errorf("registry: %w '%s'", ErrUnknownRuntime, name)
	}
	d, err := decode(name, data, "builtin")
	if err != nil {
		return nil, err
	}
	if wrapper, err := builtin.ReadFile(path.Join(dir, wrapperFile)); err == nil {
		d.WrapperHeader = string(wrapper)
	}
	return d, nil
}

// Available returns the names of every known runtime, sorted.
func (r *Registry) Available() []string {
	seen := make(map[string]bool)

	entries, _ := fs.ReadDir(builtin, "runtimes")
	for _, e := range entries {
		if e.IsDir() {
			seen[e.Name()] = true
		}
	}

	if r.runtimesDir != "" {
		entries, err := os.ReadDir(r.runtimesDir)
		if err == nil {
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				if _, err := os.Stat(filepath.Join(r.runtimesDir, e.Name(), descriptorFile)); err == nil {
					seen[e.Name()] = true
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func decode(name string, data []byte, source string) (*Descriptor, error) {
	var d Descriptor
	if _, err := toml.Decode(string(data), &d); err != nil {
		return nil, fmt.Errorf("registry: failed to parse '%s': %w", name, err)
	}
	if d.Name == "" {
		d.Name = name
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("registry: invalid descriptor '%s': %w", name, err)
	}
	if d.Package == "" {
		d.Package = d.Name + "sys"
	}
	d.Source = source
	return &d, nil
}
