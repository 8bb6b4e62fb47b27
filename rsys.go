// rsys.go
package rsys

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/arc-language/rsys/pkg/archive"
	"github.com/arc-language/rsys/pkg/backend"
	"github.com/arc-language/rsys/pkg/core"
	"github.com/arc-language/rsys/pkg/env"
	"github.com/arc-language/rsys/pkg/metadata"
	"github.com/arc-language/rsys/pkg/platform"
	"github.com/arc-language/rsys/pkg/registry"
)

// Version is the rsys release
const Version = "0.1.0"

// Re-export types for convenience
type (
	Config            = core.Config
	InstallationPaths = env.InstallationPaths
	Bindings          = backend.Bindings
	Manifest          = metadata.Manifest
	Signal            = metadata.Signal
	Runtime           = registry.Descriptor
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return core.DefaultConfig()
}

// Options carries the process level collaborators of a run. The zero value
// uses the real environment, os/exec and stdout.
type Options struct {
	// Signals receives the rsys:key=value lines. Defaults to os.Stdout.
	Signals io.Writer

	Logger *log.Logger

	// GOOS selects the installation layout. Defaults to runtime.GOOS.
	GOOS string

	// LookupEnv reads the runtime home variable. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	// Probe runs the runtime executable. Defaults to os/exec.
	Probe env.Runner

	// Run runs the binding generator. Defaults to os/exec.
	Run backend.Runner
}

func (o *Options) withDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Signals == nil {
		out.Signals = os.Stdout
	}
	if out.Logger == nil {
		out.Logger = log.New(io.Discard)
	}
	if out.GOOS == "" {
		out.GOOS = runtime.GOOS
	}
	if out.LookupEnv == nil {
		out.LookupEnv = os.LookupEnv
	}
	return &out
}

// Result describes a finished generation run
type Result struct {
	Runtime  *Runtime
	Paths    *InstallationPaths
	Version  uint32
	Bindings *Bindings // nil when Fresh
	Manifest *Manifest
	Signals  []Signal
	Written  []string // Directories the bindings were written to
	Fresh    bool     // Previous output was up to date and reused
}

// LoadRuntime returns the descriptor of the configured runtime
func LoadRuntime(cfg *Config) (*Runtime, error) {
	desc, err := registry.New(cfg.CachePath).Load(cfg.Runtime)
	if err != nil {
		return nil, &Error{Op: "load runtime", Runtime: cfg.Runtime, Err: err}
	}
	return desc, nil
}

// Locate finds the installation of the configured runtime. Failures are
// *DiscoveryError.
func Locate(ctx context.Context, cfg *Config, opts *Options) (*InstallationPaths, *Runtime, error) {
	opts = opts.withDefaults()

	desc, err := LoadRuntime(cfg)
	if err != nil {
		return nil, nil, err
	}

	paths, err := locate(ctx, desc, opts)
	if err != nil {
		return nil, desc, err
	}
	return paths, desc, nil
}

func locate(ctx context.Context, desc *Runtime, opts *Options) (*InstallationPaths, error) {
	l := env.NewLocator(desc)
	l.GOOS = opts.GOOS
	l.LookupEnv = opts.LookupEnv
	if opts.Probe != nil {
		l.Run = opts.Probe
	}
	l.Logger = opts.Logger
	return l.Locate(ctx)
}

// Generate locates the runtime, generates bindings for the wrapper header,
// extracts the runtime version from them and writes them to the output
// directory and, when configured, to the bindings directory. Every failure
// is fatal to the run; discovery failures are *DiscoveryError.
func Generate(ctx context.Context, cfg *Config, opts *Options) (*Result, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	desc, err := LoadRuntime(cfg)
	if err != nil {
		return nil, err
	}

	paths, err := locate(ctx, desc, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("found installation", "runtime", desc.Label(), "home", paths.Home, "via", paths.Strategy)

	e := metadata.NewEmitter(opts.Signals)
	e.Home(paths.Home)
	e.LinkSearch(paths.Library)
	e.LinkLib(desc.LinkLib)
	if err := e.Err(); err != nil {
		return nil, &Error{Op: "emit signals", Runtime: desc.Label(), Err: err}
	}

	if cfg.File != "" {
		e.RerunIfChanged(cfg.File)
	}
	header, err := filepath.Abs(cfg.Header)
	if err != nil {
		return nil, &Error{Op: "configure", Runtime: desc.Label(), Err: err}
	}
	if _, err := os.Stat(header); err != nil {
		return nil, &Error{Op: "configure", Runtime: desc.Label(), Err: fmt.Errorf("wrapper header: %w", err)}
	}
	e.RerunIfChanged(header)

	target := strings.TrimSpace(cfg.Target)
	if target == "" {
		return nil, &Error{Op: "configure", Runtime: desc.Label(), Err: fmt.Errorf(
			"%w: set %s or --target (host is %s)", ErrTargetNotSet, core.EnvVar("target"), platform.HostTriple())}
	}
	if cfg.OutDir == "" {
		return nil, &Error{Op: "configure", Runtime: desc.Label(), Err: fmt.Errorf(
			"%w: set %s or --out-dir", ErrOutDirNotSet, core.EnvVar("out_dir"))}
	}

	generator, err := resolveGenerator(cfg)
	if err != nil {
		return nil, &Error{Op: "configure", Runtime: desc.Label(), Err: err}
	}

	pkg := cfg.Package
	if pkg == "" {
		pkg = desc.Package
	}

	dirs := []string{cfg.OutDir}
	if cfg.BindingsDir != "" {
		dirs = append(dirs, cfg.BindingsDir)
	}

	fp := metadata.Fingerprint{
		Runtime:     desc.Name,
		Home:        paths.Home,
		Include:     paths.Include,
		Library:     paths.Library,
		Target:      target,
		Generator:   generator,
		Package:     pkg,
		Header:      header,
		BindingsDir: cfg.BindingsDir,
	}

	if !cfg.Force {
		if m, err := metadata.ReadManifest(cfg.OutDir); err == nil && m.Fresh(fp, dirs...) {
			logger.Info("bindings up to date", "dir", cfg.OutDir, "version", m.Version)
			for _, in := range m.Inputs {
				e.RerunIfChanged(in.Path)
			}
			e.Version(m.Version)
			if err := e.Err(); err != nil {
				return nil, &Error{Op: "emit signals", Runtime: desc.Label(), Err: err}
			}
			return &Result{
				Runtime:  desc,
				Paths:    paths,
				Version:  m.Version,
				Manifest: m,
				Signals:  e.Signals(),
				Fresh:    true,
			}, nil
		}
	}

	b, err := backend.New(backend.BackendType(generator), &backend.Config{
		Tool:   cfg.Tool,
		Run:    opts.Run,
		Logger: logger,
	})
	if err != nil {
		return nil, &Error{Op: "configure", Runtime: desc.Label(), Err: err}
	}

	logger.Info("generating bindings", "generator", b.Name(), "header", header, "target", target)
	bindings, err := b.Generate(ctx, &backend.Options{
		Package:      pkg,
		Header:       header,
		IncludeDirs:  []string{paths.Include},
		Target:       target,
		Blocklist:    desc.Blocklist,
		Accept:       desc.Accept,
		VersionConst: desc.VersionConst,
		Input:        cfg.GodefsInput,
		OnInclude:    e.RerunIfChanged,
	})
	if err != nil {
		return nil, &Error{Op: "generate", Runtime: desc.Label(), Err: err}
	}

	version, err := backend.ExtractVersion(bindings.Source(), desc.VersionConst)
	if err != nil {
		return nil, &Error{Op: "extract version", Runtime: desc.Label(), Err: err}
	}
	e.Version(version)
	if err := e.Err(); err != nil {
		return nil, &Error{Op: "emit signals", Runtime: desc.Label(), Err: err}
	}

	flags := paths.Flags(desc.LinkLib)
	bindings.Add(metadata.CgoLinkFileName, metadata.CgoLinkFile(pkg, flags.CFlags(), flags.LDFlags()))

	hash, err := archive.NarHash(bindings.Files)
	if err != nil {
		return nil, &Error{Op: "hash bindings", Runtime: desc.Label(), Err: err}
	}
	inputs, err := metadata.DigestInputs(e.RerunPaths())
	if err != nil {
		return nil, &Error{Op: "hash inputs", Runtime: desc.Label(), Err: err}
	}

	manifest := &metadata.Manifest{
		Fingerprint:  fp,
		LinkLib:      desc.LinkLib,
		Version:      version,
		BindingsHash: hash,
		Inputs:       inputs,
	}
	for _, f := range bindings.Files {
		manifest.Files = append(manifest.Files, f.Name)
	}

	if err := bindings.WriteTo(cfg.OutDir); err != nil {
		return nil, &Error{Op: "write bindings", Err: fmt.Errorf("couldn't write bindings to %s: %w", cfg.OutDir, err)}
	}
	// Once a bindings directory is configured the copy is as mandatory as
	// the primary output.
	if cfg.BindingsDir != "" {
		if err := bindings.WriteTo(cfg.BindingsDir); err != nil {
			return nil, &Error{Op: "write bindings", Err: fmt.Errorf(
				"couldn't write bindings to %s specified by %s: %w", cfg.BindingsDir, core.EnvVar("bindings_dir"), err)}
		}
	}
	for _, dir := range dirs {
		if err := manifest.Write(dir); err != nil {
			return nil, &Error{Op: "write manifest", Err: err}
		}
	}
	logger.Info("wrote bindings", "dirs", dirs, "version", version, "hash", hash)

	return &Result{
		Runtime:  desc,
		Paths:    paths,
		Version:  version,
		Bindings: bindings,
		Manifest: manifest,
		Signals:  e.Signals(),
		Written:  dirs,
	}, nil
}

func resolveGenerator(cfg *Config) (string, error) {
	if cfg.Generator != "" {
		return cfg.Generator, nil
	}
	plat, err := platform.Detect()
	if err != nil {
		return "", fmt.Errorf("detecting platform: %w", err)
	}
	if plat.Preferred == "" {
		return "", fmt.Errorf("%w: install c-for-go or go, or set --generator", ErrNoGenerator)
	}
	return plat.Preferred, nil
}
