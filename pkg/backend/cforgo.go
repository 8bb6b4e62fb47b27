// pkg/backend/cforgo.go
package backend

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/arc-language/rsys/pkg/headers"
	"github.com/arc-language/rsys/pkg/platform"
)

const cforgoTool = "c-for-go"

// CForGoBackend generates bindings with c-for-go, driven by a YAML manifest
type CForGoBackend struct {
	config *Config
}

// NewCForGoBackend creates a c-for-go backend
func NewCForGoBackend(cfg *Config) *CForGoBackend {
	return &CForGoBackend{config: cfg}
}

// Name returns the backend name
func (b *CForGoBackend) Name() string {
	return string(BackendCForGo)
}

// Available reports whether c-for-go is on PATH
func (b *CForGoBackend) Available() bool {
	_, err := exec.LookPath(b.tool())
	return err == nil
}

func (b *CForGoBackend) tool() string {
	if b.config.Tool != "" {
		return b.config.Tool
	}
	return cforgoTool
}

type cforgoManifest struct {
	Generator  cforgoGenerator  `yaml:"GENERATOR"`
	Parser     cforgoParser     `yaml:"PARSER"`
	Translator cforgoTranslator `yaml:"TRANSLATOR"`
}

type cforgoGenerator struct {
	PackageName        string   `yaml:"PackageName"`
	PackageDescription string   `yaml:"PackageDescription"`
	Includes           []string `yaml:"Includes"`
}

type cforgoParser struct {
	Arch         string   `yaml:"Arch,omitempty"`
	IncludePaths []string `yaml:"IncludePaths"`
	SourcesPaths []string `yaml:"SourcesPaths"`
}

type cforgoTranslator struct {
	ConstRules map[string]string       `yaml:"ConstRules"`
	Rules      map[string][]cforgoRule `yaml:"Rules"`
}

type cforgoRule struct {
	Action string `yaml:"action"`
	From   string `yaml:"from"`
}

// manifest builds the c-for-go manifest for opts. Blocklisted names become
// ignore rules placed after the accept rules so they win.
func (b *CForGoBackend) manifest(opts *Options) *cforgoManifest {
	header := filepath.Base(opts.Header)

	m := &cforgoManifest{
		Generator: cforgoGenerator{
			PackageName:        opts.Package,
			PackageDescription: fmt.Sprintf("Package %s provides Go bindings generated from %s.", opts.Package, header),
			Includes:           []string{header},
		},
		Parser: cforgoParser{
			Arch:         platform.TripleArch(opts.Target),
			IncludePaths: append([]string(nil), opts.IncludeDirs...),
			SourcesPaths: []string{opts.Header},
		},
		Translator: cforgoTranslator{
			ConstRules: map[string]string{"defines": "expand"},
			Rules:      map[string][]cforgoRule{},
		},
	}

	var rules []cforgoRule
	for _, pattern := range opts.Accept {
		rules = append(rules, cforgoRule{Action: "accept", From: pattern})
	}
	if opts.VersionConst != "" {
		rules = append(rules, cforgoRule{Action: "accept", From: "^" + regexp.QuoteMeta(opts.VersionConst) + "$"})
	}
	for _, name := range opts.Blocklist {
		rules = append(rules, cforgoRule{Action: "ignore", From: "^" + regexp.QuoteMeta(name) + "$"})
	}
	m.Translator.Rules["global"] = rules

	return m
}

// Generate writes a manifest into a scratch directory, runs c-for-go on it and
// collects the generated package
func (b *CForGoBackend) Generate(ctx context.Context, opts *Options) (*Bindings, error) {
	logger := b.config.logger()

	header, err := filepath.Abs(opts.Header)
	if err != nil {
		return nil, err
	}
	wrapper, err := os.ReadFile(header)
	if err != nil {
		return nil, fmt.Errorf("reading wrapper header: %w", err)
	}
	if err := walkIncludes(header, opts); err != nil {
		return nil, err
	}

	work, err := os.MkdirTemp(b.config.WorkDir, "rsys-cforgo-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(work)

	resolved := *opts
	resolved.Header = header
	data, err := yaml.Marshal(b.manifest(&resolved))
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	manifestPath := filepath.Join(work, opts.Package+".yml")
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	outDir := filepath.Join(work, "out")
	cmd := Command{
		Dir:  work,
		Name: b.tool(),
		Args: []string{"-nostamp", "-out", outDir, manifestPath},
	}
	logger.Debug("running generator", "cmd", cmd.String())

	if _, err := b.config.runner()(ctx, cmd); err != nil {
		return nil, fmt.Errorf("unable to generate bindings: %w", err)
	}

	files, err := collect(filepath.Join(outDir, opts.Package))
	if err != nil {
		return nil, fmt.Errorf("collecting c-for-go output: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("unable to generate bindings: c-for-go produced no files")
	}

	bindings := &Bindings{Package: opts.Package, Files: files}
	// The generated cgo preamble includes the wrapper by its base name.
	bindings.Add(filepath.Base(header), wrapper)
	return bindings, nil
}

func collect(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: e.Name(), Data: data})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func walkIncludes(header string, opts *Options) error {
	if opts.OnInclude == nil {
		return nil
	}
	if err := headers.Walk(header, opts.IncludeDirs, opts.OnInclude); err != nil {
		return fmt.Errorf("scanning includes: %w", err)
	}
	return nil
}
