// pkg/metadata/manifest.go
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arc-language/rsys/pkg/archive"
	"github.com/arc-language/rsys/pkg/backend"
)

// ManifestName is the file written next to the generated bindings
const ManifestName = "rsys-build.yaml"

// Fingerprint identifies the configuration bindings were generated for. A
// change to any field invalidates them.
type Fingerprint struct {
	Runtime     string `yaml:"runtime"`
	Home        string `yaml:"home"`
	Include     string `yaml:"include"`
	Library     string `yaml:"library"`
	Target      string `yaml:"target"`
	Generator   string `yaml:"generator"`
	Package     string `yaml:"package"`
	Header      string `yaml:"header"`
	BindingsDir string `yaml:"bindings_dir,omitempty"`
}

// Input is a file the bindings depend on
type Input struct {
	Path   string `yaml:"path"`
	SHA256 string `yaml:"sha256"`
}

// Manifest records the outcome of a generation run for downstream consumers
type Manifest struct {
	Fingerprint `yaml:",inline"`

	LinkLib      string   `yaml:"link_lib"`
	Version      uint32   `yaml:"version"`
	BindingsHash string   `yaml:"bindings_hash"`
	Files        []string `yaml:"files"`
	Inputs       []Input  `yaml:"inputs"`
}

// ReadManifest loads dir/rsys-build.yaml
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestName, err)
	}
	return &m, nil
}

// Marshal renders the manifest as YAML
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	return append([]byte("# Code generated by rsys; DO NOT EDIT.\n"), data...), nil
}

// Write stores the manifest as dir/rsys-build.yaml
func (m *Manifest) Write(dir string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Fresh reports whether the bindings described by m can be reused: same
// fingerprint, unchanged inputs, and the generated files in each of dirs
// still matching the recorded bindings hash.
func (m *Manifest) Fresh(fp Fingerprint, dirs ...string) bool {
	if m.Fingerprint != fp || len(m.Files) == 0 || len(m.Inputs) == 0 {
		return false
	}

	for _, in := range m.Inputs {
		sum, err := FileDigest(in.Path)
		if err != nil || sum != in.SHA256 {
			return false
		}
	}

	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err != nil {
			return false
		}
		files := make([]backend.File, 0, len(m.Files))
		for _, name := range m.Files {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return false
			}
			files = append(files, backend.File{Name: name, Data: data})
		}
		sum, err := archive.NarHash(files)
		if err != nil || sum != m.BindingsHash {
			return false
		}
	}
	return true
}

// DigestInputs hashes every path
func DigestInputs(paths []string) ([]Input, error) {
	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		sum, err := FileDigest(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Path: p, SHA256: sum})
	}
	return inputs, nil
}

// FileDigest returns the hex sha256 of a file
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
