// bundle.go
package rsys

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arc-language/rsys/pkg/archive"
	"github.com/arc-language/rsys/pkg/backend"
	"github.com/arc-language/rsys/pkg/metadata"
)

// BundleName returns the file name used for a bundle of m's bindings,
// e.g. rsys-263937-x86_64-unknown-linux-gnu.tar.xz
func BundleName(m *Manifest) string {
	return bundlePrefix(m) + ".tar.xz"
}

func bundlePrefix(m *Manifest) string {
	return fmt.Sprintf("%s-%d-%s", m.Package, m.Version, m.Target)
}

// Bundle packs the bindings in dir, together with their manifest, into a
// tar.xz stream. The files must still match the hash recorded when they
// were generated.
func Bundle(dir string, w io.Writer) (*Manifest, error) {
	m, err := metadata.ReadManifest(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Op: "bundle", Err: fmt.Errorf("%w in %s", ErrNoManifest, dir)}
		}
		return nil, &Error{Op: "bundle", Err: err}
	}

	files := make([]backend.File, 0, len(m.Files)+1)
	for _, name := range m.Files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, &Error{Op: "bundle", Err: err}
		}
		files = append(files, backend.File{Name: name, Data: data})
	}

	if err := verify(m, files); err != nil {
		return nil, &Error{Op: "bundle", Err: fmt.Errorf("%s: %w", dir, err)}
	}

	data, err := m.Marshal()
	if err != nil {
		return nil, &Error{Op: "bundle", Err: err}
	}
	files = append(files, backend.File{Name: metadata.ManifestName, Data: data})

	if err := archive.WriteTarXz(w, bundlePrefix(m), files); err != nil {
		return nil, &Error{Op: "bundle", Err: err}
	}
	return m, nil
}

// Unbundle extracts precomputed bindings from a tar.xz stream written by
// Bundle into dir, after checking them against the bundled manifest.
func Unbundle(r io.Reader, dir string) (*Manifest, error) {
	files, err := archive.ReadTarXz(r)
	if err != nil {
		return nil, &Error{Op: "unbundle", Err: err}
	}

	var m *Manifest
	bindings := &backend.Bindings{}
	for _, f := range files {
		if f.Name == metadata.ManifestName {
			m = &Manifest{}
			if err := yaml.Unmarshal(f.Data, m); err != nil {
				return nil, &Error{Op: "unbundle", Err: fmt.Errorf("parsing %s: %w", metadata.ManifestName, err)}
			}
			continue
		}
		bindings.Add(f.Name, f.Data)
	}
	if m == nil {
		return nil, &Error{Op: "unbundle", Err: ErrNoManifest}
	}
	bindings.Package = m.Package

	if err := verify(m, bindings.Files); err != nil {
		return nil, &Error{Op: "unbundle", Err: err}
	}

	if err := bindings.WriteTo(dir); err != nil {
		return nil, &Error{Op: "unbundle", Err: err}
	}
	if err := m.Write(dir); err != nil {
		return nil, &Error{Op: "unbundle", Err: err}
	}
	return m, nil
}

func verify(m *Manifest, files []backend.File) error {
	if m.BindingsHash == "" {
		return errors.New("manifest has no bindings hash")
	}
	got, err := archive.NarHash(files)
	if err != nil {
		return err
	}
	if got != m.BindingsHash {
		return fmt.Errorf("%w: recorded %s, found %s", ErrHashMismatch, m.BindingsHash, got)
	}
	return nil
}
