// pkg/backend/bindings.go
package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is one generated file
type File struct {
	Name string
	Data []byte
}

// Bindings is the output of a generator: an ordered set of files forming one
// Go package
type Bindings struct {
	Package string
	Files   []File
}

// Add adds a file, replacing any file with the same name
func (b *Bindings) Add(name string, data []byte) {
	for i := range b.Files {
		if b.Files[i].Name == name {
			b.Files[i].Data = data
			return
		}
	}
	b.Files = append(b.Files, File{Name: name, Data: data})
}

// Source returns the concatenation of every Go file, for post-processing
func (b *Bindings) Source() string {
	var sb strings.Builder
	for _, f := range b.Files {
		if !strings.HasSuffix(f.Name, ".go") {
			continue
		}
		sb.Write(f.Data)
		if len(f.Data) > 0 && f.Data[len(f.Data)-1] != '\n' {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// WriteTo writes every file into dir, creating it if needed. Each file is
// written to a temporary name and renamed into place, so a failed write
// never leaves a truncated file behind.
func (b *Bindings) WriteTo(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, f := range b.Files {
		if err := writeFileAtomic(filepath.Join(dir, f.Name), f.Data); err != nil {
			return err
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
