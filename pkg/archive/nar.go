// pkg/archive/nar.go

// Package archive serialises generated bindings: as a NAR stream for content
// hashing, and as tar.xz bundles for shipping precomputed bindings.
package archive

import (
	"fmt"
	"io/fs"
	"sort"

	"zombiezen.com/go/nix"
	"zombiezen.com/go/nix/nar"

	"github.com/arc-language/rsys/pkg/backend"
)

// NarHash returns the SRI sha256 hash of files laid out as a flat directory
// in Nix archive format. The result does not depend on file order.
func NarHash(files []backend.File) (string, error) {
	sorted := append([]backend.File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := nix.NewHasher(nix.SHA256)
	nw := nar.NewWriter(h)

	if err := nw.WriteHeader(&nar.Header{Mode: fs.ModeDir | 0o755}); err != nil {
		return "", fmt.Errorf("nar: %w", err)
	}
	for _, f := range sorted {
		hdr := &nar.Header{
			Path: f.Name,
			Mode: 0o644,
			Size: int64(len(f.Data)),
		}
		if err := nw.WriteHeader(hdr); err != nil {
			return "", fmt.Errorf("nar: %s: %w", f.Name, err)
		}
		if _, err := nw.Write(f.Data); err != nil {
			return "", fmt.Errorf("nar: %s: %w", f.Name, err)
		}
	}
	if err := nw.Close(); err != nil {
		return "", fmt.Errorf("nar: %w", err)
	}

	return h.SumHash().SRI(), nil
}
