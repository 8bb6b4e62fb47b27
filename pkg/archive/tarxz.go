// pkg/archive/tarxz.go
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/arc-language/rsys/pkg/backend"
)

// WriteTarXz writes files as an xz compressed tarball, each under prefix/.
// Timestamps and ownership are fixed so equal inputs give equal archives.
func WriteTarXz(w io.Writer, prefix string, files []backend.File) error {
	xzWriter, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating xz writer: %w", err)
	}
	tw := tar.NewWriter(xzWriter)

	epoch := time.Unix(0, 0).UTC()
	if prefix != "" {
		err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeDir,
			Name:     prefix + "/",
			Mode:     0755,
			ModTime:  epoch,
			Format:   tar.FormatPAX,
		})
		if err != nil {
			return err
		}
	}

	for _, f := range files {
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     path.Join(prefix, f.Name),
			Mode:     0644,
			Size:     int64(len(f.Data)),
			ModTime:  epoch,
			Format:   tar.FormatPAX,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
		if _, err := tw.Write(f.Data); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return xzWriter.Close()
}

// ReadTarXz reads the regular files of a tarball written by WriteTarXz. The
// leading directory component is stripped from every name.
func ReadTarXz(r io.Reader) ([]backend.File, error) {
	xzReader, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating xz reader: %w", err)
	}
	tr := tar.NewReader(xzReader)

	var files []backend.File
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := hdr.Name
		if _, rest, ok := strings.Cut(name, "/"); ok {
			name = rest
		}
		// bundles are flat
		if name == "" || name == ".." || strings.ContainsAny(name, `/\`) {
			return nil, fmt.Errorf("unexpected entry %q", hdr.Name)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", hdr.Name, err)
		}
		files = append(files, backend.File{Name: name, Data: data})
	}
	return files, nil
}
