// pkg/registry/sync.go
package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Sync clones repoURL and copies its runtimes/ directory into the cache, so
// that later Loads pick up descriptors that are not built in.
func Sync(ctx context.Context, repoURL, cacheDir string, progress io.Writer) error {
	if repoURL == "" {
		return fmt.Errorf("registry: no repository URL given")
	}

	tempDir, err := os.MkdirTemp("", "rsys-runtimes-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	_, err = git.PlainCloneContext(ctx, tempDir, false, &git.CloneOptions{
		URL:          repoURL,
		SingleBranch: true,
		Depth:        1,
		Progress:     progress,
	})
	if err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}

	src := filepath.Join(tempDir, "runtimes")
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("registry: %s has no runtimes directory", repoURL)
	}

	return copyDir(src, filepath.Join(cacheDir, "runtimes"))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}
