// pkg/env/library.go
package env

import (
	"os"
	"path/filepath"
	"strings"
)

// FindSharedLibrary searches dir for the shared library called name
// (libR.so, libR.dylib, R.dll, including versioned variants such as
// libR.so.4). It returns nil when nothing matches.
func FindSharedLibrary(dir, name, goos string) *Library {
	for _, ext := range GetSharedLibraryExtensions(goos) {
		for _, filename := range []string{"lib" + name + ext, name + ext} {
			fullPath := filepath.Join(dir, filename)

			if fileExists(fullPath) {
				return &Library{
					Name: name,
					Path: fullPath,
					Type: ext,
				}
			}

			// Try versioned: lib{name}{ext}.* (e.g., libR.so.4)
			matches, _ := filepath.Glob(filepath.Join(dir, filename+".*"))
			if len(matches) > 0 {
				return &Library{
					Name:    name,
					Path:    matches[0],
					Type:    ext,
					Version: strings.TrimPrefix(filepath.Base(matches[0]), filename+"."),
				}
			}
		}
	}

	return nil
}

// GetSharedLibraryExtensions returns shared library extensions for goos
func GetSharedLibraryExtensions(goos string) []string {
	switch goos {
	case "darwin":
		return []string{".dylib"}
	case "windows":
		return []string{".dll"}
	default:
		return []string{".so"}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
