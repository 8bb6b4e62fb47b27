// errors.go
package rsys

import (
	"errors"
	"fmt"

	"github.com/arc-language/rsys/pkg/backend"
	"github.com/arc-language/rsys/pkg/env"
)

var (
	// ErrTargetNotSet indicates no target triple was configured
	ErrTargetNotSet = errors.New("target triple not set")

	// ErrOutDirNotSet indicates no primary output directory was configured
	ErrOutDirNotSet = errors.New("output directory not set")

	// ErrNoGenerator indicates no binding generator was configured or found
	ErrNoGenerator = errors.New("no binding generator available")

	// ErrHashMismatch indicates bindings do not match their recorded hash
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrNoManifest indicates a directory or bundle lacks rsys-build.yaml
	ErrNoManifest = errors.New("no build manifest")
)

// Re-exported so callers only need this package
var (
	ErrHomeNotFound    = env.ErrHomeNotFound
	ErrIncludeNotFound = env.ErrIncludeNotFound
	ErrLibraryNotFound = env.ErrLibraryNotFound
	ErrVersionNotFound = backend.ErrVersionNotFound
)

// DiscoveryError is returned when the runtime installation cannot be located
type DiscoveryError = env.DiscoveryError

// IsDiscoveryError reports whether err comes from locating the installation
func IsDiscoveryError(err error) bool {
	var derr *DiscoveryError
	return errors.As(err, &derr)
}

// Error wraps an error with additional context
type Error struct {
	Op      string // Operation that failed
	Runtime string // Runtime name if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Runtime != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Runtime, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
