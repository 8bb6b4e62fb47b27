// pkg/env/errors.go
package env

import (
	"errors"
	"fmt"
)

var (
	// ErrHomeNotFound means the runtime home could not be determined
	ErrHomeNotFound = errors.New("cannot find home")

	// ErrIncludeNotFound means the header directory could not be determined
	ErrIncludeNotFound = errors.New("cannot find include")

	// ErrLibraryNotFound means the library directory could not be determined
	ErrLibraryNotFound = errors.New("cannot find library")

	// ErrProbeFailed means the runtime executable could not be run
	ErrProbeFailed = errors.New("probe failed")
)

// DiscoveryError wraps every failure to locate an installation, so callers can
// tell discovery problems apart from the rest of the pipeline.
type DiscoveryError struct {
	Runtime  string
	Strategy Strategy
	Err      error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("locating %s installation (%s): %v", e.Runtime, e.Strategy, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
