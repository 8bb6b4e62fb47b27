// pkg/platform/detect.go
package platform

import (
	"fmt"
	"runtime"
)

// Generator names as they appear in config files and on the command line
const (
	GeneratorCForGo = "cforgo"
	GeneratorGodefs = "godefs"
)

// Platform represents the detected host platform
type Platform struct {
	OS        string   // linux, darwin, windows
	Arch      string   // amd64, arm64, 386, arm
	Available []string // Binding generators found on PATH
	Preferred string   // Preferred binding generator
}

// Detect detects the current platform and the binding generators it can run
func Detect() (*Platform, error) {
	p := &Platform{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Available: []string{},
	}

	if commandExists("c-for-go") {
		p.Available = append(p.Available, GeneratorCForGo)
	}

	if commandExists("go") {
		p.Available = append(p.Available, GeneratorGodefs)
	}

	switch p.OS {
	case "linux", "darwin", "windows", "freebsd":
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", p.OS)
	}

	// c-for-go translates the whole header; godefs only what it is told to.
	if contains(p.Available, GeneratorCForGo) {
		p.Preferred = GeneratorCForGo
	} else if contains(p.Available, GeneratorGodefs) {
		p.Preferred = GeneratorGodefs
	}

	return p, nil
}

// String returns a string representation of the platform
func (p *Platform) String() string {
	return fmt.Sprintf("%s/%s (available: %v, preferred: %s)",
		p.OS, p.Arch, p.Available, p.Preferred)
}

// LibDir returns the directory below a runtime home that holds the shared
// library the bindings link against. Windows installs keep the DLL in bin.
func LibDir(goos string) string {
	if goos == "windows" {
		return "bin"
	}
	return "lib"
}
