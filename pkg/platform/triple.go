// pkg/platform/triple.go
package platform

import (
	"runtime"
	"strings"
)

var tripleArch = map[string]string{
	"amd64":   "x86_64",
	"arm64":   "aarch64",
	"386":     "i686",
	"arm":     "armv7",
	"ppc64le": "powerpc64le",
	"s390x":   "s390x",
	"riscv64": "riscv64gc",
}

var tripleOS = map[string]string{
	"linux":   "unknown-linux-gnu",
	"darwin":  "apple-darwin",
	"windows": "pc-windows-gnu",
	"freebsd": "unknown-freebsd",
}

// HostTriple returns a best-effort target triple for the machine rsys runs on.
// It is only used to make the "target not set" diagnostic actionable.
func HostTriple() string {
	return Triple(runtime.GOOS, runtime.GOARCH)
}

// Triple maps a GOOS/GOARCH pair to a clang style target triple.
func Triple(goos, goarch string) string {
	arch, ok := tripleArch[goarch]
	if !ok {
		arch = goarch
	}
	osPart, ok := tripleOS[goos]
	if !ok {
		osPart = "unknown-" + goos
	}
	return arch + "-" + osPart
}

// TripleArch returns the architecture component of a target triple
// (x86_64-unknown-linux-gnu -> x86_64).
func TripleArch(triple string) string {
	arch, _, _ := strings.Cut(strings.TrimSpace(triple), "-")
	return arch
}
