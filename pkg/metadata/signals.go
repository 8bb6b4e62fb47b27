// pkg/metadata/signals.go

// Package metadata publishes what a generation run found to whatever drives
// the build: signal lines on stdout, a YAML manifest next to the bindings and
// a cgo directive file inside them.
package metadata

import (
	"fmt"
	"io"
	"strconv"
)

// Signal keys
const (
	KeyHome           = "home"
	KeyLinkSearch     = "link-search"
	KeyLinkLib        = "link-lib"
	KeyRerunIfChanged = "rerun-if-changed"
	KeyVersion        = "version"
)

// Prefix starts every signal line
const Prefix = "rsys:"

// Signal is one key/value emission
type Signal struct {
	Key   string
	Value string
}

func (s Signal) String() string {
	return Prefix + s.Key + "=" + s.Value
}

// Emitter writes signals as "rsys:key=value" lines and remembers them.
// Repeated rerun-if-changed paths are emitted once.
type Emitter struct {
	w       io.Writer
	signals []Signal
	rerun   map[string]bool
	err     error
}

// NewEmitter creates an Emitter writing to w. A nil w only records.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w, rerun: make(map[string]bool)}
}

// Emit writes one signal
func (e *Emitter) Emit(key, value string) {
	s := Signal{Key: key, Value: value}
	e.signals = append(e.signals, s)
	if e.w == nil || e.err != nil {
		return
	}
	if _, err := fmt.Fprintln(e.w, s.String()); err != nil {
		e.err = err
	}
}

// Home announces the runtime home, for this build and for dependents
func (e *Emitter) Home(path string) { e.Emit(KeyHome, path) }

// LinkSearch announces the library search directory
func (e *Emitter) LinkSearch(dir string) { e.Emit(KeyLinkSearch, dir) }

// LinkLib announces that lib must be linked dynamically
func (e *Emitter) LinkLib(lib string) { e.Emit(KeyLinkLib, "dylib="+lib) }

// RerunIfChanged names a file whose change invalidates the bindings
func (e *Emitter) RerunIfChanged(path string) {
	if e.rerun[path] {
		return
	}
	e.rerun[path] = true
	e.Emit(KeyRerunIfChanged, path)
}

// Version announces the runtime version found in the bindings
func (e *Emitter) Version(v uint32) { e.Emit(KeyVersion, strconv.FormatUint(uint64(v), 10)) }

// Signals returns everything emitted so far
func (e *Emitter) Signals() []Signal {
	return append([]Signal(nil), e.signals...)
}

// RerunPaths returns the rerun-if-changed paths in emission order
func (e *Emitter) RerunPaths() []string {
	var paths []string
	for _, s := range e.signals {
		if s.Key == KeyRerunIfChanged {
			paths = append(paths, s.Value)
		}
	}
	return paths
}

// Err returns the first write error, if any
func (e *Emitter) Err() error {
	return e.err
}
