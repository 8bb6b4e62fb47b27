// pkg/headers/walk.go

// Package headers follows the #include graph of a C header.
package headers

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var includeRe = regexp.MustCompile(`^\s*#\s*include\s*([<"])([^>"]+)[>"]`)

// Walk calls fn for header and for every header it includes, directly or
// transitively, that can be resolved. Quoted includes are looked up next to
// the including file first, then in includeDirs; angle includes only in
// includeDirs. Headers that resolve nowhere (the C library, compiler
// builtins) are skipped. Each header is reported once.
//
// Conditional compilation is not evaluated: both branches of an #ifdef are
// followed, which errs on the side of reporting too many dependencies.
func Walk(header string, includeDirs []string, fn func(path string)) error {
	w := &walker{dirs: includeDirs, seen: make(map[string]bool), fn: fn}

	abs, err := filepath.Abs(header)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	return w.visit(abs)
}

type walker struct {
	dirs []string
	seen map[string]bool
	fn   func(string)
}

func (w *walker) visit(path string) error {
	if w.seen[path] {
		return nil
	}
	w.seen[path] = true
	w.fn(path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	defer f.Close()

	var next []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := includeRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		if resolved, ok := w.resolve(filepath.Dir(path), m[1] == `"`, m[2]); ok {
			next = append(next, resolved)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for _, p := range next {
		if err := w.visit(p); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) resolve(from string, quoted bool, name string) (string, bool) {
	var candidates []string
	if quoted {
		candidates = append(candidates, filepath.Join(from, name))
	}
	for _, dir := range w.dirs {
		candidates = append(candidates, filepath.Join(dir, name))
	}

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		return abs, true
	}
	return "", false
}
