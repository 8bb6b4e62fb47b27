// pkg/backend/godefs.go
package backend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// GodefsBackend generates Go type and constant definitions with
// `go tool cgo -godefs`. Unlike c-for-go it only translates what its input
// file names, so without a hand written input it emits just the version
// constant.
type GodefsBackend struct {
	config *Config
}

// NewGodefsBackend creates a cgo -godefs backend
func NewGodefsBackend(cfg *Config) *GodefsBackend {
	return &GodefsBackend{config: cfg}
}

// Name returns the backend name
func (b *GodefsBackend) Name() string {
	return string(BackendGodefs)
}

// Available reports whether the go tool is on PATH
func (b *GodefsBackend) Available() bool {
	_, err := exec.LookPath(b.tool())
	return err == nil
}

func (b *GodefsBackend) tool() string {
	if b.config.Tool != "" {
		return b.config.Tool
	}
	return "go"
}

// Generate runs cgo -godefs over opts.Input (or a generated input) with the
// include directory and target triple passed to the C compiler
func (b *GodefsBackend) Generate(ctx context.Context, opts *Options) (*Bindings, error) {
	logger := b.config.logger()

	header, err := filepath.Abs(opts.Header)
	if err != nil {
		return nil, err
	}
	if err := walkIncludes(header, opts); err != nil {
		return nil, err
	}

	work, err := os.MkdirTemp(b.config.WorkDir, "rsys-godefs-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(work)

	input := opts.Input
	if input == "" {
		input = filepath.Join(work, "types.go")
		if err := os.WriteFile(input, godefsInput(opts.Package, header, opts.VersionConst), 0644); err != nil {
			return nil, fmt.Errorf("writing godefs input: %w", err)
		}
	} else if input, err = filepath.Abs(input); err != nil {
		return nil, err
	}

	args := []string{"tool", "cgo", "-godefs", "-objdir", filepath.Join(work, "_obj"), "--"}
	for _, dir := range opts.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	// --target is a clang flag
	var env []string
	switch cc := os.Getenv("CC"); {
	case cc == "":
		env = []string{"CC=clang"}
		args = append(args, "--target="+opts.Target)
	case isClang(cc):
		args = append(args, "--target="+opts.Target)
	default:
		logger.Debug("CC is not clang, generating for the host instead of the target", "cc", cc, "target", opts.Target)
	}
	args = append(args, input)

	cmd := Command{
		Dir:  work,
		Env:  env,
		Name: b.tool(),
		Args: args,
	}
	logger.Debug("running generator", "cmd", cmd.String())

	out, err := b.config.runner()(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("unable to generate bindings: %w", err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("unable to generate bindings: cgo -godefs produced no output")
	}

	out = bytes.ReplaceAll(out, []byte(work+string(filepath.Separator)), nil)
	out = dropDeclarations(out, opts.Blocklist)

	return &Bindings{
		Package: opts.Package,
		Files:   []File{{Name: "bindings.go", Data: out}},
	}, nil
}

// isClang reports whether a CC value runs clang, possibly behind a wrapper
// such as ccache.
func isClang(cc string) bool {
	for _, f := range strings.Fields(cc) {
		if strings.HasPrefix(f, "-") {
			break
		}
		if strings.Contains(filepath.Base(f), "clang") {
			return true
		}
	}
	return false
}

func godefsInput(pkg, header, versionConst string) []byte {
	var buf bytes.Buffer
	buf.WriteString("//go:build ignore\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	fmt.Fprintf(&buf, "/*\n#include %s\n*/\nimport \"C\"\n", strconv.Quote(header))
	if versionConst != "" {
		fmt.Fprintf(&buf, "\nconst (\n\t%s = C.%s\n)\n", versionConst, versionConst)
	}
	return buf.Bytes()
}

// dropDeclarations removes the lines declaring any of names.
func dropDeclarations(src []byte, names []string) []byte {
	if len(names) == 0 {
		return src
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	re := regexp.MustCompile(`^\s*(?:const\s+|type\s+|var\s+)?(?:` + strings.Join(quoted, "|") + `)\b`)

	lines := bytes.SplitAfter(src, []byte("\n"))
	out := make([]byte, 0, len(src))
	for _, line := range lines {
		if re.Match(line) {
			continue
		}
		out = append(out, line...)
	}
	return out
}
