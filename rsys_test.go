// rsys_test.go
package rsys

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/rsys/pkg/backend"
	"github.com/arc-language/rsys/pkg/metadata"
)

const godefsOutput = "// Code generated by cmd/cgo -godefs; DO NOT EDIT.\n\npackage rsys\n\nconst (\n\tR_VERSION = 402500\n)\n"

// failingWriter accepts ok writes, then fails
type failingWriter struct {
	ok int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.ok == 0 {
		return 0, errors.New("stdout closed")
	}
	w.ok--
	return len(p), nil
}

type fixture struct {
	home    string
	header  string
	cfg     *Config
	signals *bytes.Buffer
	runs    int
	output  string
	opts    *Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()

	home := filepath.Join(root, "R")
	include := filepath.Join(home, "include")
	require.NoError(t, os.MkdirAll(include, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(include, "Rversion.h"), []byte("#define R_VERSION 402500\n"), 0644))

	header := filepath.Join(root, "wrapper.h")
	require.NoError(t, os.WriteFile(header, []byte("#include <Rversion.h>\n"), 0644))

	f := &fixture{
		home:    home,
		header:  header,
		signals: &bytes.Buffer{},
		output:  godefsOutput,
	}
	f.cfg = &Config{
		Runtime:   "r",
		Generator: "godefs",
		Header:    header,
		OutDir:    filepath.Join(root, "out"),
		Target:    "x86_64-unknown-linux-gnu",
		CachePath: filepath.Join(root, "cache"),
	}
	f.opts = &Options{
		Signals: f.signals,
		GOOS:    "linux",
		LookupEnv: func(key string) (string, bool) {
			if key == "R_HOME" {
				return home, true
			}
			return "", false
		},
		Probe: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			t.Fatalf("unexpected probe of %s", name)
			return nil, nil
		},
		Run: func(ctx context.Context, cmd backend.Command) ([]byte, error) {
			f.runs++
			return []byte(f.output), nil
		},
	}
	return f
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)

	res, err := Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)

	assert.False(t, res.Fresh)
	assert.Equal(t, uint32(402500), res.Version)
	assert.Equal(t, f.home, res.Paths.Home)
	assert.Equal(t, []string{f.cfg.OutDir}, res.Written)
	assert.Equal(t, 1, f.runs)

	lib := filepath.Join(f.home, "lib")
	assert.Equal(t, strings.Join([]string{
		"rsys:home=" + f.home,
		"rsys:link-search=" + lib,
		"rsys:link-lib=dylib=R",
		"rsys:rerun-if-changed=" + f.header,
		"rsys:rerun-if-changed=" + filepath.Join(f.home, "include", "Rversion.h"),
		"rsys:version=402500",
	}, "\n")+"\n", f.signals.String())

	data, err := os.ReadFile(filepath.Join(f.cfg.OutDir, "bindings.go"))
	require.NoError(t, err)
	assert.Equal(t, godefsOutput, string(data))

	link, err := os.ReadFile(filepath.Join(f.cfg.OutDir, metadata.CgoLinkFileName))
	require.NoError(t, err)
	assert.Contains(t, string(link), "#cgo LDFLAGS: -L"+lib+" -lR")

	m, err := metadata.ReadManifest(f.cfg.OutDir)
	require.NoError(t, err)
	assert.Equal(t, uint32(402500), m.Version)
	assert.Equal(t, "godefs", m.Generator)
	assert.Equal(t, []string{"bindings.go", metadata.CgoLinkFileName}, m.Files)
	assert.True(t, strings.HasPrefix(m.BindingsHash, "sha256-"))
	require.Len(t, m.Inputs, 2)
}

func TestGenerateWritesBindingsDir(t *testing.T) {
	f := newFixture(t)
	f.cfg.BindingsDir = filepath.Join(t.TempDir(), "bindings")

	res, err := Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)
	assert.Equal(t, []string{f.cfg.OutDir, f.cfg.BindingsDir}, res.Written)

	for _, name := range []string{"bindings.go", metadata.CgoLinkFileName, metadata.ManifestName} {
		primary, err := os.ReadFile(filepath.Join(f.cfg.OutDir, name))
		require.NoError(t, err)
		copied, err := os.ReadFile(filepath.Join(f.cfg.BindingsDir, name))
		require.NoError(t, err)
		assert.Equal(t, primary, copied, name)
	}
}

func TestGenerateUnwritableBindingsDirFails(t *testing.T) {
	f := newFixture(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	f.cfg.BindingsDir = filepath.Join(blocker, "bindings")

	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.Error(t, err)
	assert.False(t, IsDiscoveryError(err))

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "write bindings", rerr.Op)
	assert.Contains(t, err.Error(), "RSYS_BINDINGS_DIR")

	// the run is not reported as complete anywhere
	_, err = metadata.ReadManifest(f.cfg.OutDir)
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateMissingVersionIsFatal(t *testing.T) {
	f := newFixture(t)
	f.output = "package rsys\n\nconst (\n\tR_NICK = 1\n)\n"

	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.ErrorIs(t, err, ErrVersionNotFound)
	assert.NotContains(t, f.signals.String(), "rsys:version=")

	_, statErr := os.Stat(filepath.Join(f.cfg.OutDir, "bindings.go"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateTargetRequired(t *testing.T) {
	f := newFixture(t)
	f.cfg.Target = ""

	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.ErrorIs(t, err, ErrTargetNotSet)
	assert.False(t, IsDiscoveryError(err))
	assert.Equal(t, 0, f.runs)
	// discovery signals precede configuration
	assert.Contains(t, f.signals.String(), "rsys:home="+f.home)
}

func TestGenerateOutDirRequired(t *testing.T) {
	f := newFixture(t)
	f.cfg.OutDir = ""

	_, err := Generate(context.Background(), f.cfg, f.opts)
	assert.ErrorIs(t, err, ErrOutDirNotSet)
}

func TestGenerateMissingHeader(t *testing.T) {
	f := newFixture(t)
	f.cfg.Header = filepath.Join(t.TempDir(), "missing.h")

	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestGenerateGeneratorFailure(t *testing.T) {
	f := newFixture(t)
	f.opts.Run = func(ctx context.Context, cmd backend.Command) ([]byte, error) {
		return nil, errors.New("go: exit status 2\nfatal error: 'Rinternals.h' file not found")
	}

	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'Rinternals.h' file not found")

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "generate", rerr.Op)
}

func TestGenerateDiscoveryFailure(t *testing.T) {
	f := newFixture(t)
	f.opts.LookupEnv = func(string) (string, bool) { return "", false }
	f.opts.Probe = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("/usr/lib/R\n"), nil
	}

	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.Error(t, err)
	assert.True(t, IsDiscoveryError(err))
	assert.ErrorIs(t, err, ErrIncludeNotFound)
	assert.Empty(t, f.signals.String())
	assert.Equal(t, 0, f.runs)
}

func TestGenerateReusesFreshOutput(t *testing.T) {
	f := newFixture(t)

	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)
	first := f.signals.String()

	f.signals.Reset()
	res, err := Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)
	assert.True(t, res.Fresh)
	assert.Equal(t, 1, f.runs)
	assert.Equal(t, uint32(402500), res.Version)
	assert.Equal(t, first, f.signals.String())

	// a changed header invalidates the output
	require.NoError(t, os.WriteFile(f.header, []byte("#include <Rversion.h>\n#define X 1\n"), 0644))
	res, err = Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)
	assert.False(t, res.Fresh)
	assert.Equal(t, 2, f.runs)

	f.cfg.Force = true
	_, err = Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)
	assert.Equal(t, 3, f.runs)
}

func TestGenerateSignalWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.opts.Signals = &failingWriter{}

	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.Error(t, err)
	assert.False(t, IsDiscoveryError(err))
	assert.Contains(t, err.Error(), "stdout closed")

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "emit signals", rerr.Op)
	assert.Equal(t, 0, f.runs)

	_, err = metadata.ReadManifest(f.cfg.OutDir)
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateSignalWriteFailureWhenFresh(t *testing.T) {
	f := newFixture(t)
	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)

	// home, link-search and link-lib get through, the replayed markers do not
	f.opts.Signals = &failingWriter{ok: 3}
	_, err = Generate(context.Background(), f.cfg, f.opts)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "emit signals", rerr.Op)
	assert.Equal(t, 1, f.runs)
}

func TestGenerateRegeneratesEditedBindings(t *testing.T) {
	f := newFixture(t)
	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)

	bindings := filepath.Join(f.cfg.OutDir, "bindings.go")
	require.NoError(t, os.WriteFile(bindings, []byte("package rsys\n\nconst R_VERSION = 1\n"), 0644))

	res, err := Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)
	assert.False(t, res.Fresh)
	assert.Equal(t, 2, f.runs)
	assert.Equal(t, uint32(402500), res.Version)

	data, err := os.ReadFile(bindings)
	require.NoError(t, err)
	assert.Equal(t, godefsOutput, string(data))
}

func TestLocate(t *testing.T) {
	f := newFixture(t)
	f.opts.GOOS = "windows"

	paths, desc, err := Locate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)
	assert.Equal(t, "R", desc.Label())
	assert.Equal(t, filepath.Join(f.home, "bin"), paths.Library)
}

func TestLocateUnknownRuntime(t *testing.T) {
	f := newFixture(t)
	f.cfg.Runtime = "cobol"

	_, _, err := Locate(context.Background(), f.cfg, f.opts)
	require.Error(t, err)
	assert.False(t, IsDiscoveryError(err))
}

func TestBundleRoundTrip(t *testing.T) {
	f := newFixture(t)
	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	m, err := Bundle(f.cfg.OutDir, &buf)
	require.NoError(t, err)
	assert.Equal(t, "rsys-402500-x86_64-unknown-linux-gnu.tar.xz", BundleName(m))

	dest := filepath.Join(t.TempDir(), "precomputed")
	restored, err := Unbundle(bytes.NewReader(buf.Bytes()), dest)
	require.NoError(t, err)
	assert.Equal(t, m.BindingsHash, restored.BindingsHash)

	for _, name := range m.Files {
		want, err := os.ReadFile(filepath.Join(f.cfg.OutDir, name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestBundleDetectsTampering(t *testing.T) {
	f := newFixture(t)
	_, err := Generate(context.Background(), f.cfg, f.opts)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(f.cfg.OutDir, "bindings.go"), []byte("package rsys\n"), 0644))

	_, err = Bundle(f.cfg.OutDir, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestBundleWithoutManifest(t *testing.T) {
	_, err := Bundle(t.TempDir(), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoManifest)
}
