// pkg/env/locate_test.go
package env

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/rsys/pkg/registry"
)

func loadR(t *testing.T) *registry.Descriptor {
	t.Helper()
	d, err := registry.New("").Load("r")
	require.NoError(t, err)
	return d
}

func envWith(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func noProbe(t *testing.T) Runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatalf("unexpected subprocess %s %v", name, args)
		return nil, nil
	}
}

func TestLocateFromHomeVariable(t *testing.T) {
	cases := []struct {
		goos    string
		library string
	}{
		{"linux", "/opt/foo/lib"},
		{"darwin", "/opt/foo/lib"},
		{"windows", "/opt/foo/bin"},
	}

	for _, tc := range cases {
		t.Run(tc.goos, func(t *testing.T) {
			l := NewLocator(loadR(t))
			l.GOOS = tc.goos
			l.LookupEnv = envWith(map[string]string{"R_HOME": "/opt/foo"})
			l.Run = noProbe(t)

			paths, err := l.Locate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "/opt/foo", paths.Home)
			assert.Equal(t, filepath.FromSlash("/opt/foo/include"), paths.Include)
			assert.Equal(t, filepath.FromSlash(tc.library), paths.Library)
			assert.Equal(t, StrategyEnv, paths.Strategy)
		})
	}
}

func TestLocateProbeFallback(t *testing.T) {
	for _, goos := range []string{"linux", "windows"} {
		t.Run(goos, func(t *testing.T) {
			var gotName string
			var gotArgs []string

			l := NewLocator(loadR(t))
			l.GOOS = goos
			l.LookupEnv = envWith(nil)
			l.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
				gotName, gotArgs = name, args
				return []byte("/usr/lib/R\n/usr/share/R/include\n/usr/lib/R/lib\n"), nil
			}

			paths, err := l.Locate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "R", gotName)
			require.Len(t, gotArgs, 3)
			if goos == "windows" {
				assert.Contains(t, gotArgs[2], "R.home('bin')")
			} else {
				assert.Contains(t, gotArgs[2], "R.home('lib')")
			}
			assert.Equal(t, StrategyProbe, paths.Strategy)
		})
	}
}

func TestLocateEmptyHomeIsUnset(t *testing.T) {
	probed := false
	l := NewLocator(loadR(t))
	l.LookupEnv = envWith(map[string]string{"R_HOME": ""})
	l.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		probed = true
		return []byte("a\nb\nc\n"), nil
	}

	_, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.True(t, probed)
}

func TestLocateProbeFailure(t *testing.T) {
	l := NewLocator(loadR(t))
	l.LookupEnv = envWith(nil)
	l.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("executable file not found in $PATH")
	}

	_, err := l.Locate(context.Background())
	require.Error(t, err)

	var derr *DiscoveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "R", derr.Runtime)
	assert.Equal(t, StrategyProbe, derr.Strategy)
	assert.ErrorIs(t, err, ErrProbeFailed)
}

func TestLocateShortProbeOutput(t *testing.T) {
	cases := []struct {
		out  string
		want error
	}{
		{"", ErrHomeNotFound},
		{"/usr/lib/R\n", ErrIncludeNotFound},
		{"/usr/lib/R\n/usr/share/R/include\n", ErrLibraryNotFound},
	}

	for _, tc := range cases {
		l := NewLocator(loadR(t))
		l.LookupEnv = envWith(nil)
		l.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte(tc.out), nil
		}

		_, err := l.Locate(context.Background())
		var derr *DiscoveryError
		require.ErrorAs(t, err, &derr, "output %q", tc.out)
		assert.ErrorIs(t, err, tc.want, "output %q", tc.out)
	}
}

func TestParseProbeOutput(t *testing.T) {
	cases := []struct {
		name string
		out  string
		want *InstallationPaths
		err  error
	}{
		{
			name: "unix",
			out:  "/usr/lib/R\n/usr/lib/R/include\n/usr/lib/R/lib\n",
			want: &InstallationPaths{Home: "/usr/lib/R", Include: "/usr/lib/R/include", Library: "/usr/lib/R/lib"},
		},
		{
			name: "no trailing newline",
			out:  "/a\n/b\n/c",
			want: &InstallationPaths{Home: "/a", Include: "/b", Library: "/c"},
		},
		{
			name: "crlf",
			out:  "C:/R\r\nC:/R/include\r\nC:/R/bin\r\n",
			want: &InstallationPaths{Home: "C:/R", Include: "C:/R/include", Library: "C:/R/bin"},
		},
		{
			name: "spaces kept",
			out:  "/opt/my R\n/opt/my R/include \n/opt/my R/lib\n",
			want: &InstallationPaths{Home: "/opt/my R", Include: "/opt/my R/include ", Library: "/opt/my R/lib"},
		},
		{
			name: "extra lines ignored",
			out:  "/a\n/b\n/c\n/d\n",
			want: &InstallationPaths{Home: "/a", Include: "/b", Library: "/c"},
		},
		{name: "empty", out: "", err: ErrHomeNotFound},
		{name: "one line", out: "/a\n", err: ErrIncludeNotFound},
		{name: "two lines", out: "/a\n/b", err: ErrLibraryNotFound},
		{name: "blank include", out: "/a\n\n/c\n", err: ErrIncludeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseProbeOutput([]byte(tc.out))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			tc.want.Strategy = StrategyProbe
			assert.Equal(t, tc.want, got)
		})
	}
}

// A fake R executable on PATH stands in for a real installation.
func TestLocateWithFakeExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script executable")
	}

	bin := t.TempDir()
	script := "#!/bin/sh\nprintf '/usr/lib/R\\n/usr/lib/R/include\\n/usr/lib/R/lib\\n'\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, "R"), []byte(script), 0755))

	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("R_HOME", "")
	os.Unsetenv("R_HOME")

	paths, err := NewLocator(loadR(t)).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/R", paths.Home)
	assert.Equal(t, "/usr/lib/R/include", paths.Include)
	assert.Equal(t, "/usr/lib/R/lib", paths.Library)
}

func TestLocateFakeExecutableFails(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script executable")
	}

	bin := t.TempDir()
	script := "#!/bin/sh\necho 'Fatal error: R home directory is not defined' >&2\nexit 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, "R"), []byte(script), 0755))

	t.Setenv("PATH", bin)
	t.Setenv("R_HOME", "")
	os.Unsetenv("R_HOME")

	_, err := NewLocator(loadR(t)).Locate(context.Background())
	require.ErrorIs(t, err, ErrProbeFailed)
	assert.Contains(t, err.Error(), "R home directory is not defined")
}

func TestFlags(t *testing.T) {
	p := &InstallationPaths{Home: "/r", Include: "/r/include", Library: "/r/lib"}
	f := p.Flags("R")
	assert.Equal(t, []string{"-I/r/include"}, f.CFlags())
	assert.Equal(t, []string{"-L/r/lib", "-lR"}, f.LDFlags())
}

func TestFindSharedLibrary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libR.so.4"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "R.dll"), nil, 0644))

	lib := FindSharedLibrary(dir, "R", "linux")
	require.NotNil(t, lib)
	assert.Equal(t, filepath.Join(dir, "libR.so.4"), lib.Path)
	assert.Equal(t, "4", lib.Version)

	lib = FindSharedLibrary(dir, "R", "windows")
	require.NotNil(t, lib)
	assert.Equal(t, filepath.Join(dir, "R.dll"), lib.Path)

	assert.Nil(t, FindSharedLibrary(dir, "R", "darwin"))
}
