// pkg/archive/archive_test.go
package archive

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/rsys/pkg/backend"
)

var sample = []backend.File{
	{Name: "bindings.go", Data: []byte("package rsys\n\nconst R_VERSION = 402500\n")},
	{Name: "zcgo_link.go", Data: []byte("package rsys\n")},
}

func TestNarHash(t *testing.T) {
	h1, err := NarHash(sample)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h1, "sha256-"), h1)

	reversed := []backend.File{sample[1], sample[0]}
	h2, err := NarHash(reversed)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := []backend.File{sample[0], {Name: "zcgo_link.go", Data: []byte("package other\n")}}
	h3, err := NarHash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestTarXzRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTarXz(&buf, "rsys-402500-x86_64-unknown-linux-gnu", sample))

	files, err := ReadTarXz(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, sample, files)

	// deterministic output
	var again bytes.Buffer
	require.NoError(t, WriteTarXz(&again, "rsys-402500-x86_64-unknown-linux-gnu", sample))
	assert.Equal(t, buf.Bytes(), again.Bytes())
}

func TestReadTarXzGarbage(t *testing.T) {
	_, err := ReadTarXz(strings.NewReader("not an archive"))
	assert.Error(t, err)
}

func TestReadTarXzRejectsNestedPaths(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTarXz(&buf, "rsys", []backend.File{{Name: "sub/bindings.go", Data: []byte("package rsys\n")}}))

	_, err := ReadTarXz(bytes.NewReader(buf.Bytes()))
	assert.ErrorContains(t, err, "unexpected entry")
}
