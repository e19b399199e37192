package vfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	f := New("/work", "src", "src/lib/a.js", []byte("x"))
	assert.Equal(t, filepath.FromSlash("/work/src/lib/a.js"), f.Path)
	assert.Equal(t, filepath.FromSlash("/work/src"), f.Base)
	assert.Equal(t, filepath.FromSlash("lib/a.js"), f.Relative())
	assert.False(t, f.IsNull())
	assert.False(t, f.IsStream())
	assert.False(t, f.IsDirectory())
	assert.Equal(t, `<File "`+filepath.FromSlash("lib/a.js")+`">`, f.String())

	noBase := New("/work", "", "a.js", nil)
	assert.Equal(t, filepath.FromSlash("/work"), noBase.Base)
	assert.True(t, noBase.IsNull())
}

func TestStreamFile(t *testing.T) {
	f := New("/work", "", "a.js", nil)
	f.Stream = strings.NewReader("x = 1;")
	assert.True(t, f.IsStream())
	assert.False(t, f.IsNull())
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "a.js"), []byte("var a = 1;\n"), 0o644))

	f, err := Read(dir, dir, "sub/a.js")
	require.NoError(t, err)
	assert.Equal(t, "var a = 1;\n", string(f.Contents))
	assert.Equal(t, filepath.Join("sub", "a.js"), f.Relative())

	d, err := Read(dir, dir, "sub")
	require.NoError(t, err)
	assert.True(t, d.IsDirectory())
	assert.True(t, d.IsNull())

	_, err = Read(dir, dir, "missing.js")
	assert.Error(t, err)
}
