package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/lintstream/internal/testutil"
	"github.com/leapstack-labs/lintstream/pkg/vfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func relPaths(t *testing.T, root string, files []*vfile.File) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalker_Collect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.js":                      "b",
		"a.ts":                      "a",
		"readme.md":                 "#",
		"src/c.jsx":                 "c",
		"src/nested/d.mjs":          "d",
		"node_modules/pkg/index.js": "x",
		".git/hooks/pre-commit.js":  "x",
		"src/node_modules/e.js":     "x",
	})

	tests := []struct {
		name  string
		exts  []string
		paths []string
		want  []string
	}{
		{
			name: "defaults",
			want: []string{"a.ts", "b.js", "src/c.jsx", "src/nested/d.mjs"},
		},
		{
			name: "extension filter",
			exts: []string{"js", ".MJS"},
			want: []string{"b.js", "src/nested/d.mjs"},
		},
		{
			name:  "explicit file ignores extensions",
			paths: []string{"readme.md", "src"},
			want:  []string{"readme.md", "src/c.jsx", "src/nested/d.mjs"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWalker(root, tt.exts)
			files, err := w.Collect(context.Background(), tt.paths)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relPaths(t, root, files))
		})
	}
}

func TestWalker_Base(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/lib/a.js": "a"})
	w := NewWalker(root, nil)

	files, err := w.Collect(context.Background(), []string{"src"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "src"), files[0].Base)
	assert.Equal(t, filepath.Join("lib", "a.js"), files[0].Relative())
	assert.Equal(t, "a", string(files[0].Contents))

	files, err = w.Collect(context.Background(), []string{"src/lib/a.js"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.js", files[0].Relative())
}

func TestWalker_MissingPath(t *testing.T) {
	w := NewWalker(t.TempDir(), nil)
	_, err := w.Collect(context.Background(), []string{"nope"})
	assert.ErrorContains(t, err, "failed to stat nope")
}

func TestWalker_Source(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "a", "b.js": "b"})
	w := NewWalker(root, nil)

	out := make(chan *vfile.File, 4)
	require.NoError(t, w.Source(nil)(context.Background(), out))

	var got []*vfile.File
	for f := range out {
		got = append(got, f)
	}
	assert.Equal(t, []string{"a.js", "b.js"}, relPaths(t, root, got))
}

func TestSkipped(t *testing.T) {
	assert.True(t, Skipped("node_modules/a.js"))
	assert.True(t, Skipped("src/.git/x.js"))
	assert.False(t, Skipped("src/.github/x.js"))
	assert.False(t, Skipped("src/a.js"))
}

func TestWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.js": "a"})

	w := NewWatcher(NewWalker(root, nil), 20*time.Millisecond, testutil.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, nil, func(_ context.Context, changed []string) error {
			changes <- changed
			return nil
		})
	}()

	// Give the watcher time to register directories.
	time.Sleep(100 * time.Millisecond)
	writeTree(t, root, map[string]string{"src/a.js": "changed", "src/notes.txt": "x"})

	select {
	case changed := <-changes:
		assert.Equal(t, []string{filepath.Join(root, "src", "a.js")}, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
