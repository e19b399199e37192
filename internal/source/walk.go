// Package source turns command-line paths into pipeline files, once or
// continuously as they change.
package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/lintstream/pkg/vfile"
)

// DefaultExtensions are linted when walking directories.
var DefaultExtensions = []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx"}

// skippedDirs are never descended into.
var skippedDirs = []string{".git", "node_modules"}

// Walker expands paths into files.
type Walker struct {
	// Cwd resolves relative paths.
	Cwd string
	// Extensions filters files found in directories. Files named
	// explicitly are always included.
	Extensions []string
}

// NewWalker creates a Walker. Empty extensions select DefaultExtensions.
func NewWalker(cwd string, extensions []string) *Walker {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, strings.ToLower(ext))
	}
	return &Walker{Cwd: cwd, Extensions: normalized}
}

// Matches reports whether path has a selected extension.
func (w *Walker) Matches(path string) bool {
	return slices.Contains(w.Extensions, strings.ToLower(filepath.Ext(path)))
}

// Skipped reports whether path lies in a directory that is never walked.
func Skipped(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if slices.Contains(skippedDirs, seg) {
			return true
		}
	}
	return false
}

// skipped reports whether abs lies in a skipped directory below Cwd.
func (w *Walker) skipped(abs string) bool {
	rel, err := filepath.Rel(w.Cwd, abs)
	if err != nil {
		return Skipped(abs)
	}
	return Skipped(rel)
}

func (w *Walker) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(w.Cwd, path)
}

// Walk calls fn with each file under paths, in lexical order per path.
// A directory's files use the directory as their base; a file's base is
// its parent.
func (w *Walker) Walk(ctx context.Context, paths []string, fn func(*vfile.File) error) error {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		root := w.abs(p)
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			f, err := vfile.Read(w.Cwd, filepath.Dir(root), root)
			if err != nil {
				return err
			}
			if err := fn(f); err != nil {
				return err
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				if path != root && slices.Contains(skippedDirs, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !w.Matches(path) {
				return nil
			}
			f, err := vfile.Read(w.Cwd, root, path)
			if err != nil {
				return err
			}
			return fn(f)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Collect returns every file under paths.
func (w *Walker) Collect(ctx context.Context, paths []string) ([]*vfile.File, error) {
	var files []*vfile.File
	err := w.Walk(ctx, paths, func(f *vfile.File) error {
		files = append(files, f)
		return nil
	})
	return files, err
}

// Source returns a pipeline source emitting the files under paths.
func (w *Walker) Source(paths []string) func(ctx context.Context, out chan<- *vfile.File) error {
	return func(ctx context.Context, out chan<- *vfile.File) error {
		err := w.Walk(ctx, paths, func(f *vfile.File) error {
			select {
			case out <- f:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			return err
		}
		close(out)
		return nil
	}
}
