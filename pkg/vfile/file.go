// Package vfile is the in-memory file representation that flows through a
// lint pipeline.
package vfile

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// File is a file in a pipeline. Stages mutate it in place.
//
// Exactly one of Contents and Stream is set for regular files; neither is set
// for directories and placeholders.
type File struct {
	// Cwd is the working directory the file was resolved against.
	Cwd string
	// Base is the directory Relative is computed from.
	Base string
	// Path is the absolute path, the file's identity.
	Path string
	// Mode is the file mode when read from disk.
	Mode fs.FileMode

	Contents []byte
	Stream   io.Reader

	// LintResult is attached by the lint stage.
	LintResult *lint.Result
	// Binding identifies the engine that produced LintResult.
	Binding *engine.Binding
}

// New creates a buffered file. path is made absolute against cwd.
func New(cwd, base, path string, contents []byte) *File {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	if base == "" {
		base = filepath.Dir(path)
	} else if !filepath.IsAbs(base) {
		base = filepath.Join(cwd, base)
	}
	return &File{
		Cwd:      cwd,
		Base:     base,
		Path:     filepath.Clean(path),
		Mode:     0o644,
		Contents: contents,
	}
}

// Read loads path from disk. Directories become placeholders without contents.
func Read(cwd, base, path string) (*File, error) {
	f := New(cwd, base, path, nil)
	info, err := os.Stat(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", f.Path, err)
	}
	f.Mode = info.Mode()
	if info.IsDir() {
		return f, nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	f.Contents = data
	return f, nil
}

// IsNull reports whether the file has no contents at all.
func (f *File) IsNull() bool {
	return f.Contents == nil && f.Stream == nil
}

// IsStream reports whether the contents are an unread stream.
func (f *File) IsStream() bool {
	return f.Stream != nil
}

// IsDirectory reports whether the file is a directory placeholder.
func (f *File) IsDirectory() bool {
	return f.Mode.IsDir()
}

// Relative returns Path relative to Base.
func (f *File) Relative() string {
	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil {
		return filepath.Base(f.Path)
	}
	return rel
}

func (f *File) String() string {
	return fmt.Sprintf("<File %q>", f.Relative())
}
