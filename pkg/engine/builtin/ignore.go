package builtin

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/leapstack-labs/lintstream/pkg/engine"
)

const defaultIgnoreFile = ".eslintignore"

// ignorer decides which paths an engine instance skips.
type ignorer struct {
	cwd      string
	enabled  bool
	variant  engine.Variant
	patterns []string
}

func newIgnorer(cwd string, variant engine.Variant, opts engine.Options, patterns []string) (*ignorer, error) {
	ig := &ignorer{
		cwd:      cwd,
		enabled:  opts.IgnoreEnabled(),
		variant:  variant,
		patterns: patterns,
	}
	if !ig.enabled || variant == engine.VariantFlat {
		return ig, nil
	}

	file := opts.IgnorePath
	required := file != ""
	if !required {
		file = defaultIgnoreFile
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(cwd, file)
	}
	filePatterns, err := readIgnoreFile(file)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return ig, nil
		}
		return nil, fmt.Errorf("failed to read ignore file: %w", err)
	}
	ig.patterns = append(filePatterns, ig.patterns...)
	return ig, nil
}

func readIgnoreFile(file string) ([]string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// ignored reports whether abs is excluded. Paths outside cwd are never ignored.
func (ig *ignorer) ignored(abs string) bool {
	if !ig.enabled {
		return false
	}
	rel, err := filepath.Rel(ig.cwd, abs)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}

	ignored := ig.ignoredByDefault(rel)
	for _, p := range ig.patterns {
		negate := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(p, "!")
		if matchPattern(p, rel) {
			ignored = !negate
		}
	}
	return ignored
}

func (ig *ignorer) ignoredByDefault(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if seg == "node_modules" {
			return true
		}
		if ig.variant == engine.VariantFlat {
			if seg == ".git" {
				return true
			}
			continue
		}
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

// matchPattern matches rel and each of its parent directories against
// pattern. A trailing slash matches directories only, and a pattern
// without an inner slash matches at any depth.
func matchPattern(pattern, rel string) bool {
	dirOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")
	anchored := strings.Contains(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")
	if pattern == "" {
		return false
	}
	if !anchored {
		pattern = "**/" + pattern
	}

	segs := strings.Split(rel, "/")
	for i := len(segs); i >= 1; i-- {
		if dirOnly && i == len(segs) {
			continue
		}
		if ok, err := doublestar.Match(pattern, strings.Join(segs[:i], "/")); err == nil && ok {
			return true
		}
	}
	return false
}
