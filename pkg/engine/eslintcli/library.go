// Package eslintcli is an engine library that drives an installed eslint
// binary over stdin.
package eslintcli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/leapstack-labs/lintstream/pkg/engine"
)

// Name is the registry name of this library.
const Name = "eslint"

const (
	// flatSince is the first release that accepts flat configuration.
	flatSince = "v8.21.0"
	// eslintrcUntil is the first release without eslintrc support.
	eslintrcUntil = "v10.0.0"
)

// ErrNotFound is returned when no eslint binary can be located.
var ErrNotFound = errors.New("eslint executable not found")

func init() {
	engine.Register(Name, func(ctx context.Context, logger *slog.Logger) (engine.Library, error) {
		return Open(ctx, WithLogger(logger))
	})
}

// Library is an installed eslint at a known version.
type Library struct {
	binary  string
	version string
	cwd     string
	timeout time.Duration
	run     runner
	logger  *slog.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBinary uses the given eslint executable instead of searching for one.
func WithBinary(path string) Option {
	return func(l *Library) {
		l.binary = path
	}
}

// WithWorkingDir sets where the binary is searched for and run from.
func WithWorkingDir(dir string) Option {
	return func(l *Library) {
		l.cwd = dir
	}
}

// WithTimeout bounds each eslint invocation.
func WithTimeout(d time.Duration) Option {
	return func(l *Library) {
		l.timeout = d
	}
}

func withRunner(r runner) Option {
	return func(l *Library) {
		l.run = r
	}
}

// Open locates eslint and reads its version.
func Open(ctx context.Context, opts ...Option) (*Library, error) {
	l := &Library{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.run == nil {
		l.run = execRunner(l.timeout)
	}
	if l.cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		l.cwd = wd
	}
	if l.binary == "" {
		bin, err := findBinary(l.cwd)
		if err != nil {
			return nil, err
		}
		l.binary = bin
	}

	out, err := l.run(ctx, command{Binary: l.binary, Args: []string{"--version"}, Dir: l.cwd})
	if err != nil {
		return nil, fmt.Errorf("failed to read eslint version: %w", err)
	}
	version, err := parseVersion(string(out))
	if err != nil {
		return nil, err
	}
	l.version = version

	l.logger.Debug("eslint library opened",
		slog.String("binary", l.binary),
		slog.String("version", version))
	return l, nil
}

// findBinary prefers a project-local install over PATH.
func findBinary(cwd string) (string, error) {
	local := filepath.Join(cwd, "node_modules", ".bin", "eslint")
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return local, nil
	}
	bin, err := exec.LookPath("eslint")
	if err != nil {
		return "", fmt.Errorf("%w: install eslint in %s or on PATH", ErrNotFound, cwd)
	}
	return bin, nil
}

// parseVersion normalizes `eslint --version` output to a semver string.
func parseVersion(out string) (string, error) {
	v := strings.TrimSpace(out)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("unrecognized eslint version %q", strings.TrimSpace(out))
	}
	return semver.Canonical(v), nil
}

func (l *Library) Name() string { return Name }

// Version returns the canonical semver of the installed eslint.
func (l *Library) Version() string { return l.version }

// Supports reports whether this eslint version provides variant v.
func (l *Library) Supports(v engine.Variant) bool {
	switch v {
	case engine.VariantFlat:
		return semver.Compare(l.version, flatSince) >= 0
	case engine.VariantESLintrc:
		return semver.Compare(l.version, eslintrcUntil) < 0
	default:
		return false
	}
}

// Constructor implements engine.Library.
func (l *Library) Constructor(v engine.Variant) (engine.Constructor, bool) {
	if !l.Supports(v) {
		return nil, false
	}
	return func(_ context.Context, opts map[string]any) (engine.Engine, error) {
		return newEngine(l, v, opts)
	}, true
}
