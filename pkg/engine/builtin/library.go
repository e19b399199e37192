// Package builtin is an in-process engine library that parses JavaScript and
// TypeScript with esbuild and runs a small set of core rules.
package builtin

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/lintstream/pkg/engine"
)

// Name is the registry name of this library.
const Name = "builtin"

// Version is reported to the organizer for variant gating.
const Version = "1.0.0"

func init() {
	engine.Register(Name, func(_ context.Context, logger *slog.Logger) (engine.Library, error) {
		return NewLibrary(logger), nil
	})
}

// Library provides builtin engines for both configuration variants.
type Library struct {
	logger *slog.Logger
}

// NewLibrary creates the builtin library. The logger may be nil.
func NewLibrary(logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{logger: logger}
}

func (l *Library) Name() string    { return Name }
func (l *Library) Version() string { return Version }

// Constructor implements engine.Library.
func (l *Library) Constructor(v engine.Variant) (engine.Constructor, bool) {
	if !v.Valid() {
		return nil, false
	}
	return func(_ context.Context, opts map[string]any) (engine.Engine, error) {
		return NewEngine(v, opts, l.logger)
	}, true
}
