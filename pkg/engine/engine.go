// Package engine defines the contract between lint pipeline stages and the
// linting engine they delegate to.
//
// An engine implementation ships as a Library, which can construct Engine
// instances for the configuration variants it supports. Libraries register
// a Factory under a name from init():
//
//	func init() {
//		engine.Register("builtin", factory)
//	}
//
// Pipeline stages only call the four Engine methods and never invoke one
// Engine concurrently.
package engine

import (
	"context"

	"github.com/leapstack-labs/lintstream/pkg/formatter"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// Variant selects how an engine resolves its configuration.
type Variant string

// Configuration variants.
const (
	// VariantESLintrc is the legacy cascading configuration style.
	VariantESLintrc Variant = "eslintrc"
	// VariantFlat is the flat configuration style.
	VariantFlat Variant = "flat"
)

// DefaultVariant is used when no variant is requested.
const DefaultVariant = VariantESLintrc

// Valid reports whether v names a known variant.
func (v Variant) Valid() bool {
	return v == VariantESLintrc || v == VariantFlat
}

// LintTextOptions are passed with every LintText call.
type LintTextOptions struct {
	// FilePath is the absolute path the text was read from.
	FilePath string
}

// Engine is a configured linting engine instance.
type Engine interface {
	// IsPathIgnored reports whether the engine's ignore rules exclude path.
	IsPathIgnored(ctx context.Context, path string) (bool, error)

	// LintText lints code and returns exactly one result. When fix mode is
	// enabled the result carries the corrected text in Output.
	LintText(ctx context.Context, code string, opts LintTextOptions) ([]*lint.Result, error)

	// LoadFormatter resolves a formatter by name. "" selects the engine default.
	LoadFormatter(ctx context.Context, name string) (formatter.Formatter, error)

	// RulesMetaForResults returns metadata for the rules mentioned in results.
	RulesMetaForResults(ctx context.Context, results []*lint.Result) (lint.RulesMeta, error)
}

// Constructor builds an Engine from organized engine options.
type Constructor func(ctx context.Context, opts map[string]any) (Engine, error)

// Library is an engine implementation at a specific version.
type Library interface {
	Name() string
	Version() string

	// Constructor returns the constructor for v, or false when this version
	// of the library does not provide that variant.
	Constructor(v Variant) (Constructor, bool)
}
