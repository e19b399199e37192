// Package formatter renders lint results as text.
//
// A Formatter receives the results of a run and a Context exposing the
// working directory and the rule metadata of the engine that produced the
// results. Rule metadata is loaded on first use and memoized, so formatters
// that never look at it never pay for it.
//
// Builtin formatters register themselves by name:
//
//	f, err := formatter.Lookup("stylish")
//	out, err := f.Format(results, formatter.NewContext(cwd, nil))
package formatter

import (
	"sync"

	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// Formatter renders a result list.
type Formatter interface {
	Format(results []*lint.Result, ctx *Context) (string, error)
}

// Func adapts a plain function to a Formatter.
type Func func(results []*lint.Result, ctx *Context) (string, error)

// Format calls f.
func (f Func) Format(results []*lint.Result, ctx *Context) (string, error) {
	return f(results, ctx)
}

// MetaLoader fetches rule metadata from an engine.
type MetaLoader func() (lint.RulesMeta, error)

// Context is passed to every Format call.
type Context struct {
	// Cwd is the working directory of the engine that produced the results.
	Cwd string

	load MetaLoader
	once sync.Once
	meta lint.RulesMeta
	err  error
}

// NewContext returns a Context whose RulesMeta calls load at most once.
// A nil load yields empty metadata.
func NewContext(cwd string, load MetaLoader) *Context {
	return &Context{Cwd: cwd, load: load}
}

// RulesMeta returns the memoized rule metadata.
func (c *Context) RulesMeta() (lint.RulesMeta, error) {
	c.once.Do(func() {
		if c.load == nil {
			c.meta = lint.RulesMeta{}
			return
		}
		c.meta, c.err = c.load()
		if c.meta == nil && c.err == nil {
			c.meta = lint.RulesMeta{}
		}
	})
	return c.meta, c.err
}
