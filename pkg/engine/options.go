package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// Options is the typed view of organized engine options.
// Decoded from the organizer's engine option map using mapstructure.
type Options struct {
	// Cwd is the engine working directory (default: process working directory).
	Cwd string `mapstructure:"cwd"`

	// Fix enables fix mode: a bool, or a predicate selecting which fixes apply.
	Fix any `mapstructure:"fix"`

	// FixTypes limits fixes to rule types such as "problem" or "layout".
	FixTypes []string `mapstructure:"fixTypes"`

	// OverrideConfigFile is a configuration file applied over resolved configuration.
	OverrideConfigFile string `mapstructure:"overrideConfigFile"`

	// OverrideConfig is a configuration object (eslintrc) or a list of
	// configuration objects (flat) applied last.
	OverrideConfig any `mapstructure:"overrideConfig"`

	// BaseConfig is applied before any resolved configuration.
	BaseConfig any `mapstructure:"baseConfig"`

	// UseEslintrc disables cascading configuration lookup when false (eslintrc only).
	UseEslintrc *bool `mapstructure:"useEslintrc"`

	// Ignore disables all ignore handling when false.
	Ignore *bool `mapstructure:"ignore"`

	// IgnorePath is an ignore file used instead of the default one.
	IgnorePath string `mapstructure:"ignorePath"`

	// IgnorePatterns are additional ignore patterns (flat only; eslintrc keeps
	// them in OverrideConfig).
	IgnorePatterns []string `mapstructure:"ignorePatterns"`

	// Plugins maps plugin names to implementations.
	Plugins map[string]any `mapstructure:"plugins"`

	ResolvePluginsRelativeTo      string   `mapstructure:"resolvePluginsRelativeTo"`
	RulePaths                     []string `mapstructure:"rulePaths"`
	AllowInlineConfig             *bool    `mapstructure:"allowInlineConfig"`
	ReportUnusedDisableDirectives string   `mapstructure:"reportUnusedDisableDirectives"`
}

// DecodeOptions decodes an engine option map. Unknown keys are an error.
func DecodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &opts,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return opts, fmt.Errorf("failed to create options decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("invalid engine options: %w", err)
	}
	return opts, nil
}

// ResolveCwd returns the absolute working directory for opts.
func (o Options) ResolveCwd() (string, error) {
	cwd := o.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to resolve cwd %q: %w", cwd, err)
	}
	return abs, nil
}

// IgnoreEnabled reports whether ignore handling is on (the default).
func (o Options) IgnoreEnabled() bool {
	return o.Ignore == nil || *o.Ignore
}

// OverrideConfigs returns OverrideConfig as a list of configuration objects.
func (o Options) OverrideConfigs() []map[string]any {
	return configObjects(o.OverrideConfig)
}

// BaseConfigs returns BaseConfig as a list of configuration objects.
func (o Options) BaseConfigs() []map[string]any {
	return configObjects(o.BaseConfig)
}

func configObjects(v any) []map[string]any {
	switch c := v.(type) {
	case map[string]any:
		return []map[string]any{c}
	case []map[string]any:
		return c
	case []any:
		out := make([]map[string]any, 0, len(c))
		for _, item := range c {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// FixEnabled reports whether a fix-mode selector turns fixing on.
func FixEnabled(selector any) bool {
	switch f := selector.(type) {
	case nil:
		return false
	case bool:
		return f
	case func(lint.Message) bool:
		return f != nil
	case lint.Predicate:
		return f != nil
	default:
		return false
	}
}

// FixPredicate returns the predicate selecting which fixes apply, or nil
// when fix mode is off.
func FixPredicate(selector any) lint.Predicate {
	switch f := selector.(type) {
	case bool:
		if f {
			return func(lint.Message) bool { return true }
		}
	case func(lint.Message) bool:
		if f != nil {
			return f
		}
	case lint.Predicate:
		return f
	}
	return nil
}

// =============================================================================
// Option helpers
// =============================================================================

// GetOption extracts a typed option with a default value.
func GetOption[T any](opts map[string]any, key string, defaultVal T) T {
	if opts == nil {
		return defaultVal
	}
	v, ok := opts[key]
	if !ok {
		return defaultVal
	}
	if typed, ok := v.(T); ok {
		return typed
	}
	return defaultVal
}

// GetMapOption extracts a nested object option.
func GetMapOption(opts map[string]any, key string) map[string]any {
	return GetOption[map[string]any](opts, key, nil)
}

// GetStringSliceOption extracts a string slice option, accepting []any from
// decoded JSON or YAML.
func GetStringSliceOption(opts map[string]any, key string) []string {
	if opts == nil {
		return nil
	}
	switch s := opts[key].(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		return []string{s}
	default:
		return nil
	}
}
