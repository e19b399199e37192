package options

import (
	"strings"
)

// Container is where a migrated option is written.
type Container int

// Migration targets.
const (
	// TopLevel writes into the engine options themselves.
	TopLevel Container = iota
	// OverrideConfig writes into the engine options' overrideConfig object.
	OverrideConfig
	// Adapter writes into the adapter-only options, never the engine.
	Adapter
)

func (c Container) qualify(name string) string {
	if c == OverrideConfig {
		return "overrideConfig." + name
	}
	return name
}

// Transform rewrites a migrated value. A nil result writes nothing.
type Transform func(option string, v any) (any, error)

// Rule migrates one deprecated option.
type Rule struct {
	Source    string
	Target    string
	Container Container
	Transform Transform

	// Applies restricts the rule to some value shapes. Values it rejects
	// stay where they are.
	Applies func(v any) bool

	// Unlogged renames produce no migration entry unless the organizer is
	// configured to report them.
	Unlogged bool
}

// LegacyRules are applied in order when the eslintrc variant is selected.
var LegacyRules = []Rule{
	{Source: "configFile", Target: "overrideConfigFile", Container: TopLevel, Unlogged: true},
	{Source: "envs", Target: "env", Container: OverrideConfig, Transform: BooleanMap(true)},
	{Source: "extends", Target: "extends", Container: OverrideConfig},
	{Source: "globals", Target: "globals", Container: OverrideConfig, Transform: BooleanMap(false)},
	{Source: "ignorePattern", Target: "ignorePatterns", Container: OverrideConfig},
	{Source: "parser", Target: "parser", Container: OverrideConfig},
	{Source: "parserOptions", Target: "parserOptions", Container: OverrideConfig},
	{Source: "plugins", Target: "plugins", Container: OverrideConfig, Applies: isList},
	{Source: "rules", Target: "rules", Container: OverrideConfig},
	{Source: "warnFileIgnored", Target: "warnIgnored", Container: Adapter},
}

// deniedKeys are never inserted into generated mappings.
var deniedKeys = map[string]bool{
	"__proto__": true,
}

// BooleanMap converts a list of "name" or "name:true|false" entries into a
// name-to-bool mapping. Bare names map to defaultValue. Falsy values and
// empty lists produce nothing.
func BooleanMap(defaultValue bool) Transform {
	return func(option string, v any) (any, error) {
		if !truthy(v) {
			return nil, nil
		}
		list, ok := asList(v)
		if !ok {
			return nil, invalidOption(option, "Option %s must be an array", option)
		}
		if len(list) == 0 {
			return nil, nil
		}

		out := make(map[string]any, len(list))
		for _, entry := range list {
			s, ok := entry.(string)
			if !ok {
				return nil, invalidOption(option, "Option %s must be an array of strings", option)
			}
			parts := strings.Split(s, ":")
			key := parts[0]
			if deniedKeys[key] {
				continue
			}
			value := defaultValue
			if len(parts) > 1 {
				value = parts[1] == "true"
			}
			out[key] = value
		}
		return out, nil
	}
}

func isList(v any) bool {
	_, ok := asList(v)
	return ok
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
