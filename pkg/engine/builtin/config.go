package builtin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/lint"
	"gopkg.in/yaml.v3"
)

// config is the resolved configuration of one engine instance.
type config struct {
	severities     map[string]lint.Severity
	globals        map[string]bool
	ignorePatterns []string
}

var builtinGlobals = []string{
	"Array", "ArrayBuffer", "BigInt", "Boolean", "DataView", "Date", "Error", "EvalError",
	"Function", "Infinity", "Intl", "JSON", "Map", "Math", "NaN", "Number", "Object",
	"Promise", "Proxy", "RangeError", "ReferenceError", "Reflect", "RegExp", "Set", "String",
	"Symbol", "SyntaxError", "TypeError", "URIError", "Uint8Array", "WeakMap", "WeakSet",
	"decodeURI", "decodeURIComponent", "encodeURI", "encodeURIComponent", "eval",
	"globalThis", "isFinite", "isNaN", "parseFloat", "parseInt", "undefined",
}

var envGlobals = map[string][]string{
	"browser": {
		"alert", "clearInterval", "clearTimeout", "console", "document", "fetch", "localStorage",
		"location", "navigator", "requestAnimationFrame", "sessionStorage", "setInterval", "setTimeout", "window",
	},
	"node": {
		"Buffer", "__dirname", "__filename", "clearImmediate", "clearInterval", "clearTimeout", "console",
		"exports", "global", "module", "process", "require", "setImmediate", "setInterval", "setTimeout",
	},
	"es6": {},
}

func newConfig() *config {
	c := &config{
		severities: map[string]lint.Severity{},
		globals:    map[string]bool{},
	}
	for _, g := range builtinGlobals {
		c.globals[g] = true
	}
	return c
}

// resolveConfig merges base config, override config file and override config,
// in that order.
func resolveConfig(variant engine.Variant, opts engine.Options, cwd string) (*config, error) {
	c := newConfig()

	layers := opts.BaseConfigs()
	if opts.OverrideConfigFile != "" {
		fileLayers, err := loadConfigFile(opts.OverrideConfigFile, cwd)
		if err != nil {
			return nil, err
		}
		layers = append(layers, fileLayers...)
	}
	layers = append(layers, opts.OverrideConfigs()...)

	for _, layer := range layers {
		if err := c.apply(variant, layer); err != nil {
			return nil, err
		}
	}
	if variant == engine.VariantFlat {
		c.ignorePatterns = append(c.ignorePatterns, opts.IgnorePatterns...)
	}
	return c, nil
}

func (c *config) apply(variant engine.Variant, layer map[string]any) error {
	if extendsRecommended(layer["extends"]) {
		for _, id := range ruleIDs() {
			if rules[id].recommended {
				c.severities[id] = lint.SeverityError
			}
		}
	}

	for id, v := range engine.GetMapOption(layer, "rules") {
		sev, ok := lint.ParseSeverity(v)
		if !ok {
			return fmt.Errorf("configuration for rule %q is invalid: severity should be one of 0, 1, 2, \"off\", \"warn\", \"error\"", id)
		}
		c.severities[id] = sev
	}

	switch variant {
	case engine.VariantFlat:
		languageOptions := engine.GetMapOption(layer, "languageOptions")
		c.addGlobals(engine.GetMapOption(languageOptions, "globals"))
		c.ignorePatterns = append(c.ignorePatterns, engine.GetStringSliceOption(layer, "ignores")...)
	default:
		for env, on := range engine.GetMapOption(layer, "env") {
			if b, ok := on.(bool); ok && b {
				for _, g := range envGlobals[env] {
					c.globals[g] = true
				}
			}
		}
		c.addGlobals(engine.GetMapOption(layer, "globals"))
		c.ignorePatterns = append(c.ignorePatterns, engine.GetStringSliceOption(layer, "ignorePatterns")...)
	}
	return nil
}

// addGlobals accepts bool values and the "readonly"/"writable"/"off" forms.
func (c *config) addGlobals(globals map[string]any) {
	for name, v := range globals {
		switch t := v.(type) {
		case bool:
			c.globals[name] = true
		case string:
			c.globals[name] = t != "off"
		default:
			c.globals[name] = true
		}
	}
}

func extendsRecommended(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "eslint:recommended"
	case []any:
		for _, item := range t {
			if extendsRecommended(item) {
				return true
			}
		}
	case []string:
		for _, item := range t {
			if item == "eslint:recommended" {
				return true
			}
		}
	}
	return false
}

// loadConfigFile reads a JSON or YAML configuration file. A top-level list
// yields one layer per element.
func loadConfigFile(path, cwd string) ([]map[string]any, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	switch t := doc.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []map[string]any{t}, nil
	case []any:
		var out []map[string]any
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("config file %s must contain an object or a list of objects", path)
	}
}
