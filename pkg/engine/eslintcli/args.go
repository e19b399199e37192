package eslintcli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/lintstream/pkg/engine"
)

// buildArgs maps engine options onto eslint command-line flags. Settings
// the command line cannot express are returned in skipped.
func buildArgs(variant engine.Variant, opts engine.Options) (args, skipped []string, err error) {
	if opts.OverrideConfigFile != "" {
		args = append(args, "--config", opts.OverrideConfigFile)
	}
	if variant == engine.VariantESLintrc && opts.UseEslintrc != nil && !*opts.UseEslintrc {
		args = append(args, "--no-eslintrc")
	}
	if opts.BaseConfig != nil {
		skipped = append(skipped, "baseConfig")
	}
	if len(opts.Plugins) > 0 {
		skipped = append(skipped, "plugins")
	}

	for _, cfg := range opts.OverrideConfigs() {
		cfgArgs, cfgSkipped, err := configArgs(variant, cfg)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, cfgArgs...)
		skipped = append(skipped, cfgSkipped...)
	}

	for _, p := range opts.IgnorePatterns {
		args = append(args, "--ignore-pattern", p)
	}
	if !opts.IgnoreEnabled() {
		args = append(args, "--no-ignore")
	}
	if opts.IgnorePath != "" {
		args = append(args, "--ignore-path", opts.IgnorePath)
	}
	for _, dir := range opts.RulePaths {
		args = append(args, "--rulesdir", dir)
	}
	if opts.ResolvePluginsRelativeTo != "" {
		args = append(args, "--resolve-plugins-relative-to", opts.ResolvePluginsRelativeTo)
	}
	if opts.AllowInlineConfig != nil && !*opts.AllowInlineConfig {
		args = append(args, "--no-inline-config")
	}
	if d := opts.ReportUnusedDisableDirectives; d != "" && d != "off" {
		args = append(args, "--report-unused-disable-directives")
	}

	if engine.FixEnabled(opts.Fix) {
		args = append(args, "--fix-dry-run")
		if len(opts.FixTypes) > 0 {
			args = append(args, "--fix-type", strings.Join(opts.FixTypes, ","))
		}
		if _, ok := opts.Fix.(bool); !ok {
			skipped = append(skipped, "fix predicate")
		}
	}
	return args, skipped, nil
}

func configArgs(variant engine.Variant, cfg map[string]any) (args, skipped []string, err error) {
	for _, key := range sortedKeys(cfg) {
		v := cfg[key]
		switch key {
		case "rules":
			rules, ok := v.(map[string]any)
			if !ok {
				return nil, nil, fmt.Errorf("overrideConfig.rules must be an object")
			}
			for _, id := range sortedKeys(rules) {
				b, err := json.Marshal(map[string]any{id: rules[id]})
				if err != nil {
					return nil, nil, fmt.Errorf("failed to encode rule %q: %w", id, err)
				}
				args = append(args, "--rule", string(b))
			}
		case "env":
			env := engine.GetMapOption(cfg, "env")
			for _, name := range sortedKeys(env) {
				if on, _ := env[name].(bool); on {
					args = append(args, "--env", name)
				}
			}
		case "globals":
			args = append(args, globalArgs(engine.GetMapOption(cfg, "globals"))...)
		case "languageOptions":
			lo := engine.GetMapOption(cfg, "languageOptions")
			args = append(args, globalArgs(engine.GetMapOption(lo, "globals"))...)
			for _, k := range sortedKeys(lo) {
				if k != "globals" {
					skipped = append(skipped, "overrideConfig.languageOptions."+k)
				}
			}
		case "parser":
			if s, ok := v.(string); ok && variant == engine.VariantESLintrc {
				args = append(args, "--parser", s)
			} else {
				skipped = append(skipped, key)
			}
		case "parserOptions":
			po := engine.GetMapOption(cfg, "parserOptions")
			for _, name := range sortedKeys(po) {
				b, err := json.Marshal(po[name])
				if err != nil {
					return nil, nil, fmt.Errorf("failed to encode parser option %q: %w", name, err)
				}
				args = append(args, "--parser-options", name+":"+string(b))
			}
		case "plugins":
			for _, p := range engine.GetStringSliceOption(cfg, "plugins") {
				args = append(args, "--plugin", p)
			}
		case "ignorePatterns", "ignores":
			for _, p := range engine.GetStringSliceOption(cfg, key) {
				args = append(args, "--ignore-pattern", p)
			}
		default:
			skipped = append(skipped, "overrideConfig."+key)
		}
	}
	return args, skipped, nil
}

func globalArgs(globals map[string]any) []string {
	var args []string
	for _, name := range sortedKeys(globals) {
		switch v := globals[name].(type) {
		case bool:
			if v {
				args = append(args, "--global", name+":true")
			} else {
				args = append(args, "--global", name)
			}
		case string:
			switch v {
			case "writable", "writeable":
				args = append(args, "--global", name+":true")
			case "off":
			default:
				args = append(args, "--global", name)
			}
		default:
			args = append(args, "--global", name)
		}
	}
	return args
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
