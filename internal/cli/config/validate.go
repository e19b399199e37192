package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine == "" {
		return fmt.Errorf("engine is required")
	}

	if c.ConfigType != "" && !engine.Variant(c.ConfigType).Valid() {
		return fmt.Errorf("invalid config_type %q: must be %q or %q", c.ConfigType, engine.VariantESLintrc, engine.VariantFlat)
	}

	switch c.Fail {
	case FailNone, FailOnError, FailAfterError:
	default:
		return fmt.Errorf("invalid fail mode %q: must be one of %s", c.Fail,
			strings.Join([]string{FailNone, FailOnError, FailAfterError}, ", "))
	}

	if _, err := c.RuleOverrides(); err != nil {
		return err
	}

	if c.MetricsAddr != "" && !c.Watch {
		return fmt.Errorf("metrics_addr requires watch mode\nHint: add --watch or remove --metrics-addr")
	}
	return nil
}

// RuleOverrides parses Rules into a rule configuration map.
func (c *Config) RuleOverrides() (map[string]any, error) {
	if len(c.Rules) == 0 {
		return nil, nil
	}
	rules := make(map[string]any, len(c.Rules))
	for _, r := range c.Rules {
		id, sev, ok := strings.Cut(r, "=")
		id = strings.TrimSpace(id)
		sev = strings.TrimSpace(sev)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid rule %q: expected id=severity", r)
		}
		if _, ok := lint.ParseSeverity(sev); !ok {
			return nil, fmt.Errorf("invalid severity %q for rule %s: use off, warn, error or 0-2", sev, id)
		}
		rules[id] = sev
	}
	return rules, nil
}
