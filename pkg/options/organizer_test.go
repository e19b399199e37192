package options

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/leapstack-labs/lintstream/internal/testutil"
	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLibrary struct {
	flat bool
}

func (fakeLibrary) Name() string    { return "fake" }
func (fakeLibrary) Version() string { return "8.0.0" }
func (l fakeLibrary) Constructor(v engine.Variant) (engine.Constructor, bool) {
	ctor := func(context.Context, map[string]any) (engine.Engine, error) { return nil, nil }
	switch v {
	case engine.VariantESLintrc:
		return ctor, true
	case engine.VariantFlat:
		return ctor, l.flat
	}
	return nil, false
}

func TestOrganizeEnvs(t *testing.T) {
	out, err := Organize(nil, map[string]any{
		"envs": []any{"foo:true", "bar:false", "baz"},
	})
	require.NoError(t, err)

	oc := out.EngineOptions["overrideConfig"].(map[string]any)
	assert.Equal(t, map[string]any{"foo": true, "bar": false, "baz": true}, oc["env"])
	assert.NotContains(t, out.EngineOptions, "envs")
	assert.Equal(t, []Migration{{OldName: "envs", NewName: "overrideConfig.env", FormatChanged: true}}, out.Migrations)
}

func TestOrganizeGlobals(t *testing.T) {
	out, err := Organize(nil, map[string]any{
		"globals": []string{"jQuery", "$:true", "__proto__:true", "__proto__", "a:b:true"},
	})
	require.NoError(t, err)

	oc := out.EngineOptions["overrideConfig"].(map[string]any)
	assert.Equal(t, map[string]any{"jQuery": false, "$": true, "a": false}, oc["globals"])
	assert.Equal(t, []Migration{{OldName: "globals", NewName: "overrideConfig.globals", FormatChanged: true}}, out.Migrations)
}

func TestOrganizeForbidden(t *testing.T) {
	_, err := Organize(nil, map[string]any{"cacheLocation": "x", "cache": true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))

	var invalid *InvalidOptionsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"cache", "cacheLocation"}, invalid.Keys)
	assert.Equal(t, "Invalid options: cache, cacheLocation", err.Error())

	// Rejected regardless of variant.
	_, err = Organize(nil, map[string]any{"configType": "flat", "globInputPaths": false})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Contains(t, err.Error(), "globInputPaths")
}

func TestOrganizeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantKey string
		wantMsg string
	}{
		{
			name:    "unknown config type",
			input:   map[string]any{"configType": "legacy"},
			wantKey: "configType",
			wantMsg: `Option configType must be one of "eslintrc", "flat", null or undefined`,
		},
		{
			name:    "override config not an object",
			input:   map[string]any{"overrideConfig": "rules.json"},
			wantKey: "overrideConfig",
			wantMsg: "Option overrideConfig must be an object, null or undefined",
		},
		{
			name:    "flat override config not an object or array",
			input:   map[string]any{"configType": "flat", "overrideConfig": 12},
			wantKey: "overrideConfig",
		},
		{
			name:    "envs not an array",
			input:   map[string]any{"envs": "node"},
			wantKey: "envs",
			wantMsg: "Option envs must be an array",
		},
		{
			name:    "globals not an array",
			input:   map[string]any{"globals": map[string]any{"a": true}},
			wantKey: "globals",
			wantMsg: "Option globals must be an array",
		},
		{
			name:    "envs entries not strings",
			input:   map[string]any{"envs": []any{"node", 3}},
			wantKey: "envs",
		},
		{
			name:    "quiet of wrong type",
			input:   map[string]any{"quiet": "yes"},
			wantKey: "quiet",
		},
		{
			name:    "warnIgnored of wrong type",
			input:   map[string]any{"warnIgnored": "yes"},
			wantKey: "warnIgnored",
		},
		{
			name:    "warnFileIgnored of wrong type",
			input:   map[string]any{"warnFileIgnored": 1},
			wantKey: "warnFileIgnored",
		},
		{
			name:  "unsupported input type",
			input: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Organize(nil, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOptions)

			var invalid *InvalidOptionsError
			require.ErrorAs(t, err, &invalid)
			if tt.wantKey != "" {
				assert.Equal(t, []string{tt.wantKey}, invalid.Keys)
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestOrganizeFalsyLists(t *testing.T) {
	for _, v := range []any{nil, false, "", 0, []any{}} {
		out, err := Organize(nil, map[string]any{"envs": v, "globals": v})
		require.NoError(t, err, "value %v", v)

		oc := out.EngineOptions["overrideConfig"].(map[string]any)
		assert.NotContains(t, oc, "env")
		assert.NotContains(t, oc, "globals")
		assert.NotContains(t, out.EngineOptions, "envs")
		assert.Len(t, out.Migrations, 2, "deprecated names are reported even without a value")
	}
}

func TestOrganizePassthroughRules(t *testing.T) {
	rules := map[string]any{"semi": "error"}
	parserOptions := map[string]any{"ecmaVersion": 2022}
	out, err := Organize(nil, map[string]any{
		"extends":       "eslint:recommended",
		"ignorePattern": []any{"dist/**"},
		"parser":        "espree",
		"parserOptions": parserOptions,
		"plugins":       []any{"import"},
		"rules":         rules,
	})
	require.NoError(t, err)

	oc := out.EngineOptions["overrideConfig"].(map[string]any)
	assert.Equal(t, "eslint:recommended", oc["extends"])
	assert.Equal(t, []any{"dist/**"}, oc["ignorePatterns"])
	assert.Equal(t, "espree", oc["parser"])
	assert.Equal(t, parserOptions, oc["parserOptions"])
	assert.Equal(t, []any{"import"}, oc["plugins"])
	assert.Equal(t, rules, oc["rules"])

	for _, key := range []string{"extends", "ignorePattern", "parser", "parserOptions", "plugins", "rules"} {
		assert.NotContains(t, out.EngineOptions, key)
	}

	assert.Equal(t, []Migration{
		{OldName: "extends", NewName: "overrideConfig.extends"},
		{OldName: "ignorePattern", NewName: "overrideConfig.ignorePatterns"},
		{OldName: "parser", NewName: "overrideConfig.parser"},
		{OldName: "parserOptions", NewName: "overrideConfig.parserOptions"},
		{OldName: "plugins", NewName: "overrideConfig.plugins"},
		{OldName: "rules", NewName: "overrideConfig.rules"},
	}, out.Migrations)
}

func TestOrganizePluginObjectStaysTopLevel(t *testing.T) {
	plugins := map[string]any{"local": struct{}{}}
	out, err := Organize(nil, map[string]any{"plugins": plugins})
	require.NoError(t, err)

	assert.Equal(t, plugins, out.EngineOptions["plugins"])
	oc := out.EngineOptions["overrideConfig"].(map[string]any)
	assert.NotContains(t, oc, "plugins")
	assert.Empty(t, out.Migrations)
}

func TestOrganizeConfigFileRename(t *testing.T) {
	input := map[string]any{"configFile": ".eslintrc.custom.json"}

	t.Run("unlogged by default", func(t *testing.T) {
		out, err := New(nil).Organize(input)
		require.NoError(t, err)
		assert.Equal(t, ".eslintrc.custom.json", out.EngineOptions["overrideConfigFile"])
		assert.NotContains(t, out.EngineOptions, "configFile")
		assert.Empty(t, out.Migrations)
	})

	t.Run("logged when enabled", func(t *testing.T) {
		out, err := New(nil, WithConfigFileRenameLogged(true)).Organize(input)
		require.NoError(t, err)
		assert.Equal(t, ".eslintrc.custom.json", out.EngineOptions["overrideConfigFile"])
		assert.Equal(t, []Migration{{OldName: "configFile", NewName: "overrideConfigFile"}}, out.Migrations)
	})
}

func TestOrganizeWarnIgnored(t *testing.T) {
	tests := []struct {
		name       string
		input      map[string]any
		want       *bool
		migrations int
	}{
		{"unset", map[string]any{}, nil, 0},
		{"explicit", map[string]any{"warnIgnored": true}, boolPtr(true), 0},
		{"explicit null", map[string]any{"warnIgnored": nil}, nil, 0},
		{"deprecated alias", map[string]any{"warnFileIgnored": true}, boolPtr(true), 1},
		{"explicit wins over alias", map[string]any{"warnFileIgnored": true, "warnIgnored": false}, boolPtr(false), 1},
		{"flat alias is extracted silently", map[string]any{"configType": "flat", "warnFileIgnored": true}, boolPtr(true), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Organize(nil, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.WarnIgnored)
			assert.Len(t, out.Migrations, tt.migrations)
			assert.NotContains(t, out.EngineOptions, "warnIgnored")
			assert.NotContains(t, out.EngineOptions, "warnFileIgnored")
		})
	}
}

func TestOrganizeQuiet(t *testing.T) {
	errMsg := lint.Message{Severity: lint.SeverityError}
	warnMsg := lint.Message{Severity: lint.SeverityWarning, RuleID: "semi"}

	t.Run("true keeps errors", func(t *testing.T) {
		out, err := Organize(nil, map[string]any{"quiet": true})
		require.NoError(t, err)
		require.NotNil(t, out.Quiet)
		assert.True(t, out.Quiet(errMsg, 0, nil, nil))
		assert.False(t, out.Quiet(warnMsg, 0, nil, nil))
		assert.NotContains(t, out.EngineOptions, "quiet")
	})

	t.Run("false disables", func(t *testing.T) {
		out, err := Organize(nil, map[string]any{"quiet": false})
		require.NoError(t, err)
		assert.Nil(t, out.Quiet)
	})

	t.Run("predicate", func(t *testing.T) {
		out, err := Organize(nil, map[string]any{"quiet": func(m lint.Message) bool { return m.RuleID == "semi" }})
		require.NoError(t, err)
		require.NotNil(t, out.Quiet)
		assert.True(t, out.Quiet(warnMsg, 0, nil, nil))
		assert.False(t, out.Quiet(errMsg, 0, nil, nil))
	})

	t.Run("filter", func(t *testing.T) {
		out, err := Organize(nil, map[string]any{"quiet": lint.Filter(func(_ lint.Message, i int, _ []lint.Message, _ *lint.Result) bool { return i == 0 })})
		require.NoError(t, err)
		require.NotNil(t, out.Quiet)
		assert.True(t, out.Quiet(warnMsg, 0, nil, nil))
		assert.False(t, out.Quiet(warnMsg, 1, nil, nil))
	})
}

func TestOrganizeDoesNotMutateInput(t *testing.T) {
	overrideConfig := map[string]any{"rules": map[string]any{"semi": 2}}
	input := map[string]any{
		"envs":           []any{"node"},
		"overrideConfig": overrideConfig,
		"quiet":          true,
		"configType":     "eslintrc",
	}

	out, err := Organize(nil, input)
	require.NoError(t, err)

	assert.Len(t, input, 4)
	assert.Contains(t, input, "envs")
	assert.Contains(t, input, "quiet")
	assert.Len(t, overrideConfig, 1)
	assert.NotContains(t, overrideConfig, "env")

	oc := out.EngineOptions["overrideConfig"].(map[string]any)
	assert.Contains(t, oc, "env")
	assert.Contains(t, oc, "rules")
}

func TestOrganizeIdempotent(t *testing.T) {
	first, err := Organize(nil, map[string]any{
		"envs":  []any{"browser"},
		"rules": map[string]any{"no-undef": 2},
		"fix":   true,
		"quiet": true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.Migrations)

	second, err := Organize(nil, first.EngineOptions)
	require.NoError(t, err)
	assert.Empty(t, second.Migrations)
	assert.Equal(t, first.EngineOptions, second.EngineOptions)

	third, err := Organize(nil, second.EngineOptions)
	require.NoError(t, err)
	assert.Empty(t, third.Migrations)
	assert.Equal(t, second.EngineOptions, third.EngineOptions)
}

func TestOrganizeConfigPath(t *testing.T) {
	out, err := Organize(fakeLibrary{}, "config/.eslintrc.json")
	require.NoError(t, err)
	assert.Equal(t, engine.VariantESLintrc, out.Variant)
	assert.Equal(t, map[string]any{"overrideConfigFile": "config/.eslintrc.json"}, out.EngineOptions)
	assert.Empty(t, out.Migrations)
	assert.NotNil(t, out.Constructor)
}

func TestOrganizeFlatPassthrough(t *testing.T) {
	overrideConfig := []any{map[string]any{"rules": map[string]any{"semi": "error"}}}
	out, err := Organize(fakeLibrary{flat: true}, map[string]any{
		"configType":     "flat",
		"overrideConfig": overrideConfig,
		"rules":          map[string]any{"ignored": 1},
		"quiet":          true,
	})
	require.NoError(t, err)

	assert.Equal(t, engine.VariantFlat, out.Variant)
	assert.Equal(t, overrideConfig, out.EngineOptions["overrideConfig"])
	assert.Contains(t, out.EngineOptions, "rules", "flat options are not migrated")
	assert.NotContains(t, out.EngineOptions, "configType")
	assert.NotContains(t, out.EngineOptions, "quiet")
	assert.NotNil(t, out.Quiet)
	assert.Empty(t, out.Migrations)
	assert.NotNil(t, out.Constructor)
}

func TestOrganizeUpgradeRequired(t *testing.T) {
	_, err := Organize(fakeLibrary{flat: false}, map[string]any{"configType": "flat"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpgradeRequired)

	var upgrade *UpgradeRequiredError
	require.ErrorAs(t, err, &upgrade)
	assert.Equal(t, "fake", upgrade.Library)
	assert.Equal(t, "8.0.0", upgrade.Version)
	assert.Equal(t, engine.VariantFlat, upgrade.Variant)
	assert.Contains(t, err.Error(), "does not support flat configuration")
}

func TestOrganizeDefaultVariant(t *testing.T) {
	for _, input := range []any{nil, map[string]any{}, map[string]any{"configType": nil}} {
		out, err := Organize(fakeLibrary{}, input)
		require.NoError(t, err)
		assert.Equal(t, engine.VariantESLintrc, out.Variant)
		assert.Equal(t, map[string]any{"overrideConfig": map[string]any{}}, out.EngineOptions)
	}
}

func TestLogMigrations(t *testing.T) {
	logger, rec := testutil.NewRecorder()

	out, err := Organize(nil, map[string]any{"envs": []any{"node"}, "rules": map[string]any{}})
	require.NoError(t, err)
	out.LogMigrations(logger)

	records := rec.Records()
	require.Len(t, records, 2)
	assert.Equal(t, slog.LevelWarn, records[0].Level)
	assert.Equal(t, map[string]any{
		"option":         "envs",
		"replacement":    "overrideConfig.env",
		"format_changed": true,
	}, records[0].Attrs)
	assert.Equal(t, "rules", records[1].Attrs["option"])
}

func TestMigrationString(t *testing.T) {
	assert.Equal(t, "envs -> overrideConfig.env (format changed)",
		Migration{OldName: "envs", NewName: "overrideConfig.env", FormatChanged: true}.String())
	assert.Equal(t, "rules -> overrideConfig.rules",
		Migration{OldName: "rules", NewName: "overrideConfig.rules"}.String())
}

func boolPtr(b bool) *bool { return &b }
