// Package options normalizes raw lint options into engine-ready options.
//
// Raw options may use deprecated names from older releases. For the
// eslintrc variant those are migrated into their current location by the
// rule table in LegacyRules, and each migration is recorded so callers can
// surface deprecation notices. The flat variant is passed through as given.
//
// Options owned by the pipeline rather than the engine (quiet, warnIgnored,
// configType) are extracted and never reach the engine constructor.
package options

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// Adapter-only option keys.
const (
	KeyConfigType  = "configType"
	KeyQuiet       = "quiet"
	KeyWarnIgnored = "warnIgnored"
)

// ForbiddenKeys are engine options the pipeline owns. They are rejected
// in this order.
var ForbiddenKeys = []string{
	"cache",
	"cacheFile",
	"cacheLocation",
	"cacheStrategy",
	"errorOnUnmatchedPattern",
	"extensions",
	"globInputPaths",
}

// Migration records one deprecated option that was rewritten.
type Migration struct {
	OldName       string `yaml:"old_name" json:"oldName"`
	NewName       string `yaml:"new_name" json:"newName"`
	FormatChanged bool   `yaml:"format_changed" json:"formatChanged"`
}

func (m Migration) String() string {
	if m.FormatChanged {
		return fmt.Sprintf("%s -> %s (format changed)", m.OldName, m.NewName)
	}
	return fmt.Sprintf("%s -> %s", m.OldName, m.NewName)
}

// Organized is the result of organizing raw options.
type Organized struct {
	// Variant is the selected configuration variant.
	Variant engine.Variant

	// Constructor builds the engine. Nil when organized without a library.
	Constructor engine.Constructor

	// EngineOptions are passed to Constructor.
	EngineOptions map[string]any

	// Quiet keeps only the messages it accepts. Nil disables filtering.
	Quiet lint.Filter

	// WarnIgnored reports ignored files as warnings when true. Nil when unset.
	WarnIgnored *bool

	// Migrations lists deprecated options that were rewritten, in rule order.
	Migrations []Migration
}

// WarnIgnoredEnabled reports whether ignored files should be reported.
func (o *Organized) WarnIgnoredEnabled() bool {
	return o.WarnIgnored != nil && *o.WarnIgnored
}

// LogMigrations emits one deprecation warning per migration.
func (o *Organized) LogMigrations(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, m := range o.Migrations {
		logger.Warn("option is deprecated",
			slog.String("option", m.OldName),
			slog.String("replacement", m.NewName),
			slog.Bool("format_changed", m.FormatChanged))
	}
}

// Organizer turns raw options into Organized options for one library.
type Organizer struct {
	lib               engine.Library
	logConfigFileName bool
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithConfigFileRenameLogged controls whether renaming configFile to
// overrideConfigFile is recorded as a migration. Off by default.
func WithConfigFileRenameLogged(on bool) Option {
	return func(o *Organizer) {
		o.logConfigFileName = on
	}
}

// New creates an Organizer. lib may be nil, in which case no constructor
// is selected.
func New(lib engine.Library, opts ...Option) *Organizer {
	o := &Organizer{lib: lib}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Organize is shorthand for New(lib).Organize(input).
func Organize(lib engine.Library, input any) (*Organized, error) {
	return New(lib).Organize(input)
}

// Organize normalizes input, which is nil, a configuration file path, or a
// raw option map. The input map is never modified.
func (o *Organizer) Organize(input any) (*Organized, error) {
	switch in := input.(type) {
	case nil:
		return o.organizeMap(map[string]any{})
	case string:
		return o.organizeConfigPath(in)
	case map[string]any:
		return o.organizeMap(in)
	default:
		return nil, &InvalidOptionsError{
			Message: fmt.Sprintf("Options must be an object or a configuration file path, got %T", input),
		}
	}
}

func (o *Organizer) organizeConfigPath(path string) (*Organized, error) {
	out := &Organized{
		Variant:       engine.DefaultVariant,
		EngineOptions: map[string]any{"overrideConfigFile": path},
	}
	if err := o.selectConstructor(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Organizer) organizeMap(input map[string]any) (*Organized, error) {
	raw := maps.Clone(input)
	if raw == nil {
		raw = map[string]any{}
	}

	if err := checkForbidden(raw); err != nil {
		return nil, err
	}

	out := &Organized{}
	variant, err := extractVariant(raw)
	if err != nil {
		return nil, err
	}
	out.Variant = variant

	if variant == engine.VariantESLintrc {
		if err := o.migrate(raw, out); err != nil {
			return nil, err
		}
	} else {
		if err := checkFlatOverrideConfig(raw); err != nil {
			return nil, err
		}
		if err := o.extractAliases(raw, out); err != nil {
			return nil, err
		}
	}

	if err := extractAdapterOptions(raw, out); err != nil {
		return nil, err
	}
	out.EngineOptions = raw

	if err := o.selectConstructor(out); err != nil {
		return nil, err
	}
	return out, nil
}

func checkForbidden(raw map[string]any) error {
	var found []string
	for _, key := range ForbiddenKeys {
		if _, ok := raw[key]; ok {
			found = append(found, key)
		}
	}
	if len(found) > 0 {
		return forbiddenOptions(found)
	}
	return nil
}

func extractVariant(raw map[string]any) (engine.Variant, error) {
	v, ok := raw[KeyConfigType]
	delete(raw, KeyConfigType)
	if !ok || v == nil {
		return engine.DefaultVariant, nil
	}
	var variant engine.Variant
	switch t := v.(type) {
	case string:
		variant = engine.Variant(t)
	case engine.Variant:
		variant = t
	}
	if !variant.Valid() {
		return "", invalidOption(KeyConfigType,
			"Option %s must be one of %q, %q, null or undefined", KeyConfigType, engine.VariantESLintrc, engine.VariantFlat)
	}
	return variant, nil
}

// migrate applies LegacyRules to raw, writing into a fresh overrideConfig.
func (o *Organizer) migrate(raw map[string]any, out *Organized) error {
	overrideConfig := map[string]any{}
	switch oc := raw["overrideConfig"].(type) {
	case nil:
	case map[string]any:
		overrideConfig = maps.Clone(oc)
	default:
		return invalidOption("overrideConfig", "Option overrideConfig must be an object, null or undefined")
	}
	raw["overrideConfig"] = overrideConfig

	for _, rule := range LegacyRules {
		if err := o.apply(rule, raw, overrideConfig, out, true); err != nil {
			return err
		}
	}
	return nil
}

// extractAliases applies only the adapter-bound rules, without recording
// migrations, for variants that are otherwise passed through.
func (o *Organizer) extractAliases(raw map[string]any, out *Organized) error {
	for _, rule := range LegacyRules {
		if rule.Container != Adapter {
			continue
		}
		if err := o.apply(rule, raw, nil, out, false); err != nil {
			return err
		}
	}
	return nil
}

func (o *Organizer) apply(rule Rule, raw, overrideConfig map[string]any, out *Organized, record bool) error {
	v, present := raw[rule.Source]
	if !present {
		return nil
	}
	if rule.Applies != nil && !rule.Applies(v) {
		return nil
	}
	delete(raw, rule.Source)

	if v != nil {
		if rule.Transform != nil {
			var err error
			if v, err = rule.Transform(rule.Source, v); err != nil {
				return err
			}
		}
		if v != nil {
			if err := write(rule, v, raw, overrideConfig, out); err != nil {
				return err
			}
		}
	}

	if record && (!rule.Unlogged || o.logConfigFileName) {
		out.Migrations = append(out.Migrations, Migration{
			OldName:       rule.Source,
			NewName:       rule.Container.qualify(rule.Target),
			FormatChanged: rule.Transform != nil,
		})
	}
	return nil
}

func write(rule Rule, v any, raw, overrideConfig map[string]any, out *Organized) error {
	switch rule.Container {
	case TopLevel:
		raw[rule.Target] = v
	case OverrideConfig:
		overrideConfig[rule.Target] = v
	case Adapter:
		if rule.Target != KeyWarnIgnored {
			return fmt.Errorf("no adapter option named %q", rule.Target)
		}
		b, ok := v.(bool)
		if !ok {
			return invalidOption(rule.Source, "Option %s must be a boolean", rule.Source)
		}
		out.WarnIgnored = &b
	}
	return nil
}

func checkFlatOverrideConfig(raw map[string]any) error {
	switch raw["overrideConfig"].(type) {
	case nil, map[string]any, []any, []map[string]any:
		return nil
	default:
		return invalidOption("overrideConfig", "Option overrideConfig must be an object, an array, null or undefined")
	}
}

func extractAdapterOptions(raw map[string]any, out *Organized) error {
	if v, ok := raw[KeyQuiet]; ok {
		delete(raw, KeyQuiet)
		quiet, err := quietFilter(v)
		if err != nil {
			return err
		}
		out.Quiet = quiet
	}

	if v, ok := raw[KeyWarnIgnored]; ok {
		delete(raw, KeyWarnIgnored)
		switch b := v.(type) {
		case nil:
		case bool:
			out.WarnIgnored = &b
		default:
			return invalidOption(KeyWarnIgnored, "Option %s must be a boolean, null or undefined", KeyWarnIgnored)
		}
	}
	return nil
}

// quietFilter resolves a quiet selector: true keeps errors only, a
// predicate or filter is used as given.
func quietFilter(v any) (lint.Filter, error) {
	switch q := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if q {
			return lint.FilterFor(lint.IsError), nil
		}
		return nil, nil
	case lint.Filter:
		return q, nil
	case func(lint.Message, int, []lint.Message, *lint.Result) bool:
		return q, nil
	case lint.Predicate:
		return lint.FilterFor(q), nil
	case func(lint.Message) bool:
		return lint.FilterFor(q), nil
	default:
		return nil, invalidOption(KeyQuiet, "Option %s must be a boolean or a function", KeyQuiet)
	}
}

func (o *Organizer) selectConstructor(out *Organized) error {
	if o.lib == nil {
		return nil
	}
	ctor, ok := o.lib.Constructor(out.Variant)
	if ok {
		out.Constructor = ctor
		return nil
	}
	if out.Variant == engine.VariantFlat {
		return &UpgradeRequiredError{
			Library: o.lib.Name(),
			Version: o.lib.Version(),
			Variant: out.Variant,
		}
	}
	return fmt.Errorf("%s %s does not support %s configuration: %w",
		o.lib.Name(), o.lib.Version(), out.Variant, ErrUnsupportedVariant)
}
