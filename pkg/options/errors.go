package options

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/lintstream/pkg/engine"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrInvalidOptions marks malformed or forbidden options.
	ErrInvalidOptions = errors.New("invalid options")
	// ErrUpgradeRequired marks a variant the engine library is too old to provide.
	ErrUpgradeRequired = errors.New("engine upgrade required")
	// ErrUnsupportedVariant marks a variant the engine library no longer provides.
	ErrUnsupportedVariant = errors.New("unsupported configuration variant")
)

// InvalidOptionsError reports the offending option keys.
type InvalidOptionsError struct {
	Keys    []string
	Message string
}

func (e *InvalidOptionsError) Error() string {
	return e.Message
}

func (e *InvalidOptionsError) Unwrap() error {
	return ErrInvalidOptions
}

func invalidOption(key, format string, args ...any) error {
	return &InvalidOptionsError{
		Keys:    []string{key},
		Message: fmt.Sprintf(format, args...),
	}
}

func forbiddenOptions(keys []string) error {
	return &InvalidOptionsError{
		Keys:    keys,
		Message: "Invalid options: " + strings.Join(keys, ", "),
	}
}

// UpgradeRequiredError is returned when the flat variant is requested from a
// library version that predates it.
type UpgradeRequiredError struct {
	Library string
	Version string
	Variant engine.Variant
}

func (e *UpgradeRequiredError) Error() string {
	return fmt.Sprintf("%s %s does not support %s configuration\nHint: Upgrade %s or set configType to %q",
		e.Library, e.Version, e.Variant, e.Library, engine.VariantESLintrc)
}

func (e *UpgradeRequiredError) Unwrap() error {
	return ErrUpgradeRequired
}
