// Package config provides configuration management for the lintstream CLI.
//
// Values are layered from defaults, a project config file, LINTSTREAM_*
// environment variables and explicitly set flags, in increasing priority.
package config

import (
	"github.com/leapstack-labs/lintstream/internal/source"
	"github.com/leapstack-labs/lintstream/pkg/engine"
)

// Fail modes for the lint command.
const (
	FailNone       = "none"
	FailOnError    = "on-error"
	FailAfterError = "after-error"
)

// Defaults.
const (
	DefaultFormat = "stylish"
	DefaultFail   = FailAfterError
)

// ConfigFileNames are searched in order when no config file is given.
var ConfigFileNames = []string{".lintstream.yaml", ".lintstream.yml", ".lintstream.toml"}

// Config holds the CLI configuration.
type Config struct {
	// Engine is the registered engine library to lint with.
	Engine     string `koanf:"engine"`
	ConfigType string `koanf:"config_type"`

	Fix         bool `koanf:"fix"`
	Quiet       bool `koanf:"quiet"`
	WarnIgnored bool `koanf:"warn_ignored"`

	// Format is a formatter name. FormatEach reports every file as it is
	// linted instead of once at the end.
	Format     string `koanf:"format"`
	FormatEach bool   `koanf:"format_each"`
	Fail       string `koanf:"fail"`

	// Rules are "id=severity" overrides merged into the rule configuration.
	Rules []string `koanf:"rules"`
	Ext   []string `koanf:"ext"`

	Watch       bool   `koanf:"watch"`
	MetricsAddr string `koanf:"metrics_addr"`

	Verbose bool `koanf:"verbose"`
	NoColor bool `koanf:"no_color"`

	// Options are the raw lint options handed to the option organizer.
	Options map[string]any `koanf:"options"`

	// ProjectRoot is the directory of the config file, or the working
	// directory when there is none.
	ProjectRoot string `koanf:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Engine: engine.DefaultLibrary,
		Format: DefaultFormat,
		Fail:   DefaultFail,
		Ext:    append([]string(nil), source.DefaultExtensions...),
	}
}

func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"engine":  d.Engine,
		"format":  d.Format,
		"fail":    d.Fail,
		"ext":     d.Ext,
		"verbose": false,
	}
}
