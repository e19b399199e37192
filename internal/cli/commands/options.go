package commands

import (
	"fmt"
	"io"

	"github.com/leapstack-labs/lintstream/internal/cli/config"
	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/options"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// organizedView is the YAML shape printed by the options command.
type organizedView struct {
	Engine        string          `yaml:"engine"`
	Variant       string          `yaml:"variant"`
	EngineOptions map[string]any  `yaml:"engineOptions"`
	Adapter       adapterView     `yaml:"adapter"`
	Migrations    []migrationView `yaml:"migrations,omitempty"`
}

type adapterView struct {
	Quiet       bool  `yaml:"quiet"`
	WarnIgnored *bool `yaml:"warnIgnored,omitempty"`
}

type migrationView struct {
	Old           string `yaml:"old"`
	New           string `yaml:"new"`
	FormatChanged bool   `yaml:"formatChanged"`
}

// NewOptionsCommand creates the options command.
func NewOptionsCommand() *cobra.Command {
	var logRename bool
	cmd := &cobra.Command{
		Use:   "options [config-path]",
		Short: "Show organized lint options",
		Long: `Organize the configured lint options and print the result as YAML.

The output shows the options handed to the engine, the options kept by the
pipeline and every deprecated option that was rewritten. With a config path
argument, the path alone is organized as the engine's override config file.`,
		Example: `  # Show how the config file's options are organized
  lintstream options

  # Organize a bare config file path
  lintstream options .eslintrc.yml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.GetConfig(ctx)
			logger := config.GetLogger(ctx)

			var input any
			if len(args) == 1 {
				input = args[0]
			} else {
				raw, err := LintOptions(cfg)
				if err != nil {
					return err
				}
				input = raw
			}

			lib, err := engine.Open(ctx, cfg.Engine, logger)
			if err != nil {
				return err
			}
			organized, err := options.New(lib, options.WithConfigFileRenameLogged(logRename)).Organize(input)
			if err != nil {
				return err
			}
			return writeOrganized(cmd.OutOrStdout(), lib.Name(), organized)
		},
	}
	cmd.Flags().BoolVar(&logRename, "log-config-file-rename", false, "Report configFile renamed to overrideConfigFile")
	return cmd
}

func writeOrganized(w io.Writer, libName string, o *options.Organized) error {
	view := organizedView{
		Engine:        libName,
		Variant:       string(o.Variant),
		EngineOptions: o.EngineOptions,
		Adapter: adapterView{
			Quiet:       o.Quiet != nil,
			WarnIgnored: o.WarnIgnored,
		},
	}
	for _, m := range o.Migrations {
		view.Migrations = append(view.Migrations, migrationView{
			Old:           m.OldName,
			New:           m.NewName,
			FormatChanged: m.FormatChanged,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	return enc.Close()
}
