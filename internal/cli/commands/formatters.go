package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/formatter"
	"github.com/spf13/cobra"
)

// NewFormattersCommand creates the formatters command.
func NewFormattersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formatters",
		Short: "List available formatters",
		Long:  `List the formatters that can be passed to lint --format.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Formatter", "Default"})
			for _, name := range formatter.Names() {
				def := ""
				if name == formatter.DefaultName {
					def = "yes"
				}
				t.AppendRow(table.Row{name, def})
			}
			t.Render()
			return nil
		},
	}
}

// NewEnginesCommand creates the engines command.
func NewEnginesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List registered engine libraries",
		Long: `List the engine libraries that can be passed to lint --engine.

Libraries are opened to report their version; a library that cannot be
opened (for example eslint when it is not installed) is listed with the
reason.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Engine", "Version", "Variants"})
			for _, name := range engine.ListLibraries() {
				lib, err := engine.Open(ctx, name, nil)
				if err != nil {
					t.AppendRow(table.Row{name, "unavailable", err.Error()})
					continue
				}
				t.AppendRow(table.Row{name, lib.Version(), variants(lib)})
			}
			t.Render()
			return nil
		},
	}
}

func variants(lib engine.Library) string {
	var out []string
	for _, v := range []engine.Variant{engine.VariantESLintrc, engine.VariantFlat} {
		if _, ok := lib.Constructor(v); ok {
			out = append(out, string(v))
		}
	}
	return strings.Join(out, ", ")
}
