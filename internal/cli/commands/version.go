package commands

import (
	"fmt"

	"github.com/leapstack-labs/lintstream/pkg/stream"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display lintstream version information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", stream.PluginName, version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Streaming lint pipeline for JavaScript and TypeScript")
		},
	}
}
