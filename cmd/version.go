package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/node4good/gypninja/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gyp-ninja %s (%s) %s\n", version.Version, version.Commit, version.BuildTime)
		},
	}
}
