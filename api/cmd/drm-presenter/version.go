package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixml/scanout/api/pkg/data"
)

func newVersionCmd() *cobra.Command {
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version",
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), data.GetVersion())
		},
	}
	return versionCmd
}
