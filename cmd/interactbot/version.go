package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonny/interactbot/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of interactbot",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "interactbot %s\n", version.String())
		},
	}
}
