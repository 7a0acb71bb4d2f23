package main

import (
	"fmt"

	"github.com/spf13/cobra"

	webuictl "github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), webuictl.Version)
		},
	}
}
