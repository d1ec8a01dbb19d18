package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pdiddy/conver/internal/bridge"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of conver",
	Run: func(cmd *cobra.Command, args []string) {
		support := "supported"
		if !bridge.Supported(runtime.GOOS) {
			support = "unsupported"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "conver %s (%s/%s, %s)\n", version, runtime.GOOS, runtime.GOARCH, support)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
