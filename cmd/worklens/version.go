package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			_ = printJSON(map[string]string{
				"version": Version,
				"build":   Build,
				"go":      runtime.Version(),
			})
			return
		}
		fmt.Printf("worklens version %s (%s, %s)\n", Version, Build, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
