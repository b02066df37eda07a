package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
//
//nolint:gochecknoglobals // required by cobra CLI pattern
var version = "dev"

//nolint:gochecknoglobals // required by cobra CLI pattern
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the labseed version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("labseed " + version)
	},
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(versionCmd)
}
