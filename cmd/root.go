package cmd

import (
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	organization string
	project      string
	accessToken  string
	configPath   string
	verbose      bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "labseed",
	Short: "Bootstrap an Azure DevOps project for a demo/lab environment",
	Long: `A CLI tool that prepares a throwaway Azure DevOps project for labs
and demos in one pass.

It checks whether the target project exists (creating it when absent),
pushes a bundle of extracted source files as the initial commit to the
project's default repository, registers the bundled YAML and classic
build pipelines against that repository, and refreshes the dates in the
forecast data file to today.`,
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&organization, "organization", "o", "",
		"Azure DevOps organization name or URL (e.g. https://dev.azure.com/MyOrg)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&project, "project", "p", "",
		"Name of the project to bootstrap",
	)
	rootCmd.PersistentFlags().StringVarP(
		&accessToken, "access-token", "t", "",
		"Personal Access Token (inline, ${ENV_VAR}, or path to a token file)",
	)
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "",
		"Path to a labseed.yaml config file (default: search standard locations)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false,
		"Enable verbose output",
	)
}
