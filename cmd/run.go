package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devopslab/labseed/application"
	"github.com/devopslab/labseed/config"
	"github.com/devopslab/labseed/infrastructure/azuredevops"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	assetArchive string
	pipelineDir  string
	forecastFile string
	rootDir      string
	pushDelay    time.Duration
	assumeYes    bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bootstrap workflow",
	Long: `Check the target project (creating it when absent), push the
extracted asset bundle as the initial commit, register the bundled
YAML and classic pipelines, and refresh the forecast data file.

The workflow is strictly sequential and aborts on the first failing
step. Remote mutations already performed are left in place.`,
	RunE: runBootstrap,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	runCmd.Flags().StringVar(
		&assetArchive, "assets", "",
		"Asset archive file name inside the root directory (default azure_devops.tgz)",
	)
	runCmd.Flags().StringVar(
		&pipelineDir, "pipeline-dir", "",
		"Pipeline assets directory name (default pipelines)",
	)
	runCmd.Flags().StringVar(
		&forecastFile, "forecast", "",
		"Forecast data file name (default jobs.json)",
	)
	runCmd.Flags().StringVar(
		&rootDir, "root", "",
		"Root working directory (default $LABSEED_HOME/bootstrap)",
	)
	runCmd.Flags().DurationVar(
		&pushDelay, "delay", 0,
		"Settle delay after each mutating API call (default 3s)",
	)
	runCmd.Flags().BoolVarP(
		&assumeYes, "yes", "y", false,
		"Continue without prompting when the project already exists",
	)
	rootCmd.AddCommand(runCmd)
}

func runBootstrap(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	client := azuredevops.NewClient(cfg.Organization, cfg.AccessToken, cfg.PushDelay)
	svc := application.NewBootstrapService(client, nil, nil)

	runErr := svc.Run(ctx, cfg, application.RunOptions{
		AssumeYes: assumeYes,
		Verbose:   verbose,
	})
	if errors.Is(runErr, application.ErrDeclined) {
		logger.Info("Nothing was changed")
		return runErr
	}
	return runErr
}

// buildConfig resolves the run configuration: defaults, then an optional
// config file, then flag overrides. Validation happens before any network
// call is issued.
func buildConfig() (*config.Config, error) {
	cfg := config.Default()

	cfgPath := configPath
	if cfgPath == "" {
		if found, findErr := config.FindConfigFile(); findErr == nil {
			cfgPath = found
		}
	}
	if cfgPath != "" {
		logger.Infof("Using config file: %s", cfgPath)
		loaded, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			return nil, fmt.Errorf("failed to load config: %w", loadErr)
		}
		cfg = loaded
	}

	if organization != "" {
		cfg.Organization = organization
	}
	if project != "" {
		cfg.Project = project
	}
	if accessToken != "" {
		cfg.AccessToken = config.ResolveToken(accessToken)
	}
	if assetArchive != "" {
		cfg.AssetArchive = assetArchive
	}
	if pipelineDir != "" {
		cfg.PipelineDir = pipelineDir
	}
	if forecastFile != "" {
		cfg.ForecastFile = forecastFile
	}
	if rootDir != "" {
		cfg.RootDir = rootDir
	}
	if pushDelay > 0 {
		cfg.PushDelay = pushDelay
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}
