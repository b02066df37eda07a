package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Default values for everything the CLI does not require explicitly.
const (
	DefaultAssetArchive = "azure_devops.tgz"
	DefaultPipelineDir  = "pipelines"
	DefaultForecastFile = "jobs.json"
	DefaultPushDelay    = 3 * time.Second

	// rootEnvVar points at the directory holding the asset archive and the
	// classic pipeline definitions; the bootstrap files live in a fixed
	// subdirectory underneath it.
	rootEnvVar  = "LABSEED_HOME"
	rootSubpath = "bootstrap"
)

// Config is the immutable set of values a single bootstrap run operates on.
// It is resolved once, up front, and passed explicitly into every operation.
type Config struct {
	Organization string
	Project      string
	AccessToken  string
	AssetArchive string
	PipelineDir  string
	RootDir      string
	ForecastFile string
	PushDelay    time.Duration
}

// fileConfig is the on-disk schema of labseed.yaml. The push delay is a
// duration string ("3s"); everything else maps one to one onto Config.
type fileConfig struct {
	Organization string `yaml:"organization"`
	Project      string `yaml:"project"`
	AccessToken  string `yaml:"access_token"`
	AssetArchive string `yaml:"assets"`
	PipelineDir  string `yaml:"pipeline_dir"`
	RootDir      string `yaml:"root_dir"`
	ForecastFile string `yaml:"forecast_file"`
	PushDelay    string `yaml:"push_delay"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Default returns a configuration populated with every non-required value.
func Default() *Config {
	return &Config{
		AssetArchive: DefaultAssetArchive,
		PipelineDir:  DefaultPipelineDir,
		RootDir:      DefaultRootDir(),
		ForecastFile: DefaultForecastFile,
		PushDelay:    DefaultPushDelay,
	}
}

// DefaultRootDir derives the working root from the LABSEED_HOME environment
// variable, falling back to the current directory when it is unset.
func DefaultRootDir() string {
	home := os.Getenv(rootEnvVar)
	if home == "" {
		home = "."
	}
	return filepath.Join(home, rootSubpath)
}

// Load reads a configuration file on top of the defaults, expanding
// environment variables and resolving token file paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var file fileConfig
	if unmarshalErr := yaml.Unmarshal(data, &file); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg := Default()
	if file.Organization != "" {
		cfg.Organization = file.Organization
	}
	if file.Project != "" {
		cfg.Project = file.Project
	}
	if file.AccessToken != "" {
		cfg.AccessToken = ResolveToken(file.AccessToken)
	}
	if file.AssetArchive != "" {
		cfg.AssetArchive = file.AssetArchive
	}
	if file.PipelineDir != "" {
		cfg.PipelineDir = file.PipelineDir
	}
	if file.RootDir != "" {
		cfg.RootDir = file.RootDir
	}
	if file.ForecastFile != "" {
		cfg.ForecastFile = file.ForecastFile
	}
	if file.PushDelay != "" {
		delay, parseErr := time.ParseDuration(file.PushDelay)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse push_delay %q: %w", file.PushDelay, parseErr)
		}
		cfg.PushDelay = delay
	}

	return cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".labseed.yaml",
		".labseed.yml",
		"labseed.yaml",
		"labseed.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// Validate checks for required values. It runs before any network call is
// issued; a failure here guarantees no remote side effect has happened.
func (c *Config) Validate() error {
	if c.Organization == "" {
		return errors.New("organization is required (set --organization)")
	}
	if c.Project == "" {
		return errors.New("project is required (set --project)")
	}
	if c.AccessToken == "" {
		return errors.New(
			"access token is required (set --access-token inline, via ${ENV_VAR}, or as file path)",
		)
	}
	if c.PushDelay < 0 {
		return fmt.Errorf("push delay must not be negative, got %s", c.PushDelay)
	}
	return nil
}
