package application

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/devopslab/labseed/config"
	"github.com/devopslab/labseed/domain"
	"github.com/devopslab/labseed/infrastructure/archive"
)

// pipelineFolder is the fixed folder every YAML pipeline is registered under.
const pipelineFolder = `\lab`

// ErrDeclined is returned when the operator declines to continue against an
// already existing project. Nothing has been mutated at that point.
var ErrDeclined = errors.New("bootstrap cancelled: project left unchanged")

// ConfirmFunc asks the operator a yes/no question and reports the answer.
type ConfirmFunc func(prompt string) bool

// BootstrapService drives the full bootstrap workflow: ensure the project,
// push the extracted sources as the initial commit, register pipelines, and
// refresh the forecast data. Strictly sequential; the first error aborts
// everything that follows.
type BootstrapService struct {
	platform domain.Platform
	confirm  ConfirmFunc
	now      func() time.Time
}

// NewBootstrapService creates a service around the given platform. A nil
// confirm falls back to a stdin prompt, a nil now to the real clock.
func NewBootstrapService(
	platform domain.Platform,
	confirm ConfirmFunc,
	now func() time.Time,
) *BootstrapService {
	if confirm == nil {
		confirm = confirmOnStdin
	}
	if now == nil {
		now = time.Now
	}
	return &BootstrapService{
		platform: platform,
		confirm:  confirm,
		now:      now,
	}
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	AssumeYes bool // skip the confirmation prompt for existing projects
	Verbose   bool
}

// Run executes the workflow top to bottom. Internal steps never terminate
// the process; every failure propagates up to the caller.
func (s *BootstrapService) Run(
	ctx context.Context,
	cfg *config.Config,
	runOpts RunOptions,
) error {
	if runOpts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	if err := s.ensureProject(ctx, cfg, runOpts); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "labseed-*")
	if err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(tmpDir); removeErr != nil {
			logger.Warnf("Failed to clean up extraction directory %q: %v", tmpDir, removeErr)
		}
	}()

	repo, err := s.bootstrapRepository(ctx, cfg, tmpDir)
	if err != nil {
		return err
	}

	if err := s.registerYAMLPipelines(ctx, cfg, tmpDir, *repo); err != nil {
		return err
	}

	if err := s.registerClassicPipelines(ctx, cfg, *repo); err != nil {
		return err
	}

	if err := s.refreshForecast(cfg, tmpDir); err != nil {
		return err
	}

	logger.Infof("Project %q is ready", cfg.Project)
	return nil
}

// ensureProject checks for the target project and either creates it or asks
// the operator whether an existing one should be reused.
func (s *BootstrapService) ensureProject(
	ctx context.Context,
	cfg *config.Config,
	runOpts RunOptions,
) error {
	exists, err := s.platform.ProjectExists(ctx, cfg.Project)
	if err != nil {
		return fmt.Errorf("failed to check project %q: %w", cfg.Project, err)
	}

	if exists {
		logger.Infof("Project %q already exists", cfg.Project)
		if runOpts.AssumeYes {
			return nil
		}
		prompt := fmt.Sprintf("Project %q already exists. Continue? [y/N] ", cfg.Project)
		if !s.confirm(prompt) {
			return ErrDeclined
		}
		return nil
	}

	logger.Infof("Creating project %q...", cfg.Project)
	if err := s.platform.CreateProject(ctx, cfg.Project); err != nil {
		return fmt.Errorf("failed to create project %q: %w", cfg.Project, err)
	}

	return nil
}

// bootstrapRepository extracts the asset archive into tmpDir and pushes every
// matching source file as one initial commit on the default repository.
func (s *BootstrapService) bootstrapRepository(
	ctx context.Context,
	cfg *config.Config,
	tmpDir string,
) (*domain.Repository, error) {
	archivePath := filepath.Join(cfg.RootDir, cfg.AssetArchive)
	logger.Infof("Extracting %s...", archivePath)

	if err := archive.ExtractTarGz(archivePath, tmpDir); err != nil {
		return nil, fmt.Errorf("failed to extract asset archive: %w", err)
	}

	files, err := archive.ListSources(tmpDir)
	if err != nil {
		return nil, err
	}

	changes := make([]domain.FileChange, 0, len(files))
	for _, file := range files {
		content, readErr := os.ReadFile(file)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read %q: %w", file, readErr)
		}

		repoPath, pathErr := domain.RepositoryPath(tmpDir, file)
		if pathErr != nil {
			return nil, pathErr
		}

		changes = append(changes, domain.FileChange{
			Path:    repoPath,
			Content: string(content),
		})
	}

	logger.Infof("Pushing initial commit with %d files...", len(changes))

	repo, err := s.platform.PushInitialCommit(ctx, cfg.Project, changes)
	if err != nil {
		return nil, fmt.Errorf("failed to push initial commit: %w", err)
	}

	logger.Debugf("Pushed to repository %s (%s)", repo.Name, repo.ID)
	return repo, nil
}

// registerYAMLPipelines registers one pipeline per .yml file directly under
// <tmpDir>/<pipelineDir>/yml/, sequentially, aborting on the first failure.
func (s *BootstrapService) registerYAMLPipelines(
	ctx context.Context,
	cfg *config.Config,
	tmpDir string,
	repo domain.Repository,
) error {
	pattern := filepath.Join(tmpDir, cfg.PipelineDir, "yml", "*.yml")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to enumerate YAML pipelines: %w", err)
	}

	for _, file := range files {
		content, readErr := os.ReadFile(file)
		if readErr != nil {
			return fmt.Errorf("failed to read pipeline file %q: %w", file, readErr)
		}

		var parsed any
		if yamlErr := yaml.Unmarshal(content, &parsed); yamlErr != nil {
			return fmt.Errorf("pipeline file %q is not valid YAML: %w", file, yamlErr)
		}

		configPath, pathErr := domain.RepositoryPath(tmpDir, file)
		if pathErr != nil {
			return pathErr
		}

		def := domain.PipelineDefinition{
			Name:       strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)),
			Folder:     pipelineFolder,
			ConfigPath: configPath,
			Repository: repo,
		}

		logger.Infof("Registering YAML pipeline %q...", def.Name)
		if createErr := s.platform.CreateYAMLPipeline(ctx, cfg.Project, def); createErr != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", def.Name, createErr)
		}
	}

	return nil
}

// registerClassicPipelines registers one classic build definition per JSON
// file under <rootDir>/<pipelineDir>/classic/. These assets deliberately come
// from the root directory, not the extracted archive; the two sets are
// packaged differently by the surrounding tooling.
func (s *BootstrapService) registerClassicPipelines(
	ctx context.Context,
	cfg *config.Config,
	repo domain.Repository,
) error {
	pattern := filepath.Join(cfg.RootDir, cfg.PipelineDir, "classic", "*")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to enumerate classic pipelines: %w", err)
	}

	for _, file := range files {
		info, statErr := os.Stat(file)
		if statErr != nil {
			return fmt.Errorf("failed to stat %q: %w", file, statErr)
		}
		if info.IsDir() {
			continue
		}

		content, readErr := os.ReadFile(file)
		if readErr != nil {
			return fmt.Errorf("failed to read classic definition %q: %w", file, readErr)
		}

		var definition map[string]any
		if jsonErr := json.Unmarshal(content, &definition); jsonErr != nil {
			return fmt.Errorf("classic definition %q is not valid JSON: %w", file, jsonErr)
		}

		rebindRepository(definition, repo)

		logger.Infof("Registering classic pipeline from %s...", filepath.Base(file))
		if createErr := s.platform.CreateClassicDefinition(ctx, cfg.Project, definition); createErr != nil {
			return fmt.Errorf("failed to register classic definition %q: %w", file, createErr)
		}
	}

	return nil
}

// rebindRepository overwrites the definition's repository identity with the
// bootstrapped repository, leaving every other field untouched.
func rebindRepository(definition map[string]any, repo domain.Repository) {
	repoField, ok := definition["repository"].(map[string]any)
	if !ok {
		repoField = map[string]any{}
		definition["repository"] = repoField
	}
	repoField["name"] = repo.Name
	repoField["id"] = repo.ID
}

// refreshForecast rewrites the date tokens in the forecast file from the
// extraction directory and writes the result back under the root directory.
func (s *BootstrapService) refreshForecast(cfg *config.Config, tmpDir string) error {
	source := filepath.Join(tmpDir, cfg.ForecastFile)
	content, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("failed to read forecast file %q: %w", source, err)
	}

	refreshed := domain.RefreshForecastDates(string(content), s.now())

	target := filepath.Join(cfg.RootDir, cfg.ForecastFile)
	if writeErr := os.WriteFile(target, []byte(refreshed), 0o644); writeErr != nil {
		return fmt.Errorf("failed to write forecast file %q: %w", target, writeErr)
	}

	logger.Infof("Forecast dates refreshed in %s", target)
	return nil
}

// confirmOnStdin reads one line from stdin and accepts "y" or "yes".
func confirmOnStdin(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
