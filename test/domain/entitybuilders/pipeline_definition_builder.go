// Package entitybuilders provides fluent builders for domain entities used in tests.
package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/devopslab/labseed/domain"
)

// PipelineDefinitionBuilder helps create test pipeline definitions with a fluent interface.
type PipelineDefinitionBuilder struct {
	*testkit.BaseBuilder
	name       string
	folder     string
	configPath string
	repository domain.Repository
}

// NewPipelineDefinitionBuilder creates a new builder with sensible defaults.
func NewPipelineDefinitionBuilder() *PipelineDefinitionBuilder {
	return &PipelineDefinitionBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "build",
		folder:      `\lab`,
		configPath:  "/pipelines/yml/build.yml",
		repository:  domain.Repository{ID: "repo-id", Name: "repo-name"},
	}
}

// WithName sets the pipeline name.
func (b *PipelineDefinitionBuilder) WithName(name string) *PipelineDefinitionBuilder {
	b.name = name
	return b
}

// WithFolder sets the pipeline folder.
func (b *PipelineDefinitionBuilder) WithFolder(folder string) *PipelineDefinitionBuilder {
	b.folder = folder
	return b
}

// WithConfigPath sets the repository path of the YAML file.
func (b *PipelineDefinitionBuilder) WithConfigPath(path string) *PipelineDefinitionBuilder {
	b.configPath = path
	return b
}

// WithRepository sets the repository binding.
func (b *PipelineDefinitionBuilder) WithRepository(repo domain.Repository) *PipelineDefinitionBuilder {
	b.repository = repo
	return b
}

// Build creates the definition (satisfies testkit.Builder interface).
func (b *PipelineDefinitionBuilder) Build() interface{} {
	return b.BuildPipelineDefinition()
}

// BuildPipelineDefinition creates the definition with a concrete return type.
func (b *PipelineDefinitionBuilder) BuildPipelineDefinition() domain.PipelineDefinition {
	return domain.PipelineDefinition{
		Name:       b.name,
		Folder:     b.folder,
		ConfigPath: b.configPath,
		Repository: b.repository,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *PipelineDefinitionBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "build"
	b.folder = `\lab`
	b.configPath = "/pipelines/yml/build.yml"
	b.repository = domain.Repository{ID: "repo-id", Name: "repo-name"}
	return b
}

// Clone creates a deep copy of the PipelineDefinitionBuilder.
func (b *PipelineDefinitionBuilder) Clone() testkit.Builder {
	return &PipelineDefinitionBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		folder:      b.folder,
		configPath:  b.configPath,
		repository:  b.repository,
	}
}
