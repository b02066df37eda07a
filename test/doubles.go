// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations — no mock frameworks.
package testdoubles

import (
	"context"

	"github.com/devopslab/labseed/domain"
)

// ---------------------------------------------------------------------------
// SpyPlatform
// ---------------------------------------------------------------------------

// SpyPlatform implements domain.Platform as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyPlatform struct {
	// --- ProjectExists ---
	ExistsResult bool
	ExistsErr    error
	// spy: project names that were checked
	ExistsChecks []string

	// --- CreateProject ---
	CreateProjectErr error
	CreatedProjects  []string

	// --- PushInitialCommit ---
	PushedRepo *domain.Repository
	PushErr    error
	// spy: the change lists of every push issued
	Pushes [][]domain.FileChange

	// --- CreateYAMLPipeline ---
	YAMLPipelineErr error
	YAMLPipelines   []domain.PipelineDefinition

	// --- CreateClassicDefinition ---
	ClassicErr         error
	ClassicDefinitions []map[string]any
}

var _ domain.Platform = (*SpyPlatform)(nil)

func (p *SpyPlatform) ProjectExists(_ context.Context, name string) (bool, error) {
	p.ExistsChecks = append(p.ExistsChecks, name)
	return p.ExistsResult, p.ExistsErr
}

func (p *SpyPlatform) CreateProject(_ context.Context, name string) error {
	p.CreatedProjects = append(p.CreatedProjects, name)
	return p.CreateProjectErr
}

func (p *SpyPlatform) PushInitialCommit(
	_ context.Context, _ string, changes []domain.FileChange,
) (*domain.Repository, error) {
	p.Pushes = append(p.Pushes, changes)
	if p.PushErr != nil {
		return nil, p.PushErr
	}
	if p.PushedRepo != nil {
		return p.PushedRepo, nil
	}
	return &domain.Repository{ID: "repo-id", Name: "repo-name"}, nil
}

func (p *SpyPlatform) CreateYAMLPipeline(
	_ context.Context, _ string, def domain.PipelineDefinition,
) error {
	p.YAMLPipelines = append(p.YAMLPipelines, def)
	return p.YAMLPipelineErr
}

func (p *SpyPlatform) CreateClassicDefinition(
	_ context.Context, _ string, definition map[string]any,
) error {
	p.ClassicDefinitions = append(p.ClassicDefinitions, definition)
	return p.ClassicErr
}

// CallCount returns the total number of platform calls the spy has seen.
func (p *SpyPlatform) CallCount() int {
	return len(p.ExistsChecks) +
		len(p.CreatedProjects) +
		len(p.Pushes) +
		len(p.YAMLPipelines) +
		len(p.ClassicDefinitions)
}

// ---------------------------------------------------------------------------
// DummyPlatform
// ---------------------------------------------------------------------------

// DummyPlatform is a no-op implementation of domain.Platform.
type DummyPlatform struct{}

var _ domain.Platform = (*DummyPlatform)(nil)

func (d *DummyPlatform) ProjectExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (d *DummyPlatform) CreateProject(_ context.Context, _ string) error { return nil }

func (d *DummyPlatform) PushInitialCommit(
	_ context.Context, _ string, _ []domain.FileChange,
) (*domain.Repository, error) {
	return &domain.Repository{}, nil
}

func (d *DummyPlatform) CreateYAMLPipeline(
	_ context.Context, _ string, _ domain.PipelineDefinition,
) error {
	return nil
}

func (d *DummyPlatform) CreateClassicDefinition(
	_ context.Context, _ string, _ map[string]any,
) error {
	return nil
}
