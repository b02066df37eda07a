package domain

import "context"

// Platform abstracts the Azure DevOps REST surface the bootstrap workflow
// consumes. Every mutating call is expected to be followed by the
// implementation's configured settle delay before it returns.
type Platform interface {
	// ProjectExists reports whether the project is already present in the
	// organization. Any non-2xx status (including 404) yields false without
	// an error; only transport failures are reported as errors.
	ProjectExists(ctx context.Context, name string) (bool, error)

	// CreateProject creates a Git-backed project with the fixed lab
	// description and process template. The service queues creation
	// asynchronously; callers must not assume the project is immediately
	// queryable.
	CreateProject(ctx context.Context, name string) error

	// PushInitialCommit creates refs/heads/main from the empty object id on
	// the project's default repository with the given file changes, and
	// returns the repository identity from the push response.
	PushInitialCommit(ctx context.Context, project string, changes []FileChange) (*Repository, error)

	// CreateYAMLPipeline registers one pipeline-as-code definition.
	CreateYAMLPipeline(ctx context.Context, project string, def PipelineDefinition) error

	// CreateClassicDefinition registers one classic build definition. The
	// payload is an opaque JSON object whose repository identity has already
	// been rewritten by the caller.
	CreateClassicDefinition(ctx context.Context, project string, definition map[string]any) error
}
