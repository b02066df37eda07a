package domain

// Repository identifies the Git repository the initial commit was pushed to.
// The id/name pair returned by the pushes endpoint must be threaded unchanged
// into every pipeline registration that follows.
type Repository struct {
	ID   string
	Name string
}

// FileChange represents a single "add" change inside the initial commit.
type FileChange struct {
	Path    string // repository path, rooted at "/"
	Content string // raw file text
}

// PipelineDefinition describes a YAML pipeline to be registered against the
// bootstrapped repository.
type PipelineDefinition struct {
	Name       string // pipeline name, the asset file's basename without extension
	Folder     string // pipeline folder on the service
	ConfigPath string // path of the YAML file inside the repository, rooted at "/"
	Repository Repository
}
