package azuredevops

// agileProcessTemplateID is the well-known id of the Agile process template.
const agileProcessTemplateID = "adcc42ab-9882-485e-a3ed-7678f01f66bc"

// --- POST /_apis/projects ---

type projectCreateRequest struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Capabilities projectCapabilities `json:"capabilities"`
}

type projectCapabilities struct {
	VersionControl  versionControlCapability  `json:"versioncontrol"`
	ProcessTemplate processTemplateCapability `json:"processTemplate"`
}

type versionControlCapability struct {
	SourceControlType string `json:"sourceControlType"`
}

type processTemplateCapability struct {
	TemplateTypeID string `json:"templateTypeId"`
}

// operationReference is the asynchronous handle project creation returns.
type operationReference struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// --- POST /{project}/_apis/git/repositories/{repo}/pushes ---

type pushRequest struct {
	RefUpdates []refUpdate     `json:"refUpdates"`
	Commits    []commitRequest `json:"commits"`
}

type refUpdate struct {
	Name        string `json:"name"`
	OldObjectID string `json:"oldObjectId"`
}

type commitRequest struct {
	Comment string       `json:"comment"`
	Changes []itemChange `json:"changes"`
}

type itemChange struct {
	ChangeType string      `json:"changeType"`
	Item       changeItem  `json:"item"`
	NewContent itemContent `json:"newContent"`
}

type changeItem struct {
	Path string `json:"path"`
}

type itemContent struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type pushResponse struct {
	Repository struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"repository"`
}

// --- POST /{project}/_apis/pipelines ---

type pipelineCreateRequest struct {
	Folder        string                `json:"folder"`
	Name          string                `json:"name"`
	Configuration pipelineConfiguration `json:"configuration"`
}

type pipelineConfiguration struct {
	Type       string             `json:"type"`
	Path       string             `json:"path"`
	Repository pipelineRepository `json:"repository"`
}

type pipelineRepository struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
