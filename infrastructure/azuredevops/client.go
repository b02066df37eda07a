// Package azuredevops implements domain.Platform against the Azure DevOps
// REST API (api-version pinned per call).
package azuredevops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/devopslab/labseed/domain"
)

const (
	apiVersion = "7.0"

	// nullObjectID signals "new branch from an empty repository" in a push.
	nullObjectID = "0000000000000000000000000000000000000000"

	defaultTimeout = 30 * time.Second
)

// Client talks to one Azure DevOps organization with PAT authentication.
// After every successful mutating call it sleeps the configured settle delay;
// the service queues some mutations asynchronously and the delay is the
// workflow's only concession to that.
type Client struct {
	baseURL    string
	token      string
	delay      time.Duration
	httpClient *http.Client
	sleep      func(time.Duration) // injectable for tests
}

var _ domain.Platform = (*Client)(nil)

// NewClient creates a client for the given organization (a bare name or a
// full https://dev.azure.com/... URL) and personal access token.
func NewClient(organization, pat string, delay time.Duration) *Client {
	org := strings.TrimSuffix(organization, "/")
	if !strings.HasPrefix(org, "https://") && !strings.HasPrefix(org, "http://") {
		org = "https://dev.azure.com/" + org
	}

	return &Client{
		baseURL: org,
		token:   pat,
		delay:   delay,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			// A bad credential makes the service redirect to its sign-in
			// page; the redirect status must surface, not the sign-in page.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		sleep: time.Sleep,
	}
}

// BaseURL returns the base URL of the Azure DevOps organization.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProjectExists reports whether the project is present in the organization.
// Any non-2xx status, 404 included, means "not there" without an error.
func (c *Client) ProjectExists(ctx context.Context, name string) (bool, error) {
	endpoint := fmt.Sprintf("/_apis/projects/%s?api-version=%s", url.PathEscape(name), apiVersion)

	status, _, err := c.get(ctx, endpoint)
	if err != nil {
		return false, err
	}

	return status >= http.StatusOK && status < 300, nil
}

// CreateProject creates a Git-backed project using the fixed Agile process
// template. The response is an operation reference, not a materialized
// project; this client does not poll for completion.
func (c *Client) CreateProject(ctx context.Context, name string) error {
	body := projectCreateRequest{
		Name:        name,
		Description: "Demo/lab environment bootstrapped by labseed.",
		Capabilities: projectCapabilities{
			VersionControl: versionControlCapability{
				SourceControlType: "Git",
			},
			ProcessTemplate: processTemplateCapability{
				TemplateTypeID: agileProcessTemplateID,
			},
		},
	}

	endpoint := "/_apis/projects?api-version=" + apiVersion

	resp, err := c.post(ctx, endpoint, body)
	if err != nil {
		return err
	}

	var op operationReference
	if unmarshalErr := json.Unmarshal(resp, &op); unmarshalErr == nil && op.ID != "" {
		logger.Debugf("Project creation queued as operation %s (%s)", op.ID, op.Status)
	}

	return nil
}

// PushInitialCommit creates refs/heads/main from the empty object id on the
// project's default repository (same name as the project) with one commit
// holding all file changes.
func (c *Client) PushInitialCommit(
	ctx context.Context,
	project string,
	changes []domain.FileChange,
) (*domain.Repository, error) {
	fileChanges := make([]itemChange, 0, len(changes))
	for _, fc := range changes {
		fileChanges = append(fileChanges, itemChange{
			ChangeType: "add",
			Item:       changeItem{Path: fc.Path},
			NewContent: itemContent{
				Content:     fc.Content,
				ContentType: "rawtext",
			},
		})
	}

	body := pushRequest{
		RefUpdates: []refUpdate{
			{
				Name:        "refs/heads/main",
				OldObjectID: nullObjectID,
			},
		},
		Commits: []commitRequest{
			{
				Comment: "Initial commit",
				Changes: fileChanges,
			},
		},
	}

	endpoint := fmt.Sprintf(
		"/%s/_apis/git/repositories/%s/pushes?api-version=%s",
		url.PathEscape(project), url.PathEscape(project), apiVersion,
	)

	resp, err := c.post(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	var push pushResponse
	if unmarshalErr := json.Unmarshal(resp, &push); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse push response: %w", unmarshalErr)
	}

	return &domain.Repository{
		ID:   push.Repository.ID,
		Name: push.Repository.Name,
	}, nil
}

// CreateYAMLPipeline registers one pipeline-as-code definition against the
// bootstrapped repository.
func (c *Client) CreateYAMLPipeline(
	ctx context.Context,
	project string,
	def domain.PipelineDefinition,
) error {
	body := pipelineCreateRequest{
		Folder: def.Folder,
		Name:   def.Name,
		Configuration: pipelineConfiguration{
			Type: "yaml",
			Path: def.ConfigPath,
			Repository: pipelineRepository{
				ID:   def.Repository.ID,
				Name: def.Repository.Name,
				Type: "azureReposGit",
			},
		},
	}

	endpoint := fmt.Sprintf("/%s/_apis/pipelines?api-version=%s", url.PathEscape(project), apiVersion)

	_, err := c.post(ctx, endpoint, body)
	return err
}

// CreateClassicDefinition registers one classic (JSON-defined) build
// definition. The payload passes through as-is; the caller has already
// rewritten its repository identity.
func (c *Client) CreateClassicDefinition(
	ctx context.Context,
	project string,
	definition map[string]any,
) error {
	endpoint := fmt.Sprintf(
		"/%s/_apis/build/definitions?api-version=%s",
		url.PathEscape(project), apiVersion,
	)

	_, err := c.post(ctx, endpoint, definition)
	return err
}

// post issues an authenticated POST and returns the raw response body.
// Success means a status in the 200-209 range; anything else becomes a
// classified *APIError. After a success the settle delay is applied.
func (c *Client) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	fullURL := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", fullURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", fullURL, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 209 {
		return nil, classifyError(fullURL, resp.StatusCode, respBody)
	}

	c.sleep(c.delay)

	return respBody, nil
}

// get issues an authenticated GET and hands the status code back to the
// caller without classification.
func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	fullURL := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request to %s failed: %w", fullURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response from %s: %w", fullURL, err)
	}

	return resp.StatusCode, respBody, nil
}

// authorize sets basic auth with an empty username and the PAT as password.
func (c *Client) authorize(req *http.Request) {
	auth := base64.StdEncoding.EncodeToString([]byte(":" + c.token))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
}
