package azuredevops //nolint:testpackage // tests unexported request plumbing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devopslab/labseed/domain"
)

// newTestClient points a client at the given test server with an instant,
// call-counting sleep.
func newTestClient(server *httptest.Server, slept *[]time.Duration) *Client {
	c := NewClient(server.URL, "test-pat", 3*time.Second)
	c.sleep = func(d time.Duration) {
		if slept != nil {
			*slept = append(*slept, d)
		}
	}
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("should expand a bare organization name to a dev.azure.com URL", func(t *testing.T) {
		t.Parallel()

		// given
		organization := "MyOrg"

		// when
		c := NewClient(organization, "pat", time.Second)

		// then
		assert.Equal(t, "https://dev.azure.com/MyOrg", c.BaseURL())
	})

	t.Run("should keep a full URL, trimming the trailing slash", func(t *testing.T) {
		t.Parallel()

		// given
		organization := "https://dev.azure.com/MyOrg/"

		// when
		c := NewClient(organization, "pat", time.Second)

		// then
		assert.Equal(t, "https://dev.azure.com/MyOrg", c.BaseURL())
	})

	t.Run("should keep a plain http URL absolute", func(t *testing.T) {
		t.Parallel()

		// given
		organization := "http://127.0.0.1:8080"

		// when
		c := NewClient(organization, "pat", time.Second)

		// then
		assert.Equal(t, "http://127.0.0.1:8080", c.BaseURL())
	})
}

func TestProjectExists(t *testing.T) {
	t.Parallel()

	t.Run("should return true for a 2xx response", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/_apis/projects/SmartLab", r.URL.Path)
				w.WriteHeader(http.StatusOK)
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)

		// when
		exists, err := c.ProjectExists(context.Background(), "SmartLab")

		// then
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("should return false for a 404 without an error", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)

		// when
		exists, err := c.ProjectExists(context.Background(), "SmartLab")

		// then
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("should report false when redirected to a sign-in page", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/signin" {
					w.WriteHeader(http.StatusOK)
					return
				}
				http.Redirect(w, r, "/signin", http.StatusFound)
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)

		// when
		exists, err := c.ProjectExists(context.Background(), "SmartLab")

		// then
		require.NoError(t, err)
		assert.False(t, exists, "a sign-in redirect must not read as an existing project")
	})

	t.Run("should send basic auth with an empty username", func(t *testing.T) {
		t.Parallel()

		// given
		var authUser, authPass string
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				authUser, authPass, _ = r.BasicAuth()
				w.WriteHeader(http.StatusOK)
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)

		// when
		_, err := c.ProjectExists(context.Background(), "SmartLab")

		// then
		require.NoError(t, err)
		assert.Empty(t, authUser)
		assert.Equal(t, "test-pat", authPass)
	})
}

func TestCreateProject(t *testing.T) {
	t.Parallel()

	t.Run("should post the fixed capabilities payload", func(t *testing.T) {
		t.Parallel()

		// given
		var body map[string]any
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/_apis/projects", r.URL.Path)
				raw, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(raw, &body))
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte(`{"id":"op-1","status":"queued"}`))
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)

		// when
		err := c.CreateProject(context.Background(), "SmartLab")

		// then
		require.NoError(t, err)
		assert.Equal(t, "SmartLab", body["name"])
		capabilities := body["capabilities"].(map[string]any)
		versionControl := capabilities["versioncontrol"].(map[string]any)
		assert.Equal(t, "Git", versionControl["sourceControlType"])
		template := capabilities["processTemplate"].(map[string]any)
		assert.Equal(t, agileProcessTemplateID, template["templateTypeId"])
	})

	t.Run("should apply the settle delay after a successful call", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{}`))
			},
		))
		defer server.Close()
		var slept []time.Duration
		c := newTestClient(server, &slept)

		// when
		err := c.CreateProject(context.Background(), "SmartLab")

		// then
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{3 * time.Second}, slept)
	})

	t.Run("should surface credential guidance on a sign-in redirect", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/signin" {
					w.WriteHeader(http.StatusOK)
					_, _ = w.Write([]byte(`{}`))
					return
				}
				http.Redirect(w, r, "/signin", http.StatusFound)
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)

		// when
		err := c.CreateProject(context.Background(), "SmartLab")

		// then
		require.Error(t, err)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusFound, apiErr.StatusCode)
		assert.Contains(t, apiErr.Guidance, "organization name and access token")
	})

	t.Run("should surface permission guidance on 401", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		))
		defer server.Close()
		var slept []time.Duration
		c := newTestClient(server, &slept)

		// when
		err := c.CreateProject(context.Background(), "SmartLab")

		// then
		require.Error(t, err)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Contains(t, apiErr.Guidance, "not authorized")
		assert.Empty(t, slept, "failed calls must not wait the settle delay")
	})
}

func TestPushInitialCommit(t *testing.T) {
	t.Parallel()

	t.Run("should push one ref update from the null object id", func(t *testing.T) {
		t.Parallel()

		// given
		var body pushRequest
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/SmartLab/_apis/git/repositories/SmartLab/pushes", r.URL.Path)
				raw, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(raw, &body))
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"repository":{"id":"repo-guid","name":"SmartLab"}}`))
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)
		changes := []domain.FileChange{
			{Path: "/App.sln", Content: "solution"},
			{Path: "/src/Program.cs", Content: "class Program {}"},
		}

		// when
		repo, err := c.PushInitialCommit(context.Background(), "SmartLab", changes)

		// then
		require.NoError(t, err)
		assert.Equal(t, &domain.Repository{ID: "repo-guid", Name: "SmartLab"}, repo)
		require.Len(t, body.RefUpdates, 1)
		assert.Equal(t, "refs/heads/main", body.RefUpdates[0].Name)
		assert.Equal(t, nullObjectID, body.RefUpdates[0].OldObjectID)
		require.Len(t, body.Commits, 1)
		require.Len(t, body.Commits[0].Changes, 2)
		assert.Equal(t, "add", body.Commits[0].Changes[0].ChangeType)
		assert.Equal(t, "/App.sln", body.Commits[0].Changes[0].Item.Path)
		assert.Equal(t, "rawtext", body.Commits[0].Changes[0].NewContent.ContentType)
	})

	t.Run("should send an empty change list as-is", func(t *testing.T) {
		t.Parallel()

		// given
		var body pushRequest
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				raw, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(raw, &body))
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"repository":{"id":"repo-guid","name":"SmartLab"}}`))
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)

		// when
		_, err := c.PushInitialCommit(context.Background(), "SmartLab", nil)

		// then
		require.NoError(t, err)
		require.Len(t, body.Commits, 1)
		assert.Empty(t, body.Commits[0].Changes)
	})
}

func TestCreateYAMLPipeline(t *testing.T) {
	t.Parallel()

	t.Run("should bind the pipeline to the pushed repository", func(t *testing.T) {
		t.Parallel()

		// given
		var body pipelineCreateRequest
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/SmartLab/_apis/pipelines", r.URL.Path)
				raw, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(raw, &body))
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"id":7}`))
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)
		def := domain.PipelineDefinition{
			Name:       "ci",
			Folder:     `\lab`,
			ConfigPath: "/pipelines/yml/ci.yml",
			Repository: domain.Repository{ID: "repo-guid", Name: "SmartLab"},
		}

		// when
		err := c.CreateYAMLPipeline(context.Background(), "SmartLab", def)

		// then
		require.NoError(t, err)
		assert.Equal(t, "ci", body.Name)
		assert.Equal(t, "yaml", body.Configuration.Type)
		assert.Equal(t, "/pipelines/yml/ci.yml", body.Configuration.Path)
		assert.Equal(t, "repo-guid", body.Configuration.Repository.ID)
		assert.Equal(t, "SmartLab", body.Configuration.Repository.Name)
		assert.Equal(t, "azureReposGit", body.Configuration.Repository.Type)
	})
}

func TestCreateClassicDefinition(t *testing.T) {
	t.Parallel()

	t.Run("should pass the definition through unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		var body map[string]any
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/SmartLab/_apis/build/definitions", r.URL.Path)
				raw, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(raw, &body))
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"id":12}`))
			},
		))
		defer server.Close()
		c := newTestClient(server, nil)
		definition := map[string]any{
			"name":       "classic-build",
			"repository": map[string]any{"id": "repo-guid", "name": "SmartLab"},
			"queue":      map[string]any{"name": "default"},
		}

		// when
		err := c.CreateClassicDefinition(context.Background(), "SmartLab", definition)

		// then
		require.NoError(t, err)
		assert.Equal(t, "classic-build", body["name"])
		assert.Equal(t, map[string]any{"name": "default"}, body["queue"])
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		body         string
		wantMessage  string
		wantGuidance string
	}{
		{
			name:         "should add permission guidance for 401",
			status:       http.StatusUnauthorized,
			body:         `{"message":"TF400813: not authorized"}`,
			wantMessage:  "TF400813: not authorized",
			wantGuidance: "not authorized for this operation",
		},
		{
			name:         "should add credential guidance for 302",
			status:       http.StatusFound,
			body:         "",
			wantGuidance: "organization name and access token",
		},
		{
			name:        "should extract the message field for 404",
			status:      http.StatusNotFound,
			body:        `{"message":"The resource cannot be found."}`,
			wantMessage: "The resource cannot be found.",
		},
		{
			name:        "should fall back to the raw body text",
			status:      http.StatusBadRequest,
			body:        "not json at all",
			wantMessage: "not json at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			url := "https://dev.azure.com/MyOrg/_apis/projects"

			// when
			apiErr := classifyError(url, tt.status, []byte(tt.body))

			// then
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, url, apiErr.URL)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, apiErr.Message)
			}
			if tt.wantGuidance != "" {
				assert.Contains(t, apiErr.Guidance, tt.wantGuidance)
			}
			assert.Contains(t, apiErr.Error(), url)
		})
	}
}
