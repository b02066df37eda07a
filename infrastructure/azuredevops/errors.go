package azuredevops

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-success response from the Azure DevOps REST API. Message
// carries the service's own explanation where one could be extracted;
// Guidance carries a status-specific hint for the operator.
type APIError struct {
	URL        string
	StatusCode int
	Message    string
	Guidance   string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Guidance != "" {
		msg += " (" + e.Guidance + ")"
	}
	return msg
}

// classifyError turns a non-2xx response into an *APIError with the most
// useful message available: a guidance line for the statuses the service is
// known to answer with, the body's message field where parseable, and the
// raw body text as a last resort.
func classifyError(url string, status int, body []byte) *APIError {
	apiErr := &APIError{
		URL:        url,
		StatusCode: status,
		Message:    extractMessage(body),
	}

	switch status {
	case http.StatusUnauthorized:
		apiErr.Guidance = "the access token is not authorized for this operation; " +
			"check that it has project and code read/write scopes"
	case http.StatusFound:
		apiErr.Guidance = "the service redirected the request; " +
			"check that the organization name and access token are correct"
	}

	return apiErr
}

// extractMessage pulls the "message" field out of an error response body,
// falling back to the trimmed raw text when the body is not parseable JSON.
func extractMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}
