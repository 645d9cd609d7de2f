// Package departments talks to the platform's department API. The only call
// this service consumes is the switch-department endpoint, which resolves a
// user's roles and access rights within a target department.
package departments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Switcher is the consumer-side contract for the switch-department call.
// Navigation state depends on this interface so tests can substitute a mock
// endpoint.
type Switcher interface {
	SwitchDepartment(ctx context.Context, departmentID string) (*SwitchResult, error)
}

// Client calls the department API over HTTP. It imposes no timeout of its
// own; cancellation and deadlines belong to the caller's context and the
// configured http.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a department API client. A nil httpClient gets a default
// client with an instrumented transport.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SwitchDepartment resolves the user's context within the target department.
func (c *Client) SwitchDepartment(ctx context.Context, departmentID string) (*SwitchResult, error) {
	body, err := json.Marshal(switchRequest{DepartmentID: departmentID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode switch request: %w", err)
	}

	url := c.baseURL + "/api/v1/departments/switch"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build switch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("switch department call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(departmentID, resp)
	}

	var result SwitchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode switch response: %w", err)
	}
	return &result, nil
}

// errorFromResponse maps an error status to a human-readable message,
// preferring the endpoint's own error body when it has one.
func (c *Client) errorFromResponse(departmentID string, resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return fmt.Errorf("switch to department %s rejected: %s", departmentID, body.Error)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("department %s does not exist", departmentID)
	case http.StatusForbidden:
		return fmt.Errorf("not a member of department %s", departmentID)
	default:
		return fmt.Errorf("switch to department %s failed with status %d", departmentID, resp.StatusCode)
	}
}
