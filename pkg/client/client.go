// Package client is a Go client for the BuildTrack REST API, including
// WidgetContext, a state container that mirrors one dashboard.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("buildtrack api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("buildtrack api: %s (status %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsConflict reports whether err is a 409 from a compare-and-swap save.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 30s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends token as a Bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetDashboard returns the dashboard stored under id, or nil when there is
// none. An empty id selects the default dashboard.
func (c *Client) GetDashboard(ctx context.Context, id string) (*v1.Dashboard, error) {
	path := "/api/dashboard"
	if id != "" {
		path += "?id=" + url.QueryEscape(id)
	}
	var resp v1.GetDashboardResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Dashboard, nil
}

// SaveDashboard replaces the stored dashboard. A non-nil expectedRevision
// makes the save fail with a conflict when the server has moved on.
func (c *Client) SaveDashboard(ctx context.Context, d *v1.Dashboard, expectedRevision *int64) (*v1.Dashboard, error) {
	var resp v1.SaveDashboardResponse
	req := v1.SaveDashboardRequest{Dashboard: d, ExpectedRevision: expectedRevision}
	if err := c.do(ctx, http.MethodPost, "/api/dashboard", req, &resp); err != nil {
		return nil, err
	}
	return resp.Dashboard, nil
}

func (c *Client) ListDashboards(ctx context.Context) ([]v1.Dashboard, error) {
	var resp v1.ListDashboardsResponse
	if err := c.do(ctx, http.MethodGet, "/api/dashboards", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Dashboards, nil
}

func (c *Client) ListWidgets(ctx context.Context) ([]v1.WidgetDefinition, error) {
	var resp v1.ListWidgetsResponse
	if err := c.do(ctx, http.MethodGet, "/api/widgets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Widgets, nil
}

func (c *Client) GetWidget(ctx context.Context, widgetType string) (*v1.WidgetDefinition, error) {
	var def v1.WidgetDefinition
	if err := c.do(ctx, http.MethodGet, "/api/widgets/"+url.PathEscape(widgetType), nil, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func (c *Client) SuggestProjectType(ctx context.Context, name, description string) (*v1.SuggestProjectTypeResponse, error) {
	var resp v1.SuggestProjectTypeResponse
	req := v1.SuggestProjectTypeRequest{Name: name, Description: description}
	if err := c.do(ctx, http.MethodPost, "/api/projects/suggest-type", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp v1.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			apiErr.Code = errResp.Error
			apiErr.Message = errResp.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
