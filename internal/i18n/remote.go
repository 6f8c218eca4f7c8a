package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const remoteTimeout = 10 * time.Second

// RemoteSource fetches bundles from a hosted translation-management service:
//
//	GET {baseURL}/projects/{projectID}/locales/{locale}/{namespace}.json
//	Authorization: Bearer {apiKey}
//
// The response is a nested JSON document, flattened like a local bundle.
type RemoteSource struct {
	baseURL   string
	apiKey    string
	projectID string
	client    *http.Client
}

func NewRemoteSource(baseURL, apiKey, projectID string, client *http.Client) *RemoteSource {
	if client == nil {
		client = &http.Client{Timeout: remoteTimeout}
	}
	return &RemoteSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		projectID: projectID,
		client:    client,
	}
}

func (s *RemoteSource) Load(ctx context.Context, locale, namespace string) (Messages, error) {
	endpoint := fmt.Sprintf("%s/projects/%s/locales/%s/%s.json",
		s.baseURL, url.PathEscape(s.projectID), url.PathEscape(locale), url.PathEscape(namespace))
	var doc map[string]interface{}
	if err := s.get(ctx, endpoint, &doc); err != nil {
		return nil, err
	}
	return Flatten(doc), nil
}

// Locales asks the service which locales the project has.
func (s *RemoteSource) Locales(ctx context.Context) ([]string, error) {
	var body struct {
		Locales []string `json:"locales"`
	}
	endpoint := fmt.Sprintf("%s/projects/%s/locales", s.baseURL, url.PathEscape(s.projectID))
	if err := s.get(ctx, endpoint, &body); err != nil {
		return nil, err
	}
	return body.Locales, nil
}

func (s *RemoteSource) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("translation service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrBundleNotFound
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("translation service: %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("translation service: decode: %w", err)
	}
	return nil
}
