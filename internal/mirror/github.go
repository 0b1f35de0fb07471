// Package mirror appends records to a JSON file in a GitHub repository via
// the contents API. It is an off-site backup channel, not a primary store.
package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GitHubMirror writes to a single JSON file holding an array of records.
// Updates carry the blob SHA from the preceding read, so a concurrent write
// makes the API reject ours instead of silently clobbering it.
//
// The token is injected from the environment; it is never embedded in code
// or shipped to clients.
type GitHubMirror struct {
	httpClient *http.Client
	baseURL    string
	token      string
	repo       string // owner/name
	filePath   string
	branch     string
}

// NewGitHubMirror creates a new GitHubMirror.
func NewGitHubMirror(token, repo, filePath, branch string) *GitHubMirror {
	return &GitHubMirror{
		token:    token,
		repo:     repo,
		filePath: filePath,
		branch:   branch,
		baseURL:  "https://api.github.com",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetBaseURL overrides the API endpoint. Tests point this at a fake.
func (m *GitHubMirror) SetBaseURL(url string) {
	m.baseURL = url
}

// contentsResponse is the subset of the contents API response we use.
type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// Append reads the mirror file, appends record to its JSON array and writes
// it back with the read SHA. A stale SHA surfaces as an API error from the
// PUT; the caller decides whether to retry.
func (m *GitHubMirror) Append(ctx context.Context, record interface{}) error {
	current, sha, err := m.fetch(ctx)
	if err != nil {
		return fmt.Errorf("reading mirror file: %w", err)
	}

	current = append(current, record)
	if err := m.put(ctx, current, sha); err != nil {
		return fmt.Errorf("writing mirror file: %w", err)
	}
	return nil
}

// fetch downloads and decodes the mirror file, returning its records and
// blob SHA.
func (m *GitHubMirror) fetch(ctx context.Context) ([]interface{}, string, error) {
	url := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", m.baseURL, m.repo, m.filePath, m.branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "token "+m.token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, string(body))
	}

	var file contentsResponse
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, "", fmt.Errorf("parsing contents response: %w", err)
	}

	// The API base64-encodes content with embedded newlines.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("decoding file content: %w", err)
	}

	var records []interface{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, "", fmt.Errorf("parsing mirror file: %w", err)
	}
	return records, file.SHA, nil
}

// put uploads the records array with the expected blob SHA.
func (m *GitHubMirror) put(ctx context.Context, records []interface{}, sha string) error {
	pretty, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	payload := map[string]string{
		"message": "Update " + m.filePath,
		"content": base64.StdEncoding.EncodeToString(pretty),
		"sha":     sha,
		"branch":  m.branch,
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/repos/%s/contents/%s", m.baseURL, m.repo, m.filePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+m.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
