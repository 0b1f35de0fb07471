package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGitHubMirror_Append_CarriesSHAFromRead(t *testing.T) {
	existing := base64.StdEncoding.EncodeToString([]byte(`[{"note":"first"}]`))

	var putBody struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
		Branch  string `json:"branch"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("ref") != "main" {
				t.Errorf("expected ref=main, got %s", r.URL.Query().Get("ref"))
			}
			fmt.Fprintf(w, `{"content":%q,"sha":"abc123"}`, existing)
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&putBody); err != nil {
				t.Errorf("bad PUT body: %v", err)
			}
			fmt.Fprint(w, `{}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()

	m := NewGitHubMirror("test-token", "owner/repo", "data.json", "main")
	m.SetBaseURL(server.URL)

	if err := m.Append(context.Background(), map[string]string{"note": "second"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if putBody.SHA != "abc123" {
		t.Errorf("expected SHA from read, got %q", putBody.SHA)
	}
	if putBody.Branch != "main" {
		t.Errorf("expected branch main, got %q", putBody.Branch)
	}

	raw, err := base64.StdEncoding.DecodeString(putBody.Content)
	if err != nil {
		t.Fatalf("PUT content is not base64: %v", err)
	}
	var records []map[string]string
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("PUT content is not a JSON array: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1]["note"] != "second" {
		t.Errorf("expected appended record, got %+v", records[1])
	}
}

func TestGitHubMirror_Append_ReadFailure_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	m := NewGitHubMirror("test-token", "owner/repo", "data.json", "main")
	m.SetBaseURL(server.URL)

	if err := m.Append(context.Background(), map[string]string{"note": "x"}); err == nil {
		t.Error("expected an error when the read fails")
	}
}

func TestGitHubMirror_Append_StaleSHA_SurfacesConflict(t *testing.T) {
	existing := base64.StdEncoding.EncodeToString([]byte(`[]`))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprintf(w, `{"content":%q,"sha":"stale"}`, existing)
		case http.MethodPut:
			http.Error(w, `{"message":"data.json does not match"}`, http.StatusConflict)
		}
	}))
	defer server.Close()

	m := NewGitHubMirror("test-token", "owner/repo", "data.json", "main")
	m.SetBaseURL(server.URL)

	if err := m.Append(context.Background(), map[string]string{"note": "x"}); err == nil {
		t.Error("expected the conflict to surface as an error")
	}
}

func TestGitHubMirror_Append_DecodesNewlineWrappedContent(t *testing.T) {
	// The contents API wraps base64 at 60 columns.
	encoded := base64.StdEncoding.EncodeToString([]byte(`[{"note":"wrapped entry with enough length to force a line break in the response"}]`))
	wrapped := encoded[:60] + "\n" + encoded[60:]

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprintf(w, `{"content":%q,"sha":"abc"}`, wrapped)
		case http.MethodPut:
			fmt.Fprint(w, `{}`)
		}
	}))
	defer server.Close()

	m := NewGitHubMirror("test-token", "owner/repo", "data.json", "main")
	m.SetBaseURL(server.URL)

	if err := m.Append(context.Background(), map[string]string{"note": "new"}); err != nil {
		t.Fatalf("append failed on wrapped content: %v", err)
	}
}
