package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gavelhq/gavel/internal/review"
)

// newTestClient points a Client at an in-process API stub.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Client{
		token:   "test-token",
		apiURL:  server.URL,
		httpCli: server.Client(),
	}
}

func TestGetPRDiff(t *testing.T) {
	const wantDiff = "diff --git a/file.go b/file.go\n"

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3.diff" {
			t.Errorf("Accept = %q, want the diff media type", got)
		}
		if r.URL.Path != "/repos/owner/repo/pulls/42" {
			t.Errorf("Path = %q, want the PR endpoint", r.URL.Path)
		}
		w.Write([]byte(wantDiff))
	})

	diff, err := c.GetPRDiff(context.Background(), "owner", "repo", 42)
	if err != nil {
		t.Fatalf("GetPRDiff: %v", err)
	}
	if diff != wantDiff {
		t.Errorf("diff = %q, want %q", diff, wantDiff)
	}
}

func TestGetPRDiff_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := c.GetPRDiff(context.Background(), "owner", "repo", 99)
	if err == nil {
		t.Fatal("expected an error for a missing PR")
	}
	if err.Error() != "PR #99 not found in owner/repo" {
		t.Errorf("error = %q", err)
	}
}

func TestGetPRDiff_BadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	_, err := c.GetPRDiff(context.Background(), "owner", "repo", 1)
	if err == nil {
		t.Fatal("expected an error for rejected credentials")
	}
	if err.Error() != `authentication failed: {"message":"Bad credentials"}` {
		t.Errorf("error = %q", err)
	}
}

func TestGetPRFiles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/pulls/42/files" {
			t.Errorf("Path = %q, want the files endpoint", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]PRFile{
			{Filename: "cmd/gavel/main.go"},
			{Filename: "internal/review/engine.go"},
		})
	})

	files, err := c.GetPRFiles(context.Background(), "owner", "repo", 42)
	if err != nil {
		t.Fatalf("GetPRFiles: %v", err)
	}
	want := "cmd/gavel/main.go,internal/review/engine.go"
	if got := strings.Join(files, ","); got != want {
		t.Errorf("files = %q, want %q", got, want)
	}
}

func TestPostReview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/repos/owner/repo/pulls/42/reviews" {
			t.Errorf("Path = %q, want the reviews endpoint", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		var rev ReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&rev); err != nil {
			t.Fatalf("decoding posted review: %v", err)
		}
		if rev.Event != "COMMENT" || len(rev.Comments) != 1 {
			t.Errorf("posted review = %+v, want one COMMENT with one inline comment", rev)
		}

		w.Write([]byte(`{"id":1}`))
	})

	err := c.PostReview(context.Background(), "owner", "repo", 42, ReviewRequest{
		Body:  "summary",
		Event: "COMMENT",
		Comments: []ReviewComment{
			{Path: "main.go", Line: 10, Body: "issue here"},
		},
	})
	if err != nil {
		t.Fatalf("PostReview: %v", err)
	}
}

func TestPostReview_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(422)
		w.Write([]byte(`{"message":"line must be part of the diff"}`))
	})

	err := c.PostReview(context.Background(), "owner", "repo", 7, ReviewRequest{Event: "COMMENT"})
	if err == nil {
		t.Fatal("expected an error for a rejected review")
	}
	if !strings.Contains(err.Error(), "422") {
		t.Errorf("error should surface the rejection status: %v", err)
	}
}

func TestParseRemoteURL(t *testing.T) {
	valid := map[string]string{
		"https://github.com/gavelhq/gavel.git": "gavelhq/gavel",
		"https://github.com/gavelhq/gavel":     "gavelhq/gavel",
		"git@github.com:gavelhq/gavel.git":     "gavelhq/gavel",
		"git@github.com:gavelhq/gavel":         "gavelhq/gavel",
	}
	for url, want := range valid {
		owner, repo, err := ParseRemoteURL(url)
		if err != nil {
			t.Errorf("ParseRemoteURL(%q): %v", url, err)
			continue
		}
		if got := owner + "/" + repo; got != want {
			t.Errorf("ParseRemoteURL(%q) = %q, want %q", url, got, want)
		}
	}

	if _, _, err := ParseRemoteURL("not-a-url"); err == nil {
		t.Error("expected an error for an unparseable remote")
	}
}

func TestBuildReview(t *testing.T) {
	result := &review.ReviewResult{
		ReviewType: review.ReviewTypeDiff,
		Files: []review.FileReview{
			{
				Path:          "main.go",
				Dangers:       []review.Finding{{Line: 10, Description: "Possible nil dereference"}},
				Issues:        []review.Finding{},
				Suggestions:   []review.Finding{},
				GoodPractices: []review.Finding{{Line: 2, Description: "Errors wrapped with context"}},
				Fixes: []review.Fix{
					{Line: 10, Explanation: "Guard the pointer", Code: "+if p == nil {\n+\treturn\n+}"},
				},
			},
			{
				Path:        "legacy.go",
				Dangers:     []review.Finding{},
				Issues:      []review.Finding{{Line: 4, Description: "Unbuffered channel deadlock"}},
				Suggestions: []review.Finding{},
			},
		},
	}

	// legacy.go is not part of the diff, so its findings stay body-only.
	diffFiles := map[string]bool{"main.go": true}
	rev, err := BuildReview(result, diffFiles)
	if err != nil {
		t.Fatalf("BuildReview: %v", err)
	}

	if rev.Event != "COMMENT" {
		t.Errorf("Event = %q, want COMMENT", rev.Event)
	}

	// Danger and fix inline; good practice and off-diff issue excluded.
	if len(rev.Comments) != 2 {
		t.Fatalf("Comments count = %d, want 2: %+v", len(rev.Comments), rev.Comments)
	}
	if rev.Comments[0].Path != "main.go" || rev.Comments[0].Line != 10 {
		t.Errorf("Comment[0] = %s:%d, want main.go:10", rev.Comments[0].Path, rev.Comments[0].Line)
	}
	if !strings.Contains(rev.Comments[0].Body, "Danger") {
		t.Errorf("Comment[0] body should label the category: %q", rev.Comments[0].Body)
	}
	if !strings.Contains(rev.Comments[1].Body, "```diff") {
		t.Errorf("fix comment should fence the snippet: %q", rev.Comments[1].Body)
	}

	if !strings.Contains(rev.Body, "## Gavel Code Review") {
		t.Errorf("Body should contain the markdown report, got: %s", rev.Body)
	}
	if !strings.Contains(rev.Body, "Unbuffered channel deadlock") {
		t.Error("off-diff findings should still appear in the body report")
	}
}
