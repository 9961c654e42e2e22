package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/gavelhq/gavel/internal/output"
	"github.com/gavelhq/gavel/internal/review"
)

const defaultAPIURL = "https://api.github.com"

// Client talks to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient builds a client from the GITHUB_TOKEN environment variable.
// GITHUB_API_URL overrides the endpoint for GitHub Enterprise.
func NewClient() (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}

	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &Client{
		token:   token,
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// do issues one authenticated API call and returns the status code and
// raw body. Transport and body-read failures come back as errors; status
// triage is left to the caller because each endpoint reads codes
// differently.
func (c *Client) do(ctx context.Context, method, url, accept string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// GetPRDiff fetches the unified diff for a pull request.
func (c *Client) GetPRDiff(ctx context.Context, owner, repo string, prNumber int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, prNumber)
	status, body, err := c.do(ctx, "GET", url, "application/vnd.github.v3.diff", nil)
	if err != nil {
		return "", fmt.Errorf("fetching PR diff: %w", err)
	}
	switch {
	case status == http.StatusNotFound:
		return "", fmt.Errorf("PR #%d not found in %s/%s", prNumber, owner, repo)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "", fmt.Errorf("authentication failed: %s", body)
	case status != http.StatusOK:
		return "", fmt.Errorf("GitHub API error (status %d): %s", status, body)
	}
	return string(body), nil
}

// PRFile is one changed file in a pull request.
type PRFile struct {
	Filename string `json:"filename"`
}

// GetPRFiles lists the files a pull request touches.
func (c *Client) GetPRFiles(ctx context.Context, owner, repo string, prNumber int) ([]string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files", c.apiURL, owner, repo, prNumber)
	status, body, err := c.do(ctx, "GET", url, "application/vnd.github.v3+json", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching PR files: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("GitHub API error (status %d): %s", status, body)
	}

	var files []PRFile
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Filename
	}
	return names, nil
}

// ReviewComment is an inline comment anchored to a diff position.
type ReviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Body string `json:"body"`
}

// ReviewRequest is the payload for posting a review.
type ReviewRequest struct {
	Body     string          `json:"body"`
	Event    string          `json:"event"`
	Comments []ReviewComment `json:"comments"`
}

// PostReview submits a review, inline comments included.
func (c *Client) PostReview(ctx context.Context, owner, repo string, prNumber int, rev ReviewRequest) error {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.apiURL, owner, repo, prNumber)
	payload, err := json.Marshal(rev)
	if err != nil {
		return fmt.Errorf("marshaling review: %w", err)
	}

	status, body, err := c.do(ctx, "POST", url, "application/vnd.github.v3+json", payload)
	if err != nil {
		return fmt.Errorf("posting review: %w", err)
	}
	if status == http.StatusUnprocessableEntity {
		return fmt.Errorf("GitHub rejected review (422): %s", body)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("GitHub API error (status %d): %s", status, body)
	}
	return nil
}

// BuildReview converts a review result into a PR review request. The full
// markdown report becomes the review body; dangers, issues, suggestions,
// and fixes on files present in the diff become inline comments.
// Good practices stay in the body only.
func BuildReview(result *review.ReviewResult, diffFiles map[string]bool) (ReviewRequest, error) {
	var body bytes.Buffer
	if err := (&output.MarkdownWriter{}).Write(&body, result); err != nil {
		return ReviewRequest{}, fmt.Errorf("rendering review body: %w", err)
	}

	var comments []ReviewComment
	for i := range result.Files {
		f := &result.Files[i]
		if !diffFiles[f.Path] {
			continue
		}
		for _, section := range f.Sections() {
			if section.Name == "good_practices" {
				continue
			}
			for _, finding := range section.Findings {
				if finding.Line < 1 {
					continue
				}
				comments = append(comments, ReviewComment{
					Path: f.Path,
					Line: finding.Line,
					Body: formatInlineComment(section.Name, finding),
				})
			}
		}
		for _, fix := range f.Fixes {
			if fix.Line < 1 {
				continue
			}
			comments = append(comments, ReviewComment{
				Path: f.Path,
				Line: fix.Line,
				Body: formatFixComment(fix),
			})
		}
	}

	return ReviewRequest{
		Body:     body.String(),
		Event:    "COMMENT",
		Comments: comments,
	}, nil
}

func formatInlineComment(section string, f review.Finding) string {
	var icon, label string
	switch section {
	case "dangers":
		icon, label = ":red_circle:", "Danger"
	case "issues":
		icon, label = ":orange_circle:", "Issue"
	default:
		icon, label = ":yellow_circle:", "Suggestion"
	}
	return fmt.Sprintf("%s **%s:** %s", icon, label, f.Description)
}

func formatFixComment(fix review.Fix) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Suggested fix:** %s", fix.Explanation))
	if fix.Code != "" {
		sb.WriteString(fmt.Sprintf("\n```diff\n%s\n```", strings.TrimRight(fix.Code, "\n")))
	}
	return sb.String()
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo reads owner and repo off the origin remote.
func DetectRepo() (owner, repo string, err error) {
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(out)))
}

// ParseRemoteURL pulls owner and repo out of an https or ssh remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
