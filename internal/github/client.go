// Package github fetches repository metadata from the GitHub REST API
// for trust scoring.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rugradar/internal/domain"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// ErrRepoNotFound is returned when the repository does not exist or is private.
var ErrRepoNotFound = errors.New("repository not found")

var repoURLPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)

// ParseRepoURL extracts owner and name from a GitHub repository URL.
// Bare "owner/name" is accepted too.
func ParseRepoURL(url string) (owner, name string, err error) {
	if m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(url)); m != nil {
		return m[1], m[2], nil
	}
	parts := strings.Split(strings.Trim(strings.TrimSpace(url), "/"), "/")
	if len(parts) == 2 && parts[0] != "" && parts[1] != "" && !strings.Contains(url, ":") {
		return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
	}
	return "", "", fmt.Errorf("not a github repository url: %q", url)
}

// Client fetches repository metadata over HTTP.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithToken sets the bearer token for authenticated requests.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a GitHub API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRepoMetrics assembles the metric set for one repository as of now
// (Unix ms). Auxiliary lookups that fail leave their fields at zero
// rather than failing the whole fetch.
func (c *Client) GetRepoMetrics(ctx context.Context, owner, name string, now int64) (*domain.RepoMetrics, error) {
	repo, err := c.getRepo(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	m := &domain.RepoMetrics{
		Owner:      owner,
		Name:       name,
		Stars:      repo.Stars,
		Forks:      repo.Forks,
		OpenIssues: repo.OpenIssues,
		Archived:   repo.Archived,
		HasLicense: repo.License != nil,
		CreatedAt:  parseTimeMs(repo.CreatedAt),
		PushedAt:   parseTimeMs(repo.PushedAt),
	}

	if n, err := c.countPaginated(ctx, fmt.Sprintf("/repos/%s/%s/contributors?per_page=1&anon=true", owner, name)); err == nil {
		m.Contributors = n
	}

	since := time.UnixMilli(now - 90*domain.MillisPerDay).UTC().Format(time.RFC3339)
	if n, err := c.countPaginated(ctx, fmt.Sprintf("/repos/%s/%s/commits?per_page=1&since=%s", owner, name, since)); err == nil {
		m.Commits90d = n
	}

	if size, err := c.readmeSize(ctx, owner, name); err == nil {
		m.HasReadme = true
		m.ReadmeLength = size
	}

	m.HasCI = c.pathExists(ctx, owner, name, ".github/workflows")
	m.HasTests = c.hasTestEntries(ctx, owner, name)

	return m, nil
}

type repoResponse struct {
	Stars      int    `json:"stargazers_count"`
	Forks      int    `json:"forks_count"`
	OpenIssues int    `json:"open_issues_count"`
	Archived   bool   `json:"archived"`
	CreatedAt  string `json:"created_at"`
	PushedAt   string `json:"pushed_at"`
	License    *struct {
		Key string `json:"key"`
	} `json:"license"`
}

func (c *Client) getRepo(ctx context.Context, owner, name string) (*repoResponse, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", owner, name))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s/%s", ErrRepoNotFound, owner, name)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var repo repoResponse
	if err := json.NewDecoder(resp.Body).Decode(&repo); err != nil {
		return nil, fmt.Errorf("decode repo: %w", err)
	}
	return &repo, nil
}

// countPaginated issues a per_page=1 request and reads the total from
// the Link header's last page. One result page means a count of one.
func (c *Client) countPaginated(ctx context.Context, path string) (int, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if last := lastPage(resp.Header.Get("Link")); last > 0 {
		return last, nil
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return 0, fmt.Errorf("decode page: %w", err)
	}
	return len(items), nil
}

var lastPagePattern = regexp.MustCompile(`[?&]page=(\d+)>; rel="last"`)

func lastPage(linkHeader string) int {
	m := lastPagePattern.FindStringSubmatch(linkHeader)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func (c *Client) readmeSize(ctx context.Context, owner, name string) (int, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/readme", owner, name))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("no readme (status %d)", resp.StatusCode)
	}

	var readme struct {
		Size int `json:"size"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&readme); err != nil {
		return 0, fmt.Errorf("decode readme: %w", err)
	}
	return readme.Size, nil
}

func (c *Client) pathExists(ctx context.Context, owner, name, path string) bool {
	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/contents/%s", owner, name, path))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// hasTestEntries checks the repository root listing for test files or
// directories. A heuristic; a nested-only test layout is missed.
func (c *Client) hasTestEntries(ctx context.Context, owner, name string) bool {
	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/contents/", owner, name))
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return false
	}
	for _, e := range entries {
		lower := strings.ToLower(e.Name)
		if lower == "test" || lower == "tests" || lower == "spec" ||
			strings.Contains(lower, "_test.") || strings.Contains(lower, ".test.") {
			return true
		}
	}
	return false
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	return resp, nil
}

func parseTimeMs(s string) int64 {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
