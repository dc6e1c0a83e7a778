// Package wiki provides a client for GitLab-compatible project wikis.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for API requests.
const DefaultUserAgent = "bloom-wikisync/1.0"

// Page is a wiki page as returned by the content source.
type Page struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Format   string `json:"format"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"`
}

// Project is a project visible to the configured credential.
type Project struct {
	ID                int    `json:"id"`
	PathWithNamespace string `json:"path_with_namespace"`
	WikiEnabled       bool   `json:"wiki_enabled"`
}

// Source is the capability the fetcher depends on.
type Source interface {
	GetPage(ctx context.Context, projectID, slug string) (*Page, error)
}

// Options configures the client.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults for API access.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to the GitLab REST API v4.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	http      *http.Client
}

// NewClient creates a client for host (e.g. https://gitlab.example.com)
// authenticating with a personal access token.
func NewClient(host, token string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	parsed, err := url.Parse(host)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: host, Message: "invalid host URL", Cause: err}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:   strings.TrimRight(host, "/") + "/api/v4",
		token:     token,
		userAgent: userAgent,
		http:      httpClient,
	}, nil
}

// GetPage retrieves one wiki page. Non-2xx responses are returned as *APIError.
func (c *Client) GetPage(ctx context.Context, projectID, slug string) (*Page, error) {
	endpoint := fmt.Sprintf("%s/projects/%s/wikis/%s",
		c.baseURL, url.PathEscape(projectID), url.PathEscape(slug))

	var page Page
	if err := c.getJSON(ctx, endpoint, slug, &page); err != nil {
		return nil, err
	}
	if page.Slug == "" {
		page.Slug = slug
	}
	return &page, nil
}

// ListProjects returns the projects the token is a member of.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	endpoint := c.baseURL + "/projects?membership=true&simple=true&per_page=100"

	var projects []Project
	if err := c.getJSON(ctx, endpoint, "projects", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, resource string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &Error{URL: endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{URL: endpoint, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{URL: endpoint, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Resource: resource,
			Status:   resp.StatusCode,
			Message:  apiMessage(body, resp.Status),
		}
		apiErr.retryAfter, apiErr.hasRetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{URL: endpoint, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// apiMessage extracts GitLab's {"message": ...} or {"error": ...} body.
func apiMessage(body []byte, fallback string) string {
	var payload struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if s, ok := payload.Message.(string); ok && s != "" {
			return s
		}
		if payload.Error != "" {
			return payload.Error
		}
		return fallback
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return fallback
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
