package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	userAgent       = "ekwe/0.1.0"
	acceptHeader    = "application/vnd.github+json"
	perPage         = 100
	maxFetchBytes   = 32 << 20 // cap candidate downloads at 32 MiB
	maxErrorPreview = 2048
)

// Client talks to the GitHub issues API for one repository.
type Client struct {
	repo       string
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a tracker client for repo ("owner/name").
func New(repo, token, baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return nil, errors.New("tracker repo required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("tracker token required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("tracker base url required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		repo:       repo,
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchIssues returns open issues whose title contains word, scoped to the
// label. The service's fuzzy matching is tightened client-side: only titles
// actually containing the word (case-insensitive) survive.
func (c *Client) SearchIssues(ctx context.Context, word, label string) ([]Issue, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, errors.New("search word must not be empty")
	}

	query := fmt.Sprintf("repo:%s in:title state:open %q", c.repo, word)
	if label = strings.TrimSpace(label); label != "" {
		query += fmt.Sprintf(" label:%q", label)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(perPage))

	body, err := c.doJSON(ctx, http.MethodGet, "/search/issues?"+params.Encode(), "search issues", nil)
	if err != nil {
		return nil, err
	}

	var payload wireSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", ErrMalformedResponse, err)
	}

	lowered := strings.ToLower(word)
	var issues []Issue
	for _, item := range payload.Items {
		if item.PullRequest != nil {
			continue
		}
		issue, err := item.normalize()
		if err != nil {
			return nil, err
		}
		if !strings.Contains(strings.ToLower(issue.Title), lowered) {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// CreateIssue opens a new issue with the given title, body, and labels.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (*Issue, error) {
	payload := map[string]any{
		"title":  title,
		"body":   body,
		"labels": labels,
	}
	respBody, err := c.doJSON(ctx, http.MethodPost, "/repos/"+c.repo+"/issues", "create issue", payload)
	if err != nil {
		return nil, err
	}

	var wire wireIssue
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode created issue: %v", ErrMalformedResponse, err)
	}
	issue, err := wire.normalize()
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// CloseIssue transitions an issue to the closed state.
func (c *Client) CloseIssue(ctx context.Context, number int64) error {
	path := fmt.Sprintf("/repos/%s/issues/%d", c.repo, number)
	_, err := c.doJSON(ctx, http.MethodPatch, path, "close issue", map[string]any{"state": "closed"})
	return err
}

// PostComment adds a comment to an issue.
func (c *Client) PostComment(ctx context.Context, number int64, text string) error {
	path := fmt.Sprintf("/repos/%s/issues/%d/comments", c.repo, number)
	_, err := c.doJSON(ctx, http.MethodPost, path, "post comment", map[string]any{"body": text})
	return err
}

// DeleteIssue permanently removes an issue. Deletion is only exposed through
// the GraphQL mutation channel and requires the issue's global node ID.
func (c *Client) DeleteIssue(ctx context.Context, nodeID string) error {
	nodeID = strings.TrimSpace(nodeID)
	if nodeID == "" {
		return errors.New("delete requires the issue node id")
	}
	payload := map[string]any{
		"query":     `mutation($id: ID!) { deleteIssue(input: {issueId: $id}) { clientMutationId } }`,
		"variables": map[string]any{"id": nodeID},
	}
	body, err := c.doJSON(ctx, http.MethodPost, "/graphql", "delete issue", payload)
	if err != nil {
		return err
	}

	var parsed struct {
		Errors []wireError `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("%w: decode delete response: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("tracker: delete issue: %s", parsed.Errors[0].Message)
	}
	return nil
}

// ListIssues returns all issues in the given state carrying the label,
// paginated in creation order. Pull requests are filtered out; the issues
// endpoint mixes them in.
func (c *Client) ListIssues(ctx context.Context, state, label string) ([]Issue, error) {
	var issues []Issue
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("state", state)
		if label != "" {
			params.Set("labels", label)
		}
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))
		params.Set("sort", "created")
		params.Set("direction", "asc")

		body, err := c.doJSON(ctx, http.MethodGet, "/repos/"+c.repo+"/issues?"+params.Encode(), "list issues", nil)
		if err != nil {
			return nil, err
		}

		var wires []wireIssue
		if err := json.Unmarshal(body, &wires); err != nil {
			return nil, fmt.Errorf("%w: decode issue list: %v", ErrMalformedResponse, err)
		}
		for _, wire := range wires {
			if wire.PullRequest != nil {
				continue
			}
			issue, err := wire.normalize()
			if err != nil {
				return nil, err
			}
			issues = append(issues, issue)
		}
		if len(wires) < perPage {
			return issues, nil
		}
	}
}

// ListComments returns an issue's comments oldest first.
func (c *Client) ListComments(ctx context.Context, issue Issue) ([]Comment, error) {
	path := issue.CommentsURL
	if path == "" {
		path = fmt.Sprintf("%s/repos/%s/issues/%d/comments", c.baseURL, c.repo, issue.Number)
	}

	var comments []Comment
	for page := 1; ; page++ {
		pageURL := fmt.Sprintf("%s?per_page=%d&page=%d", path, perPage, page)
		body, err := c.doJSONAbsolute(ctx, http.MethodGet, pageURL, "list comments", nil)
		if err != nil {
			return nil, err
		}

		var wires []wireComment
		if err := json.Unmarshal(body, &wires); err != nil {
			return nil, fmt.Errorf("%w: decode comment list: %v", ErrMalformedResponse, err)
		}
		for _, wire := range wires {
			comments = append(comments, Comment{Body: wire.Body, CreatedAt: wire.CreatedAt})
		}
		if len(wires) < perPage {
			return comments, nil
		}
	}
}

// FetchURL downloads an arbitrary candidate URL, following redirects, and
// returns the final status, declared content type, and body. The read is
// capped so a hostile link cannot exhaust memory.
func (c *Client) FetchURL(ctx context.Context, rawURL string) (int, string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, "", nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return 0, "", nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, operation string, payload any) ([]byte, error) {
	return c.doJSONAbsolute(ctx, method, c.baseURL+path, operation, payload)
}

func (c *Client) doJSONAbsolute(ctx context.Context, method, fullURL, operation string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", operation, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return respBody, nil
	}

	if rateLimited(resp) {
		return nil, &RateLimitError{RetryAfter: retryAfter(resp)}
	}

	message := ""
	var parsed wireError
	if json.Unmarshal(respBody, &parsed) == nil {
		message = strings.TrimSpace(parsed.Message)
	}
	if message == "" {
		preview := strings.TrimSpace(string(respBody))
		if len(preview) > maxErrorPreview {
			preview = preview[:maxErrorPreview]
		}
		message = preview
	}
	return nil, &StatusError{Operation: operation, StatusCode: resp.StatusCode, Message: message}
}

// rateLimited classifies throttling responses. GitHub signals primary rate
// limits with 403 plus an exhausted X-RateLimit-Remaining, and secondary
// limits with 429 or a Retry-After header.
func rateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	if resp.Header.Get("Retry-After") != "" {
		return true
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func retryAfter(resp *http.Response) time.Duration {
	if header := strings.TrimSpace(resp.Header.Get("Retry-After")); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	if header := strings.TrimSpace(resp.Header.Get("X-RateLimit-Reset")); header != "" {
		if reset, err := strconv.ParseInt(header, 10, 64); err == nil {
			if wait := time.Until(time.Unix(reset, 0)); wait > 0 {
				return wait
			}
		}
	}
	return 0
}
