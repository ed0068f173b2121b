// Package github stores the task document as a file in a GitHub repository
// through the REST contents API. The file's blob sha is the version token.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

const (
	apiVersion      = "2022-11-28"
	acceptJSON      = "application/vnd.github+json"
	acceptRaw       = "application/vnd.github.raw+json"
	maxResponseSize = 64 << 20
)

// Config addresses the document file.
type Config struct {
	APIURL string
	Token  string
	// Repo is "owner/name".
	Repo   string
	Path   string
	Branch string

	// HTTPClient overrides the default instrumented client. Its timeout, if
	// any, applies on top of the caller's context deadline.
	HTTPClient *http.Client
}

// Client is a GitHub-contents implementation of storage.Remote.
type Client struct {
	http   *http.Client
	url    string
	token  string
	branch string
}

// NewClient creates a client. It performs no network call.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("github: token is required")
	}
	owner, name, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("github: repo must be owner/name, got %q", cfg.Repo)
	}
	if cfg.Path == "" {
		return nil, errors.New("github: path is required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	segments := strings.Split(strings.Trim(cfg.Path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return &Client{
		http: cfg.HTTPClient,
		url: fmt.Sprintf("%s/repos/%s/%s/contents/%s",
			strings.TrimRight(cfg.APIURL, "/"),
			url.PathEscape(owner), url.PathEscape(name),
			strings.Join(segments, "/")),
		token:  cfg.Token,
		branch: cfg.Branch,
	}, nil
}

type contentResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type commitRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type commitResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
}

// Fetch reads the file at the configured branch.
func (c *Client) Fetch(ctx context.Context) (storage.Snapshot, error) {
	body, err := c.do(ctx, http.MethodGet, acceptJSON, nil)
	if err != nil {
		return storage.Snapshot{}, err
	}

	var resp contentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%w: contents response: %w", storage.ErrMalformedDocument, err)
	}

	var raw []byte
	switch resp.Encoding {
	case "base64":
		// GitHub wraps base64 content at 60 columns.
		raw, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
		if err != nil {
			return storage.Snapshot{}, fmt.Errorf("%w: content: %w", storage.ErrMalformedDocument, err)
		}
	case "none":
		// Files over 1 MB are only served through the raw media type.
		raw, err = c.do(ctx, http.MethodGet, acceptRaw, nil)
		if err != nil {
			return storage.Snapshot{}, err
		}
	default:
		return storage.Snapshot{}, fmt.Errorf("%w: unsupported encoding %q", storage.ErrMalformedDocument, resp.Encoding)
	}

	doc, err := storage.Decode(raw)
	if err != nil {
		return storage.Snapshot{}, err
	}
	return storage.Snapshot{Document: doc, Version: resp.SHA}, nil
}

// Commit writes the file as a new commit on the configured branch. With an
// empty version GitHub only accepts the write when the file does not exist.
func (c *Client) Commit(ctx context.Context, doc *domain.Document, version, message string) (string, error) {
	data, err := storage.Encode(doc)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(commitRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(data),
		Branch:  c.branch,
		SHA:     version,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode commit request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPut, acceptJSON, payload)
	if err != nil {
		return "", err
	}

	var resp commitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		// The write happened; the caller refetches for the token.
		return "", nil
	}
	return resp.Content.SHA, nil
}

func (c *Client) do(ctx context.Context, method, accept string, payload []byte) ([]byte, error) {
	target := c.url
	var body io.Reader
	if method == http.MethodGet {
		target += "?" + url.Values{"ref": {c.branch}}.Encode()
	} else {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", storage.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return data, nil
	}
	return nil, statusError(method, resp.StatusCode, data)
}

func statusError(method string, status int, body []byte) error {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)
	detail := fmt.Sprintf("%s %d", method, status)
	if apiErr.Message != "" {
		detail += ": " + apiErr.Message
	}

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", storage.ErrRemoteNotFound, detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		if strings.Contains(strings.ToLower(apiErr.Message), "rate limit") {
			break
		}
		return fmt.Errorf("%w: %s", storage.ErrRemoteUnauthorized, detail)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", storage.ErrVersionConflict, detail)
	case http.StatusUnprocessableEntity:
		// Sent when sha is missing for an existing file or does not match.
		if method == http.MethodPut {
			return fmt.Errorf("%w: %s", storage.ErrVersionConflict, detail)
		}
	}
	return fmt.Errorf("%w: %s", storage.ErrRemoteUnavailable, detail)
}
