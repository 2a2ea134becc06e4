// Package tracker talks to the external ticket system that mirrors plan
// document content as discrete, independently addressable comments.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/draftctl/draftctl/internal/domain"
)

// Comment is one remote comment-like record. CreateComment returns its
// identity; UpdateComment edits it in place so the anchor-to-record
// mapping stays 1:1.
type Comment struct {
	ExternalID string
	URL        string
}

// Client is the minimal comment API the resolver needs from a tracker.
type Client interface {
	// CreateComment posts a new comment under the given change and
	// returns its remote identity.
	CreateComment(ctx context.Context, changeID, body string) (*Comment, error)

	// UpdateComment replaces the body of an existing comment.
	UpdateComment(ctx context.Context, externalID, body string) error

	// FetchComment reads a comment's current body.
	FetchComment(ctx context.Context, externalID string) (string, error)
}

// Config holds connection parameters for the HTTP tracker client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// httpClient implements Client against a generic JSON comment API:
// POST /changes/{id}/comments, PUT /comments/{id}, GET /comments/{id}.
type httpClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient creates a Client for the tracker at cfg.BaseURL.
func NewHTTPClient(cfg Config) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

type commentPayload struct {
	Body string `json:"body"`
}

type commentResponse struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Body string `json:"body"`
}

func (c *httpClient) CreateComment(ctx context.Context, changeID, body string) (*Comment, error) {
	endpoint := fmt.Sprintf("%s/changes/%s/comments", c.cfg.BaseURL, url.PathEscape(changeID))
	var resp commentResponse
	if err := c.do(ctx, http.MethodPost, endpoint, &commentPayload{Body: body}, &resp); err != nil {
		return nil, err
	}
	return &Comment{ExternalID: resp.ID, URL: resp.URL}, nil
}

func (c *httpClient) UpdateComment(ctx context.Context, externalID, body string) error {
	endpoint := fmt.Sprintf("%s/comments/%s", c.cfg.BaseURL, url.PathEscape(externalID))
	return c.do(ctx, http.MethodPut, endpoint, &commentPayload{Body: body}, nil)
}

func (c *httpClient) FetchComment(ctx context.Context, externalID string) (string, error) {
	endpoint := fmt.Sprintf("%s/comments/%s", c.cfg.BaseURL, url.PathEscape(externalID))
	var resp commentResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return "", err
	}
	return resp.Body, nil
}

func (c *httpClient) do(ctx context.Context, method, endpoint string, payload, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil || isConnectionError(err) {
			return fmt.Errorf("%s %s: %w", method, endpoint, domain.ErrExternalUnavailable)
		}
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("tracker returned status %d: %w", resp.StatusCode, domain.ErrExternalUnavailable)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("tracker returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
