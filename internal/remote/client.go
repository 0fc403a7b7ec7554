// Package remote talks to the users API over HTTP/JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/msomdec/user-roster/internal/domain"
	"github.com/msomdec/user-roster/internal/store"
)

// Compile-time interface check.
var _ store.Client = (*Client)(nil)

// TokenSource returns a bearer token for the next request.
type TokenSource func() (string, error)

// Client implements store.Client against the /api/users resource.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

// OnBehalfOfHeader names the end client a call is made for. The users API
// uses it to rate limit operators separately when they share one caller.
const OnBehalfOfHeader = "X-Roster-On-Behalf-Of"

type onBehalfKey struct{}

// OnBehalfOf tags ctx with the end client that calls made under it serve.
func OnBehalfOf(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, onBehalfKey{}, client)
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTokenSource authenticates every request with a bearer token.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.token = ts
	}
}

// New creates a client for the users API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned when the API answers with a non-success status.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote: %s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote: %s: HTTP %d", e.Op, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

type userEnvelope struct {
	User domain.User `json:"user"`
}

type usersEnvelope struct {
	Users []domain.User `json:"users"`
}

// ListUsers fetches every user.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp usersEnvelope
	if err := c.do(ctx, "list users", http.MethodGet, "/api/users", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	if resp.Users == nil {
		resp.Users = []domain.User{}
	}
	return resp.Users, nil
}

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var resp userEnvelope
	if err := c.do(ctx, "get user", http.MethodGet, userPath(id), nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// CreateUser posts a new user and returns the stored record.
func (c *Client) CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	var resp userEnvelope
	if err := c.do(ctx, "create user", http.MethodPost, "/api/users", in, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateUser patches the user at id and returns the stored record.
func (c *Client) UpdateUser(ctx context.Context, id string, in domain.UserInput) (*domain.User, error) {
	var resp userEnvelope
	if err := c.do(ctx, "update user", http.MethodPatch, userPath(id), in, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// DeleteUser removes the user at id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, "delete user", http.MethodDelete, userPath(id), nil, http.StatusNoContent, nil)
}

func userPath(id string) string {
	return "/api/users/" + url.PathEscape(id)
}

// do sends one request and decodes the response into result when it is non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, body any, want int, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: %s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("remote: %s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token()
		if err != nil {
			return fmt.Errorf("remote: %s: token: %w", op, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if client, _ := ctx.Value(onBehalfKey{}).(string); client != "" {
		req.Header.Set(OnBehalfOfHeader, client)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("remote: %s: read response: %w", op, err)
	}

	if resp.StatusCode != want {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("remote: %s: decode response: %w", op, err)
		}
	}
	return nil
}

// errorMessage extracts {"error": "..."} from an error body, falling back to
// the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
