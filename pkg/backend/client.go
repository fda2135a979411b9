// Package backend is the client for the first-party collection service:
// authentication plus CRUD on the trainer's caught-Pokemon records.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/nkarpova/pokedeck/pkg/domain"
	"github.com/nkarpova/pokedeck/pkg/httperr"
)

// Client is the collection backend client. A bearer token installed via
// SetToken is attached to every request until ClearToken is called.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	token  string
	onAuth func()
}

// New creates a new backend client. No token is installed initially.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// SetToken installs tok as the default credential for subsequent calls.
func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// ClearToken uninstalls the default credential.
func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// OnUnauthorized registers fn to be called whenever an authenticated call
// observes a 401 from the backend. The session manager subscribes once at
// startup; the 401 error still propagates to the caller.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onAuth = fn
	c.mu.Unlock()
}

// LoginRequest is the credential payload for Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the credential payload for Register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and user record.
// It does not install the returned token; that is the session manager's call.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.post(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("backend.Login: %w", err)
	}
	return &resp, nil
}

// Register creates a new account and returns its token and user record.
func (c *Client) Register(ctx context.Context, email, username, password string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	req := RegisterRequest{Email: email, Username: username, Password: password}
	if err := c.post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("backend.Register: %w", err)
	}
	return &resp, nil
}

// Catch stores a denormalized creature snapshot in the trainer's collection.
func (c *Client) Catch(ctx context.Context, req domain.CatchRequest) (*domain.CaughtPokemon, error) {
	var created domain.CaughtPokemon
	if err := c.post(ctx, "/pokemon/catch", req, &created); err != nil {
		return nil, fmt.Errorf("backend.Catch: %w", err)
	}
	return &created, nil
}

// Release removes the record for the given creature id from the collection.
func (c *Client) Release(ctx context.Context, pokemonID int) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/pokemon/release/"+strconv.Itoa(pokemonID), nil, nil); err != nil {
		return fmt.Errorf("backend.Release: %w", err)
	}
	return nil
}

// CaughtQuery holds the optional filter parameters for Caught.
type CaughtQuery struct {
	SortBy    string // "caughtAt", "pokemonName", or "pokemonId"
	SortOrder string // "asc" or "desc"
	Type      string
	Search    string
}

// Caught lists the trainer's caught records, optionally filtered and sorted
// server-side.
func (c *Client) Caught(ctx context.Context, q CaughtQuery) ([]domain.CaughtPokemon, error) {
	params := url.Values{}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sortOrder", q.SortOrder)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	path := "/pokemon/caught"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var records []domain.CaughtPokemon
	if err := c.get(ctx, path, &records); err != nil {
		return nil, fmt.Errorf("backend.Caught: %w", err)
	}
	return records, nil
}

// IsCaught reports whether the trainer has caught the given creature.
func (c *Client) IsCaught(ctx context.Context, pokemonID int) (bool, error) {
	var resp struct {
		IsCaught bool `json:"isCaught"`
	}
	if err := c.get(ctx, "/pokemon/caught/"+strconv.Itoa(pokemonID)+"/status", &resp); err != nil {
		return false, fmt.Errorf("backend.IsCaught: %w", err)
	}
	return resp.IsCaught, nil
}

// CaughtTypes returns the distinct type names across the trainer's records.
func (c *Client) CaughtTypes(ctx context.Context) ([]string, error) {
	var types []string
	if err := c.get(ctx, "/pokemon/caught/types/unique", &types); err != nil {
		return nil, fmt.Errorf("backend.CaughtTypes: %w", err)
	}
	return types, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	hook := c.onAuth
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && token != "" && hook != nil {
			hook()
		}
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &httperr.Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &httperr.Error{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &httperr.Error{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return &httperr.Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
