package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client wraps all outbound calls to the remote ShopSphere API. It attaches
// the JSON content type and, when a token is held, the bearer credential,
// and normalizes HTTP and transport failures into the taxonomy in errors.go.
// It does not retry, does not deduplicate concurrent requests, and does not
// cache.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   *CredentialStore

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// NewClient creates a Client for the API rooted at baseURL. creds may be nil
// for a purely in-memory token; otherwise the persisted token is loaded
// immediately so presence of the credential survives restarts.
func NewClient(baseURL string, creds *CredentialStore, timeout time.Duration) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		creds:   creds,
	}
	if creds != nil {
		token, err := creds.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load credential: %w", err)
		}
		c.token = token
	}
	return c, nil
}

// OnUnauthorized registers a hook invoked after a 401 response has cleared
// the token. The session store uses it to fall back to anonymous no matter
// which call hit the rejection.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// HasToken reports whether a bearer token is currently held.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// SetToken stores the token in memory and in the durable store.
func (c *Client) SetToken(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	if c.creds != nil {
		if err := c.creds.Save(token); err != nil {
			return fmt.Errorf("failed to persist credential: %w", err)
		}
	}
	return nil
}

// ClearToken drops the token from memory and the durable store.
func (c *Client) ClearToken() error {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	if c.creds != nil {
		if err := c.creds.Clear(); err != nil {
			return fmt.Errorf("failed to clear credential: %w", err)
		}
	}
	return nil
}

// do performs a single request cycle against the remote API. A non-nil body
// is sent as JSON; when out is non-nil and the response declares a JSON
// content type, the body is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	c.mu.RLock()
	token := c.token
	hook := c.onUnauthorized
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The server rejected the credential: clearing it is a side effect
		// visible outside the return value.
		if err := c.ClearToken(); err != nil {
			log.Printf("[gateway] failed to clear rejected credential: %v", err)
		}
		if hook != nil {
			hook()
		}
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode}
	}

	if out != nil && strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
