// Package client talks to the gatekeeper gateway over HTTP and keeps the
// access token obtained at login for the protected calls.
package client

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
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

// Account is the public account view returned by signup.
type Account struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type FilterResult struct {
	Count   int               `json:"count"`
	Entries []json.RawMessage `json:"entries"`
}

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	return &HTTPClient{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

type credentials struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, userName string, password []byte) (*Account, error) {
	var acc Account
	if err := c.do(ctx, http.MethodPost, "/signup", nil, credentials{userName, string(password)}, false, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *HTTPClient) Login(ctx context.Context, userName string, password []byte) error {
	var resp struct {
		AccessToken string    `json:"accessToken"`
		ExpiresAt   time.Time `json:"expiresAt"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", nil, credentials{userName, string(password)}, false, &resp); err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken, c.expiresAt = resp.AccessToken, resp.ExpiresAt
	c.mu.Unlock()
	return nil
}

// Logout forgets the token. Tokens are stateless, so the server is not
// involved.
func (c *HTTPClient) Logout() {
	c.mu.Lock()
	c.accessToken, c.expiresAt = "", time.Time{}
	c.mu.Unlock()
}

func (c *HTTPClient) IsLoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken != ""
}

// ExpiresAt reports when the current token stops being accepted.
func (c *HTTPClient) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

func (c *HTTPClient) Hello(ctx context.Context) (string, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/hello", nil, nil, true, &raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

func (c *HTTPClient) Me(ctx context.Context) (string, error) {
	var resp struct {
		UserName string `json:"username"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, true, &resp); err != nil {
		return "", err
	}
	return resp.UserName, nil
}

// Filter lists public APIs in category. A negative limit requests all.
func (c *HTTPClient) Filter(ctx context.Context, category string, limit int) (*FilterResult, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if limit >= 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var res FilterResult
	if err := c.do(ctx, http.MethodGet, "/filter", q, nil, true, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Balance(ctx context.Context, account string) (string, error) {
	var resp struct {
		Balance string `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, "/balance", url.Values{"account": {account}}, nil, true, &resp); err != nil {
		return "", err
	}
	return resp.Balance, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, false, nil)
}

// do sends one request. out may be nil, a *[]byte for the raw body, or a
// value to decode JSON into.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, authorized bool, out any) error {
	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authorized {
		c.mu.RLock()
		token := c.accessToken
		c.mu.RUnlock()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	switch o := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*o = data
		return nil
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// IsUnauthorized reports whether err means the token is missing or rejected.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotLoggedIn)
}
