package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// ErrAuthExpired is the terminal failure of the one-shot retry: the refresh
// token itself is dead and the caller must re-authenticate.
var ErrAuthExpired = errors.New("authclient: authentication expired, login required")

// Client talks to the auth service and wraps outbound requests with the
// access token. The refresh cookie lives in the cookie jar, mirroring the
// browser; the access token is the only piece of state held here.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("authclient: cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *Client) setAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	Roles       []int  `json:"roles"`
}

// Login authenticates and stores the access token; the refresh cookie set
// by the server lands in the jar.
func (c *Client) Login(ctx context.Context, username, password string) ([]int, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("authclient: marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("authclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authclient: login: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("authclient: login failed with status %d", resp.StatusCode)
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("authclient: decode login response: %w", err)
	}

	c.setAccessToken(result.AccessToken)
	return result.Roles, nil
}

// Refresh trades the jarred refresh cookie for a new access token.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/refresh", nil)
	if err != nil {
		return "", fmt.Errorf("authclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("authclient: refresh: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrAuthExpired
	default:
		return "", fmt.Errorf("authclient: refresh failed with status %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("authclient: decode refresh response: %w", err)
	}

	c.setAccessToken(result.AccessToken)
	return result.AccessToken, nil
}

// Logout clears local and server-side session state.
func (c *Client) Logout(ctx context.Context) error {
	c.setAccessToken("")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("authclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("authclient: logout: %w", err)
	}
	drainAndClose(resp.Body)
	return nil
}

// Do sends a protected request. If no Authorization header is set, the
// current access token is injected. A single 403 response triggers one
// refresh and one replay of the original request; a 403 on the replay is
// ErrAuthExpired. The retry decision is local to this call, so concurrent
// in-flight requests cannot contaminate each other's retry state. A
// transport error, including context cancellation, is propagated without
// any refresh attempt.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	retry, ok := cloneForRetry(req)
	if !ok {
		// Body cannot be replayed; surface the 403 as-is.
		return resp, nil
	}
	drainAndClose(resp.Body)

	token, err := c.Refresh(req.Context())
	if err != nil {
		return nil, err
	}

	retry.Header.Set("Authorization", "Bearer "+token)
	resp, err = c.httpClient.Do(retry)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusForbidden {
		drainAndClose(resp.Body)
		return nil, ErrAuthExpired
	}
	return resp, nil
}

// cloneForRetry rebuilds the request for the single replay. Requests with a
// one-shot body and no GetBody cannot be retried.
func cloneForRetry(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}

func drainAndClose(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
