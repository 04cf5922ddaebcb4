package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// timeout for backend requests
	requestTimeout = 30 * time.Second

	// at most one refresh attempt per interval, bursting to refreshBurst
	refreshInterval = 5 * time.Second
	refreshBurst    = 2
)

// backend endpoints, relative to the API base URL
const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathVerify   = "/auth/verify"
	pathUser     = "/auth/user"
	pathLogout   = "/auth/logout"
	pathRefresh  = "/auth/refresh"
)

// talks to the auth endpoints of the REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	jar        *resettableJar

	// forwarded-mode fields, see Forward
	cookies   []*http.Cookie
	onCookies func([]*http.Cookie)

	// nil disables the refresh-and-retry on 401
	refresh *refresher
}

type refresher struct {
	group   singleflight.Group
	limiter *rate.Limiter
}

type ClientOption func(*Client)

// uses a custom http.Client; its Jar is replaced by the client's own
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		clone := *hc
		c.httpClient = &clone
	}
}

// overrides the refresh rate limit
func WithRefreshLimit(every time.Duration, burst int) ClientOption {
	return func(c *Client) {
		c.refresh.limiter = rate.NewLimiter(rate.Every(every), burst)
	}
}

// creates a new backend client holding its own cookie jar
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		jar:        newResettableJar(),
		refresh: &refresher{
			limiter: rate.NewLimiter(rate.Every(refreshInterval), refreshBurst),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient.Jar = c.jar

	return c
}

// returns a client that sends the given cookies instead of using the jar
// and hands every Set-Cookie it receives to out. used by the web frontend
// to act on behalf of a browser; refresh-and-retry is off in this mode.
func (c *Client) Forward(in []*http.Cookie, out func([]*http.Cookie)) *Client {
	hc := *c.httpClient
	hc.Jar = nil

	return &Client{
		baseURL:    c.baseURL,
		httpClient: &hc,
		cookies:    in,
		onCookies:  out,
	}
}

// POST /auth/login
func (c *Client) Login(ctx context.Context, creds Credentials) (*User, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodPost, pathLogin, creds, &resp); err != nil {
		return nil, err
	}

	if resp.User == nil {
		return nil, fmt.Errorf("login response carried no user")
	}

	return resp.User, nil
}

// POST /auth/register
func (c *Client) Register(ctx context.Context, reg Registration) (*RegisterResult, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodPost, pathRegister, reg, &resp); err != nil {
		return nil, err
	}

	return &RegisterResult{Message: resp.Message, UserID: resp.UserID}, nil
}

// POST /auth/verify
func (c *Client) VerifyEmail(ctx context.Context, code string) (string, error) {
	var resp envelope
	payload := struct {
		Code string `json:"code"`
	}{Code: code}

	if err := c.do(ctx, http.MethodPost, pathVerify, payload, &resp); err != nil {
		return "", err
	}

	return resp.Message, nil
}

// GET /auth/user
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, pathUser, nil, &resp); err != nil {
		return nil, err
	}

	if resp.User == nil {
		return nil, fmt.Errorf("user response carried no user")
	}

	return resp.User, nil
}

// POST /auth/logout. the local cookie jar is emptied whatever the outcome.
func (c *Client) Logout(ctx context.Context) error {
	defer func() {
		if c.jar != nil {
			c.jar.Reset()
		}
	}()

	return c.do(ctx, http.MethodPost, pathLogout, nil, nil)
}

// POST /auth/refresh
func (c *Client) Refresh(ctx context.Context) (*User, error) {
	var resp envelope
	if err := c.send(ctx, http.MethodPost, pathRefresh, nil, &resp); err != nil {
		return nil, err
	}

	if resp.User == nil {
		return nil, fmt.Errorf("refresh response carried no user")
	}

	return resp.User, nil
}

// sends a request; a 401 on a retryable path triggers one refresh and retry
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	err := c.send(ctx, method, path, body, out)
	if err == nil || c.refresh == nil || !retryable(path) || !isUnauthorized(err) {
		return err
	}

	if refreshErr := c.refreshOnce(ctx); refreshErr != nil {
		return err
	}

	return c.send(ctx, method, path, body, out)
}

// coalesces concurrent refreshes into a single backend call. the shared call
// outlives any one caller, so it only keeps the caller's context values.
func (c *Client) refreshOnce(ctx context.Context) error {
	_, err, _ := c.refresh.group.Do("refresh", func() (any, error) {
		if !c.refresh.limiter.Allow() {
			return nil, ErrRefreshThrottled
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requestTimeout)
		defer cancel()

		return c.Refresh(ctx)
	})

	return err
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if c.onCookies != nil {
		if cookies := resp.Cookies(); len(cookies) > 0 {
			c.onCookies(cookies)
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}

		var errResp envelope
		if err := json.Unmarshal(data, &errResp); err == nil {
			apiErr.Message = errResp.Message
		}

		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func retryable(path string) bool {
	switch path {
	case pathLogin, pathLogout, pathRefresh:
		return false
	default:
		return true
	}
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// cookie jar that can be emptied on logout
type resettableJar struct {
	mu  sync.Mutex
	jar *cookiejar.Jar
}

func newResettableJar() *resettableJar {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // never fails with nil options
	return &resettableJar{jar: jar}
}

func (j *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
}

func (j *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// drops every stored cookie
func (j *resettableJar) Reset() {
	fresh := newResettableJar()

	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = fresh.jar
}
