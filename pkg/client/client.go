// Package client is a typed Go client for the Arrendando REST API.
//
// The bearer token is part of Config; nothing is read from the
// environment. GET responses are shared between concurrent callers and
// reused within Config.StaleTime. Mutations drop the cached GETs of the
// resources they touch. Requests are never retried.
package client

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
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is how long a GET response is reused
const DefaultStaleTime = 30 * time.Second

// Config configures a Client
type Config struct {
	// BaseURL includes the API prefix, e.g. http://localhost:8080/api/v1
	BaseURL string
	// Token is sent as "Authorization: Bearer <Token>" when set
	Token string
	// HTTPClient defaults to a client with a 30s timeout
	HTTPClient *http.Client
	// StaleTime defaults to DefaultStaleTime. A negative value disables reuse.
	StaleTime time.Duration
}

// Client talks to one Arrendando API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      *responseCache

	Auth          *AuthAPI
	Users         *Resource[User, CreateUserInput, User]
	Tenants       *TenantsAPI
	Properties    *PropertiesAPI
	Contracts     *ContractsAPI
	Payments      *PaymentsAPI
	Reports       *ReportsAPI
	Dashboard     *DashboardAPI
	Notifications *NotificationsAPI
}

// New creates a client from cfg
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	stale := cfg.StaleTime
	if stale == 0 {
		stale = DefaultStaleTime
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		cache:      newResponseCache(stale),
	}
	c.bind()
	return c
}

// WithToken returns a copy of c that authenticates with token. The copy
// starts with an empty cache.
func (c *Client) WithToken(token string) *Client {
	cp := &Client{
		baseURL:    c.baseURL,
		token:      token,
		httpClient: c.httpClient,
		cache:      newResponseCache(c.cache.stale),
	}
	cp.bind()
	return cp
}

// Token returns the bearer token in use
func (c *Client) Token() string {
	return c.token
}

func (c *Client) bind() {
	c.Auth = &AuthAPI{c: c}
	c.Users = &Resource[User, CreateUserInput, User]{
		c:           c,
		path:        "/auth/users",
		searchPath:  "/auth/users/search",
		activeField: "isActive",
	}
	c.Tenants = newTenantsAPI(c)
	c.Properties = newPropertiesAPI(c)
	c.Contracts = newContractsAPI(c)
	c.Payments = &PaymentsAPI{c: c}
	c.Reports = &ReportsAPI{c: c}
	c.Dashboard = &DashboardAPI{c: c}
	c.Notifications = &NotificationsAPI{c: c}
}

// get decodes a GET of path into out, through the response cache
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	body, err := c.cache.fetch(ctx, path, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return err
	}
	return decodeBody(body, out)
}

// send performs a mutation and drops the cached GETs under every prefix in touches
func (c *Client) send(ctx context.Context, method, path string, in, out interface{}, touches ...string) error {
	body, err := c.do(ctx, method, path, in)
	if len(touches) == 0 {
		touches = []string{path}
	}
	// The server may have applied a mutation even when the answer failed
	c.cache.invalidate(touches...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeBody(body, out)
}

// download performs an uncached GET and returns the raw body and headers
func (c *Client) download(ctx context.Context, path string, query url.Values) ([]byte, http.Header, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, body, err := c.roundTrip(req)
	if err != nil {
		return nil, nil, err
	}
	return body, resp.Header, nil
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return nil, err
	}
	_, body, err := c.roundTrip(req)
	return body, err
}

func (c *Client) newRequest(ctx context.Context, method, path string, in interface{}) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) roundTrip(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &APIError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &APIError{Kind: KindNetwork, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, nil, responseError(resp.StatusCode, body)
	}
	return resp, body, nil
}

func decodeBody(body []byte, out interface{}) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
}

// responseCache shares in-flight GETs and keeps their bodies for stale
type responseCache struct {
	stale time.Duration
	now   func() time.Time
	group singleflight.Group

	mu         sync.Mutex
	entries    map[string]cacheEntry
	generation uint64
}

func newResponseCache(stale time.Duration) *responseCache {
	return &responseCache{
		stale:   stale,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// fetch returns the cached body of key or loads it. Callers that arrive in
// the same generation share one load, which runs detached from any single
// caller's cancellation; each caller still stops waiting on its own ctx.
func (rc *responseCache) fetch(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	rc.mu.Lock()
	if e, ok := rc.entries[key]; ok && rc.now().Sub(e.fetchedAt) < rc.stale {
		rc.mu.Unlock()
		return e.body, nil
	}
	gen := rc.generation
	rc.mu.Unlock()

	// A GET issued after a mutation never joins a load started before it
	flightKey := strconv.FormatUint(gen, 10) + ":" + key
	shared := context.WithoutCancel(ctx)
	ch := rc.group.DoChan(flightKey, func() (interface{}, error) {
		body, err := load(shared)
		if err != nil {
			return nil, err
		}
		rc.mu.Lock()
		// A mutation that finished while this GET was in flight wins
		if rc.stale > 0 && rc.generation == gen {
			rc.entries[key] = cacheEntry{body: body, fetchedAt: rc.now()}
		}
		rc.mu.Unlock()
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, &APIError{Kind: KindNetwork, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (rc *responseCache) invalidate(prefixes ...string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.generation++
	for key := range rc.entries {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				delete(rc.entries, key)
				break
			}
		}
	}
}
