package steamapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/steamwatch/pkg/httpclient"
)

const (
	// DefaultBaseURL is where relative endpoints are resolved.
	DefaultBaseURL = "https://api.steampowered.com"
	// CommunityBaseURL hosts the inventory and login endpoints.
	CommunityBaseURL = "https://steamcommunity.com"

	queryKeyAPIKey = "key"
	queryKeyFormat = "format"
	formatJSON     = "json"
)

// Method is the HTTP verb of a request. Only GET and POST are used by Steam.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

// RequestConfig configures a single Execute call. The zero value is a GET with
// no extra query, a JSON response and an empty extraction path.
type RequestConfig struct {
	// Method defaults to MethodGet.
	Method Method
	// Query holds caller parameters. The key and format parameters are always
	// set by the client and cannot be overridden here.
	Query map[string]string
	// Raw skips JSON decoding and returns the body as a string.
	Raw bool
	// Path selects the returned subtree of the decoded response.
	Path []Segment
}

// Client executes requests against the Steam Web API.
type Client struct {
	apiKey    string
	baseURL   string
	transport httpclient.Client
	log       Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if b := strings.TrimRight(strings.TrimSpace(base), "/"); b != "" {
			c.baseURL = b
		}
	}
}

// WithLogger attaches a logger for per-request debug output.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// New builds a client. apiKey may be empty; it is still sent on every request.
func New(apiKey string, transport httpclient.Client, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("steamapi: transport must not be nil")
	}
	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		transport: transport,
		log:       noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the URL relative endpoints are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Execute performs one request and returns the value at cfg.Path.
//
// Checks run in a fixed order: body decode, service error, HTTP status, path
// walk. A non-200 response with an unparseable body therefore reports a
// DecodeError, and one with response.error set reports a ServiceError.
func (c *Client) Execute(ctx context.Context, endpoint string, cfg RequestConfig) (any, error) {
	if c == nil || c.transport == nil {
		return nil, fmt.Errorf("steamapi: client is not initialized")
	}

	method := cfg.Method
	if method == "" {
		method = MethodGet
	}
	target, err := c.resolve(endpoint)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.transport.Do(ctx, httpclient.Request{
		Method: string(method),
		URL:    target,
		Query:  c.mergeQuery(cfg.Query),
	})
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	c.log.DebugObj("steam request completed", "steam_request", map[string]any{
		"endpoint":   endpoint,
		"method":     string(method),
		"status":     resp.StatusCode(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	body := resp.Body()
	var content any = string(body)
	if !cfg.Raw {
		decoded, err := decodeJSON(body)
		if err != nil {
			return nil, &DecodeError{Endpoint: endpoint, Err: err}
		}
		if !truthy(decoded) {
			return nil, &DecodeError{Endpoint: endpoint}
		}
		if msg, ok := serviceError(decoded); ok {
			return nil, &ServiceError{Endpoint: endpoint, Message: msg}
		}
		content = decoded
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &HTTPStatusError{Endpoint: endpoint, StatusCode: resp.StatusCode()}
	}

	value, pos := walk(content, cfg.Path)
	if pos >= 0 {
		return nil, &PathError{Endpoint: endpoint, Segment: cfg.Path[pos], Position: pos}
	}
	return value, nil
}

// mergeQuery copies caller params and then writes the injected defaults.
func (c *Client) mergeQuery(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+2)
	for k, v := range in {
		out[k] = v
	}
	out[queryKeyAPIKey] = c.apiKey
	out[queryKeyFormat] = formatJSON
	return out
}

func (c *Client) resolve(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", fmt.Errorf("steamapi: endpoint is empty")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.IsAbs() {
		return endpoint, nil
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/"), nil
}
