package httpclient

import "context"

// Request describes a single outgoing call. Query values are encoded onto the
// URL for every method, POST included.
type Request struct {
	Method  string
	URL     string
	Query   map[string]string
	Headers map[string]string
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Implementations must return non-2xx responses as values, not errors.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
