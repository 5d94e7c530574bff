package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// UserAgent identifies the library to the provider.
	UserAgent = "Mozilla/5.0 (compatible; gameday-go/1.0)"

	// DefaultTimeout bounds a single round trip.
	DefaultTimeout = 30 * time.Second
)

// Response is the part of an HTTP response the client cares about.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs a single GET. It must not retry.
type Transport interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPTransport creates a transport with the given timeout and user agent.
// Zero values fall back to DefaultTimeout and UserAgent.
func NewHTTPTransport(timeout time.Duration, userAgent string) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = UserAgent
	}
	return &HTTPTransport{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// Get issues the request and reads the whole body.
func (t *HTTPTransport) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
