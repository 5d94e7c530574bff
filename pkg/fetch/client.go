// Package fetch issues polite, serial GET requests against the Gameday
// endpoints and decodes the bodies as HTML, XML or JSON.
//
// Every request is preceded by a pause drawn uniformly from a configurable
// window. There is no retry; a non-success status is reported as ErrNotFound.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"math/rand/v2"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Delay is the politeness window slept before each request.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

// DefaultDelay matches the provider-friendly window of half a second to ten seconds.
var DefaultDelay = Delay{Min: 500 * time.Millisecond, Max: 10 * time.Second}

// Next draws a duration uniformly from [Min, Max]. u must be in [0, 1).
func (d Delay) Next(u float64) time.Duration {
	lo, hi := d.Min, d.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(u*float64(hi-lo))
}

// Client fetches and decodes remote documents.
type Client struct {
	transport Transport
	delay     Delay
	random    func() float64
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *log.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithDelay sets the politeness window.
func WithDelay(d Delay) Option {
	return func(c *Client) { c.delay = d }
}

// WithLogger sets the logger used for request and failure lines.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSleeper replaces the pause implementation. Tests use it to observe the
// drawn delays without waiting.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithRandom replaces the uniform source in [0, 1).
func WithRandom(r func() float64) Option {
	return func(c *Client) { c.random = r }
}

// NewClient creates a Client with the default transport and delay window.
func NewClient(opts ...Option) *Client {
	c := &Client{
		delay:  DefaultDelay,
		random: rand.Float64,
		sleep:  sleepContext,
		logger: log.New(log.Writer(), "[fetch] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(DefaultTimeout, UserAgent)
	}
	return c
}

// FetchText returns the raw body.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url, "text")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchHTML returns a goquery document. Markup is scanned best-effort and is
// never reported as malformed.
func (c *Client) FetchHTML(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.get(ctx, url, "html")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		// the html tokenizer only fails on reader errors; treat as empty markup
		c.logger.Printf("Scanning html from %s: %v", url, err)
		return goquery.NewDocumentFromReader(bytes.NewReader(nil))
	}
	return doc, nil
}

// FetchXML returns the parsed element tree.
func (c *Client) FetchXML(ctx context.Context, url string) (*Element, error) {
	body, err := c.get(ctx, url, "xml")
	if err != nil {
		return nil, err
	}
	root, err := ParseXML(body)
	if err != nil {
		return nil, &MalformedResponseError{URL: url, Format: "xml", Err: err}
	}
	return root, nil
}

// FetchJSON returns the decoded document. A zero-length body decodes as an
// empty object because several endpoints answer "no data" that way.
func (c *Client) FetchJSON(ctx context.Context, url string) (any, error) {
	body, err := c.get(ctx, url, "json")
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	c.logger.Printf("Received data: %s", truncate(body, 100))

	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &MalformedResponseError{URL: url, Format: "json", Err: err}
	}
	return out, nil
}

// get pauses, issues the request and classifies the status.
func (c *Client) get(ctx context.Context, url, kind string) ([]byte, error) {
	if err := c.pause(ctx); err != nil {
		return nil, err
	}

	c.logger.Printf("Request to %s URL: %s", kind, url)
	resp, err := c.transport.Get(ctx, url)
	if err != nil {
		c.logger.Printf("Request to %s failed: %v", url, err)
		return nil, &FetchError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Printf("Request to %s: status %d", url, resp.StatusCode)
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func (c *Client) pause(ctx context.Context) error {
	d := c.delay.Next(c.random())
	if d <= 0 {
		return ctx.Err()
	}
	return c.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// truncate returns a truncated string representation for log lines.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
