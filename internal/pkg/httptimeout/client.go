// Package httptimeout provides an HTTP client wrapper that bounds every
// outbound call with its own deadline, so one slow upstream response cannot
// stall a request indefinitely.
package httptimeout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout is used when NewClient is given a non-positive timeout.
const DefaultTimeout = 30 * time.Second

// ErrTimeout is returned when a call exceeds its per-call deadline while the
// caller's own context is still live.
var ErrTimeout = errors.New("httptimeout: upstream call timed out")

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *Client satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps an HTTPDoer and applies a deadline to each request.
type Client struct {
	client  HTTPDoer
	timeout time.Duration
}

// NewClient creates a Client that wraps the given HTTPDoer.
// If client is nil, http.DefaultClient is used.
func NewClient(client HTTPDoer, timeout time.Duration) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{client: client, timeout: timeout}
}

// Timeout returns the per-call deadline.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Do executes the request under a fresh deadline derived from the request's
// context. The deadline stays armed until the response body is closed, so
// slow body reads are bounded too. A deadline hit is reported as ErrTimeout;
// cancellation of the parent context is returned unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	parent := req.Context()
	ctx, cancel := context.WithTimeout(parent, c.timeout)

	resp, err := c.client.Do(req.WithContext(ctx))
	if err != nil {
		timedOut := ctx.Err() == context.DeadlineExceeded && parent.Err() == nil
		cancel()
		if timedOut {
			return nil, fmt.Errorf("%w after %s: %s %s%s", ErrTimeout, c.timeout, req.Method, req.URL.Host, req.URL.Path)
		}
		return nil, err
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, ctx: ctx, parent: parent, cancel: cancel, timeout: c.timeout}
	return resp, nil
}

// cancelOnClose releases the per-call context when the body is closed and
// translates deadline errors surfaced during body reads.
type cancelOnClose struct {
	io.ReadCloser
	ctx     context.Context
	parent  context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

func (b *cancelOnClose) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF && b.ctx.Err() == context.DeadlineExceeded && b.parent.Err() == nil {
		return n, fmt.Errorf("%w after %s reading response body", ErrTimeout, b.timeout)
	}
	return n, err
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
