package gateway

import (
	"net/http"
	"time"

	"github.com/okian/cricscore/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithTimeout sets a per-request timeout. It is applied to a copy of the
// HTTP client, so a client passed through WithHTTPClient is left untouched
// regardless of option order. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = &d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
