// Package gateway talks to the remote prediction service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/cricscore/internal/domain/catalog"
	"github.com/okian/cricscore/internal/domain/prediction"
	"github.com/okian/cricscore/pkg/logger"
	"github.com/okian/cricscore/pkg/metrics"
)

// Service endpoints.
const (
	venuesPath  = "/venues"
	predictPath = "/predict_score"

	// maxErrorBody bounds how much of an error response is kept for logs.
	maxErrorBody = 512
)

// Client calls the prediction service over HTTP/JSON.
type Client struct {
	baseURL string
	hc      *http.Client
	timeout *time.Duration
	logger  logger.Logger
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.hc
		hc.Timeout = *c.timeout
		c.hc = &hc
	}
	if c.logger == nil {
		c.logger = logger.Named("gateway")
	}
	return c
}

// Venues fetches the venue catalog.
func (c *Client) Venues(ctx context.Context) (catalog.Catalog, error) {
	const op = "venues"
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+venuesPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	var cat catalog.Catalog
	err = c.do(req, func(body io.Reader) error {
		var derr error
		cat, derr = catalog.Load(body)
		return derr
	})
	c.observe(ctx, op, start, err)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Predict submits a payload and returns the forecast.
func (c *Client) Predict(ctx context.Context, in prediction.Request) (prediction.Result, error) {
	const op = "predict"
	start := time.Now()

	payload, err := json.Marshal(in)
	if err != nil {
		return prediction.Result{}, fmt.Errorf("%w: encode: %w", ErrRequest, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(payload))
	if err != nil {
		return prediction.Result{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var res prediction.Result
	err = c.do(req, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(&res)
	})
	c.observe(ctx, op, start, err)
	if err != nil {
		return prediction.Result{}, err
	}
	return res, nil
}

// do sends req and hands a 2xx body to decode.
func (c *Client) do(req *http.Request, decode func(io.Reader) error) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, req.Method, req.URL.Path,
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := decode(resp.Body); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	return nil
}

func (c *Client) observe(ctx context.Context, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := "success"
	if err != nil {
		outcome = "failure"
		metrics.RecordErrorByComponent("gateway", op)
		c.logger.Warn(ctx, "prediction service call failed",
			logger.String("operation", op),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
	} else {
		c.logger.Debug(ctx, "prediction service call",
			logger.String("operation", op),
			logger.Duration("elapsed", elapsed),
		)
	}
	metrics.RecordGatewayLatency(op, outcome, float64(elapsed.Milliseconds()))
}
