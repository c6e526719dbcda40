// Package generator is the HTTP client for the external review generation service.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/reviewdash/internal/domain"
	"github.com/timmy/reviewdash/internal/logger"
)

const (
	pathRoot      = "/api/"
	pathStatus    = "/api/generation/status"
	pathStart     = "/api/generation/start"
	pathSample    = "/api/generation/sample"
	pathAspects   = "/api/generation/aspects"
	pathTestBatch = "/api/generation/test-batch"
)

// Client talks to the generation service.
type Client struct {
	client  *resty.Client
	baseURL string
}

// ClientConfig holds configuration for the generation service client.
type ClientConfig struct {
	BaseURL string
	// Timeout of zero keeps the transport default.
	Timeout time.Duration
}

// NewClient creates a new generation service client.
// Parameters:
//   - cfg: base URL and optional timeout.
//
// Returns:
//   - *Client: client ready for use; no request is made here.
func NewClient(cfg *ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.With(logger.Fields{
			logger.FieldStatus:     resp.StatusCode(),
			logger.FieldDurationMs: resp.Time().Milliseconds(),
			logger.FieldSize:       len(resp.Body()),
		}).Debug(resp.Request.Context(), "Generation service call: method=%s, url=%s",
			resp.Request.Method, resp.Request.URL)
		return nil
	})

	return &Client{
		client:  client,
		baseURL: baseURL,
	}
}

// BaseURL returns the service root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Info calls the service root endpoint.
func (c *Client) Info(ctx context.Context) (*domain.ServiceInfo, error) {
	var info domain.ServiceInfo
	if err := c.do(ctx, c.client.R(), http.MethodGet, pathRoot, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Status fetches the current job status snapshot.
func (c *Client) Status(ctx context.Context) (*domain.JobStatus, error) {
	var status domain.JobStatus
	if err := c.do(ctx, c.client.R(), http.MethodGet, pathStatus, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// StartGeneration asks the service to start a job with the given settings.
func (c *Client) StartGeneration(ctx context.Context, settings domain.GenerationSettings) (*domain.StartAck, error) {
	var ack domain.StartAck
	if err := c.do(ctx, c.client.R().SetBody(settings), http.MethodPost, pathStart, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Sample fetches one generated review.
func (c *Client) Sample(ctx context.Context) (*domain.SampleReview, error) {
	var review domain.SampleReview
	if err := c.do(ctx, c.client.R(), http.MethodGet, pathSample, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// Aspects fetches the aspect catalogue.
func (c *Client) Aspects(ctx context.Context) (*domain.AspectCatalog, error) {
	var catalog domain.AspectCatalog
	if err := c.do(ctx, c.client.R(), http.MethodGet, pathAspects, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// TestBatch asks the service for a test batch of the given size.
func (c *Client) TestBatch(ctx context.Context, size int) (*domain.TestBatchResult, error) {
	var result domain.TestBatchResult
	req := c.client.R().SetQueryParam("size", strconv.Itoa(size))
	if err := c.do(ctx, req, http.MethodPost, pathTestBatch, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do executes req and decodes a 2xx body into out.
// Bodies are decoded here rather than through SetResult so that a body with a wrong or
// missing content type still fails loudly instead of leaving out zeroed.
func (c *Client) do(ctx context.Context, req *resty.Request, method, path string, out interface{}) error {
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to call generation service %s %s: %w", method, path, err)
	}

	if !resp.IsSuccess() {
		return newAPIError(resp.StatusCode(), resp.Body())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
