// Package gateway turns operator actions into one-shot calls to the generation service.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/reviewdash/internal/domain"
	"github.com/timmy/reviewdash/internal/generator"
	"github.com/timmy/reviewdash/internal/logger"
)

// Action names an operator action.
type Action string

const (
	ActionStart     Action = "start"
	ActionSample    Action = "sample"
	ActionAspects   Action = "aspects"
	ActionTestBatch Action = "test_batch"
)

// User-facing texts shown when an action fails without a service-provided detail.
const (
	MsgStartFailed     = "Error starting generation"
	MsgSampleFailed    = "Error generating sample"
	MsgAspectsFailed   = "Error fetching aspects"
	MsgTestBatchFailed = "Error generating test batch"
)

// Service is the part of the generation service the gateway calls.
type Service interface {
	StartGeneration(ctx context.Context, settings domain.GenerationSettings) (*domain.StartAck, error)
	Sample(ctx context.Context) (*domain.SampleReview, error)
	Aspects(ctx context.Context) (*domain.AspectCatalog, error)
	TestBatch(ctx context.Context, size int) (*domain.TestBatchResult, error)
}

// ActionError is a failed action. Message is the single notice to show the user.
type ActionError struct {
	Action  Action
	Message string
	Cause   error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s failed: %s: %v", e.Action, e.Message, e.Cause)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

// Gateway executes actions. It keeps no state between calls: it never retries,
// never deduplicates concurrent calls and has no effect on status polling.
type Gateway struct {
	service       Service
	testBatchSize int
}

// Config holds gateway configuration.
type Config struct {
	// TestBatchSize is the fixed size of a test batch. Zero means domain.DefaultTestBatchSize.
	TestBatchSize int
}

// New creates a Gateway.
func New(service Service, cfg *Config) *Gateway {
	size := domain.DefaultTestBatchSize
	if cfg != nil && cfg.TestBatchSize > 0 {
		size = cfg.TestBatchSize
	}
	return &Gateway{
		service:       service,
		testBatchSize: size,
	}
}

// TestBatchSize returns the size sent with every test batch request.
func (g *Gateway) TestBatchSize() int {
	return g.testBatchSize
}

// StartJob asks the service to start a job. On success it returns the service's
// acknowledgment message. Local job state is not touched; the next status poll shows the job.
func (g *Gateway) StartJob(ctx context.Context, settings domain.GenerationSettings) (string, error) {
	ctx = logger.SetAction(ctx, string(ActionStart))
	start := time.Now()

	ack, err := g.service.StartGeneration(ctx, settings)
	if err != nil {
		msg := MsgStartFailed
		if detail, ok := generator.DetailOf(err); ok {
			msg = detail
		}
		return "", g.failed(ctx, ActionStart, msg, err, start)
	}

	g.succeeded(ctx, ActionStart, start)
	return ack.Message, nil
}

// FetchSample fetches one sample review.
func (g *Gateway) FetchSample(ctx context.Context) (*domain.SampleReview, error) {
	ctx = logger.SetAction(ctx, string(ActionSample))
	start := time.Now()

	review, err := g.service.Sample(ctx)
	if err != nil {
		return nil, g.failed(ctx, ActionSample, MsgSampleFailed, err, start)
	}

	g.succeeded(ctx, ActionSample, start)
	return review, nil
}

// FetchAspects fetches the aspect catalogue.
func (g *Gateway) FetchAspects(ctx context.Context) (*domain.AspectCatalog, error) {
	ctx = logger.SetAction(ctx, string(ActionAspects))
	start := time.Now()

	catalog, err := g.service.Aspects(ctx)
	if err != nil {
		return nil, g.failed(ctx, ActionAspects, MsgAspectsFailed, err, start)
	}

	g.succeeded(ctx, ActionAspects, start)
	return catalog, nil
}

// FetchTestBatch asks for a test batch of the configured size.
func (g *Gateway) FetchTestBatch(ctx context.Context) (*domain.TestBatchResult, error) {
	ctx = logger.SetAction(ctx, string(ActionTestBatch))
	start := time.Now()

	result, err := g.service.TestBatch(ctx, g.testBatchSize)
	if err != nil {
		return nil, g.failed(ctx, ActionTestBatch, MsgTestBatchFailed, err, start)
	}

	g.succeeded(ctx, ActionTestBatch, start)
	return result, nil
}

func (g *Gateway) failed(ctx context.Context, action Action, msg string, cause error, start time.Time) *ActionError {
	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Error(ctx, "Action failed: action=%s, notice=%q, error=%v", action, msg, cause)

	return &ActionError{Action: action, Message: msg, Cause: cause}
}

func (g *Gateway) succeeded(ctx context.Context, action Action, start time.Time) {
	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "Action completed: action=%s", action)
}
