// Package ai drives the multi-stage risk analysis through an external
// reasoning service.
//
// The package splits into:
//   - client.go: the Bedrock-backed reasoning client
//   - retry.go: retry, circuit breaker and rate limiting around calls
//   - budget.go: deterministic context-size budgeting
//   - pipeline.go: the three-stage analysis pipeline
//   - prompts.go: per-stage prompt builders
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ReasoningClient sends a prompt with an output-size ceiling to a
// text-generation service and returns the generated text. Implementations
// must be safe for sequential reuse across pipeline stages; tests inject a
// stub that returns canned narratives.
type ReasoningClient interface {
	Generate(ctx context.Context, prompt, operation string, maxTokens int) (string, error)
}

// Client is the Bedrock-backed ReasoningClient. The target model identifier is
// resolved once at construction, not per call.
type Client struct {
	api            *anthropic.Client
	model          string
	retry          RetryConfig
	circuitBreaker *CircuitBreaker
	concurrencySem *semaphore.Weighted
	limiter        *rate.Limiter
	logger         *zap.Logger
}

var _ ReasoningClient = (*Client)(nil)

// Config holds reasoning client configuration.
type Config struct {
	Region string      // AWS region hosting the service
	Model  string      // resolved model or inference-profile identifier
	Retry  RetryConfig // uses DefaultRetryConfig when zero
	Logger *zap.Logger
}

// NewClient builds a reasoning client backed by Bedrock. Credentials and
// shared config come from the default AWS chain; only the region is pinned.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model identifier is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	retryCfg := cfg.Retry
	if retryCfg.MaxRetries == 0 {
		retryCfg = DefaultRetryConfig()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	api := anthropic.NewClient(bedrock.WithConfig(awsCfg))

	var breaker *CircuitBreaker
	if retryCfg.CircuitBreakerEnabled {
		breaker = NewCircuitBreaker(retryCfg.FailureThreshold, retryCfg.SuccessThreshold, retryCfg.OpenTimeout)
	}

	var sem *semaphore.Weighted
	if retryCfg.MaxConcurrentCalls > 0 {
		sem = semaphore.NewWeighted(int64(retryCfg.MaxConcurrentCalls))
	}

	var limiter *rate.Limiter
	if retryCfg.CallsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(retryCfg.CallsPerMinute)/60.0), 1)
	}

	logger.Debug("reasoning client initialized",
		zap.String("region", cfg.Region),
		zap.String("model", cfg.Model))

	return &Client{
		api:            &api,
		model:          cfg.Model,
		retry:          retryCfg,
		circuitBreaker: breaker,
		concurrencySem: sem,
		limiter:        limiter,
		logger:         logger,
	}, nil
}

// Generate sends a single prompt and returns the concatenated text blocks of
// the response. Transport failures are retried with backoff; a response with
// no text content is an error, not an empty success.
func (c *Client) Generate(ctx context.Context, prompt, operation string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	start := time.Now()
	var response *anthropic.Message
	err := c.retryWithBackoff(ctx, operation, func(attemptCtx context.Context) error {
		resp, apiErr := c.api.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: int64(maxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("reasoning call %s failed: %w", operation, err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("reasoning call %s returned no text content", operation)
	}

	c.logger.Info("reasoning call complete",
		zap.String("operation", operation),
		zap.Int64("input_tokens", response.Usage.InputTokens),
		zap.Int64("output_tokens", response.Usage.OutputTokens),
		zap.Duration("duration", time.Since(start)))

	return text, nil
}
