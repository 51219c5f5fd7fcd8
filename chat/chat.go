// Package chat wraps a streaming provider with default request options,
// retries for transient failures and request logging.
package chat

import (
	"context"
	"log/slog"
	"time"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/internal/retry"
)

// Client is the chat surface consumed by the agent loop.
type Client interface {
	ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error)
}

// Retrying is a Client backed by a single ai.ChatProvider.
type Retrying struct {
	provider    ai.ChatProvider
	name        ai.Provider
	defaults    []ai.Option
	retryConfig retry.Config
	logger      *slog.Logger
	onRetry     func(provider ai.Provider)
}

var _ Client = (*Retrying)(nil)

// Option configures a Retrying client.
type Option func(*Retrying)

// WithDefaults sets options applied before every per-request option.
func WithDefaults(opts ...ai.Option) Option {
	return func(c *Retrying) {
		c.defaults = append(c.defaults, opts...)
	}
}

// WithRetryConfig replaces the default retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Retrying) {
		c.retryConfig = cfg
	}
}

// WithLogger sets the logger used for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Retrying) {
		c.logger = logger
	}
}

// WithRetryHook registers fn to be called before each retry.
func WithRetryHook(fn func(provider ai.Provider)) Option {
	return func(c *Retrying) {
		c.onRetry = fn
	}
}

// New creates a client for provider. The name is used in logs only.
func New(provider ai.ChatProvider, name ai.Provider, opts ...Option) *Retrying {
	c := &Retrying{
		provider:    provider,
		name:        name,
		retryConfig: retry.DefaultConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the backend name.
func (c *Retrying) Provider() ai.Provider { return c.name }

// ChatStream opens a stream, retrying transient failures to connect.
func (c *Retrying) ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error) {
	if len(messages) == 0 {
		return nil, ai.ErrNoMessages
	}
	opts = append(append([]ai.Option{}, c.defaults...), opts...)

	cfg := c.retryConfig
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("retrying chat stream",
			"provider", c.name,
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
		if c.onRetry != nil {
			c.onRetry(c.name)
		}
	}

	start := time.Now()
	ch, err := retry.DoStream(ctx, cfg, func() (<-chan ai.StreamEvent, error) {
		return c.provider.ChatStream(ctx, messages, opts...)
	})
	if err != nil {
		c.logger.Error("chat stream failed", "provider", c.name, "error", err)
		return nil, err
	}
	c.logger.Debug("chat stream opened",
		"provider", c.name,
		"messages", len(messages),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ch, nil
}
