// Package anthropic implements ai.ChatProvider over the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	ai "github.com/spetersoncode/tablebridge"
)

const (
	// DefaultModel is used when neither the client nor the request names one.
	DefaultModel = "claude-sonnet-4-5"

	defaultMaxTokens = 4096
)

// Client wraps the Anthropic SDK.
type Client struct {
	client *anthropic.Client
	model  string
}

var _ ai.ChatProvider = (*Client)(nil)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...ClientOption) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	c := &Client{client: &client, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) buildParams(messages []ai.Message, options *ai.Options) anthropic.MessageNewParams {
	model := c.model
	if options.Model != "" {
		model = options.Model
	}
	maxTokens := int64(defaultMaxTokens)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	msgs, system := convertMessages(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.Temperature != nil {
		params.Temperature = anthropic.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}
	return params
}

// ChatStream streams a message, accumulating content blocks so the final
// event carries text and tool calls.
func (c *Client) ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error) {
	stream := c.client.Messages.NewStreaming(ctx, c.buildParams(messages, ai.ApplyOptions(opts...)))
	ch := make(chan ai.StreamEvent)

	go func() {
		defer close(ch)
		defer stream.Close()

		send := func(ev ai.StreamEvent) bool {
			select {
			case ch <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var acc anthropic.Message
		for stream.Next() {
			ev := stream.Current()
			if err := acc.Accumulate(ev); err != nil {
				send(ai.StreamEvent{Err: err})
				return
			}
			if ev.Type != "content_block_delta" {
				continue
			}
			if text := ev.AsContentBlockDelta().Delta.AsTextDelta(); text.Type == "text_delta" && text.Text != "" {
				if !send(ai.StreamEvent{Delta: text.Text}) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			send(ai.StreamEvent{Err: wrapError(err)})
			return
		}

		var content string
		var toolCalls []ai.ToolCall
		for _, block := range acc.Content {
			switch block.Type {
			case "text":
				content += block.Text
			case "tool_use":
				toolCalls = append(toolCalls, ai.ToolCall{
					ID:        block.ID,
					Name:      block.Name,
					Arguments: string(block.Input),
				})
			}
		}

		send(ai.StreamEvent{
			Done: true,
			Response: &ai.Response{
				Content:      content,
				FinishReason: string(acc.StopReason),
				Usage: ai.Usage{
					InputTokens:  int(acc.Usage.InputTokens),
					OutputTokens: int(acc.Usage.OutputTokens),
				},
				ToolCalls: toolCalls,
			},
		})
	}()

	return ch, nil
}

// wrapError categorizes SDK API errors. 529 is Anthropic's overload status.
func wrapError(err error) error {
	var apiErr *anthropic.Error
	if err == nil || !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.StatusCode
	msg := "anthropic: " + http.StatusText(code)
	switch {
	case code == http.StatusTooManyRequests, code == 529, code >= 500 && code < 600:
		return ai.NewTransientError(msg, code, err)
	case code == http.StatusBadRequest, code == http.StatusNotFound, code == http.StatusUnprocessableEntity:
		return ai.NewUserInputError(msg, code, err)
	default:
		return ai.NewPermanentError(msg, code, err)
	}
}
