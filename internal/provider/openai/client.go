// Package openai implements ai.ChatProvider over the OpenAI chat completions
// API. Any compatible endpoint works through WithBaseURL, which is how
// OpenRouter is reached.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	ai "github.com/spetersoncode/tablebridge"
)

// DefaultModel is used when neither the client nor the request names one.
const DefaultModel = "gpt-4o"

// Client wraps the OpenAI SDK.
type Client struct {
	client     *openai.Client
	model      string
	reqOptions []option.RequestOption
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

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.reqOptions = append(c.reqOptions, option.WithBaseURL(url))
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		if value != "" {
			c.reqOptions = append(c.reqOptions, option.WithHeader(key, value))
		}
	}
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...ClientOption) *Client {
	c := &Client{model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, c.reqOptions...)
	client := openai.NewClient(reqOpts...)
	c.client = &client
	return c
}

// Model returns the default model.
func (c *Client) Model() string { return c.model }

func (c *Client) buildParams(messages []ai.Message, options *ai.Options) openai.ChatCompletionNewParams {
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: convertMessages(messages),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}
	return params
}

// ChatStream streams a completion. Tool call fragments are accumulated and
// delivered on the final event.
func (c *Client) ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error) {
	params := c.buildParams(messages, ai.ApplyOptions(opts...))
	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
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

		var acc openai.ChatCompletionAccumulator
		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				if !send(ai.StreamEvent{Delta: chunk.Choices[0].Delta.Content}) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			send(ai.StreamEvent{Err: wrapError(err)})
			return
		}
		if len(acc.Choices) == 0 {
			send(ai.StreamEvent{Err: ai.NewTransientError("openai: empty completion", 0, nil)})
			return
		}

		choice := acc.Choices[0]
		send(ai.StreamEvent{
			Done: true,
			Response: &ai.Response{
				Content:      choice.Message.Content,
				FinishReason: string(choice.FinishReason),
				Usage: ai.Usage{
					InputTokens:  int(acc.Usage.PromptTokens),
					OutputTokens: int(acc.Usage.CompletionTokens),
				},
				ToolCalls: extractToolCalls(choice.Message.ToolCalls),
			},
		})
	}()

	return ch, nil
}
