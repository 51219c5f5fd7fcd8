// Package google implements ai.ChatProvider over the Gemini API.
package google

import (
	"context"
	"errors"

	ai "github.com/spetersoncode/tablebridge"
	"google.golang.org/genai"
)

// DefaultModel is used when neither the client nor the request names one.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyStream is returned when Gemini closes a stream without data.
var ErrEmptyStream = errors.New("google: stream returned no data")

// Client wraps the Google GenAI SDK.
type Client struct {
	client *genai.Client
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

// New creates a Gemini API client authenticated with apiKey.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func buildConfig(system *genai.Content, options *ai.Options) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{SystemInstruction: system}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}
	if len(options.Tools) > 0 {
		config.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			config.ToolConfig = convertToolChoice(options.ToolChoice)
		}
	}
	return config
}

// ChatStream streams generated content. Function calls are collected from
// every chunk and delivered on the final event.
func (c *Client) ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error) {
	options := ai.ApplyOptions(opts...)
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	contents, system := convertMessages(messages)
	config := buildConfig(system, options)
	ch := make(chan ai.StreamEvent)

	go func() {
		defer close(ch)

		send := func(ev ai.StreamEvent) bool {
			select {
			case ch <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var content string
		var finishReason string
		var usage ai.Usage
		var allParts []*genai.Part
		chunks := 0

		for resp, err := range c.client.Models.GenerateContentStream(ctx, model, contents, config) {
			chunks++
			if err != nil {
				send(ai.StreamEvent{Err: wrapError(err)})
				return
			}
			if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
				send(ai.StreamEvent{Err: &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)}})
				return
			}

			if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
				for _, part := range resp.Candidates[0].Content.Parts {
					allParts = append(allParts, part)
					if part.Text != "" && !part.Thought {
						content += part.Text
						if !send(ai.StreamEvent{Delta: part.Text}) {
							return
						}
					}
				}
				finishReason = string(resp.Candidates[0].FinishReason)
			}
			if resp.UsageMetadata != nil {
				usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
				usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
			}
		}

		if chunks == 0 {
			send(ai.StreamEvent{Err: ErrEmptyStream})
			return
		}

		send(ai.StreamEvent{
			Done: true,
			Response: &ai.Response{
				Content:      content,
				FinishReason: finishReason,
				Usage:        usage,
				ToolCalls:    extractToolCalls(allParts),
			},
		})
	}()

	return ch, nil
}
