package a2a

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
)

// ExtensionsHeader carries requested extension URIs, comma-separated.
const ExtensionsHeader = "X-A2A-Extensions"

// Client calls a remote A2A agent over JSON-RPC.
type Client struct {
	endpoint   string
	httpClient *http.Client
	extensions []string
	nextID     atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithExtensions requests extensions on every call.
func WithExtensions(uris ...string) ClientOption {
	return func(client *Client) {
		client.extensions = append(client.extensions, uris...)
	}
}

// NewClient creates a client for the agent at endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Card fetches the agent card.
func (c *Client) Card(ctx context.Context) (*AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/.well-known/agent-card.json", nil)
	if err != nil {
		return nil, fmt.Errorf("a2a: create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("a2a: fetch card: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("a2a: fetch card: status %d", resp.StatusCode)
	}

	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("a2a: decode card: %w", err)
	}
	return &card, nil
}

// SendMessage runs a turn and returns the resulting task.
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Task, error) {
	var task Task
	if err := c.call(ctx, MethodMessageSend, params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SendText sends a user text message in the given context.
func (c *Client) SendText(ctx context.Context, contextID, text string) (*Task, error) {
	msg := NewMessage(RoleUser, NewTextPart(text))
	msg.ContextID = contextID
	return c.SendMessage(ctx, SendMessageParams{Message: msg})
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.call(ctx, MethodTasksGet, TaskQueryParams{ID: id}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CancelTask cancels a task and returns its final state.
func (c *Client) CancelTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.call(ctx, MethodTasksCancel, TaskIDParams{ID: id}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// StreamResponse is one frame of a message/stream response. Exactly one
// field is set.
type StreamResponse struct {
	Task  *Task
	Event Event
}

// StreamMessage runs a turn over SSE, calling handle for each frame until
// the server ends the stream or handle returns an error.
func (c *Client) StreamMessage(ctx context.Context, params SendMessageParams, handle func(StreamResponse) error) error {
	resp, err := c.post(ctx, MethodMessageStream, params, "text/event-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		var rr rawResponse
		if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
			return fmt.Errorf("a2a: decode response: %w", err)
		}
		if rr.Error != nil {
			return rr.Error
		}
		return fmt.Errorf("a2a: unexpected content type %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			return nil
		}

		var rr rawResponse
		if err := json.Unmarshal([]byte(data), &rr); err != nil {
			return fmt.Errorf("a2a: decode frame: %w", err)
		}
		if rr.Error != nil {
			return rr.Error
		}
		sr, err := decodeStreamResult(rr.Result)
		if err != nil {
			return err
		}
		if err := handle(sr); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("a2a: read stream: %w", err)
	}
	return nil
}

func decodeStreamResult(raw json.RawMessage) (StreamResponse, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return StreamResponse{}, fmt.Errorf("a2a: decode frame: %w", err)
	}

	switch head.Kind {
	case "task":
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return StreamResponse{}, fmt.Errorf("a2a: decode task: %w", err)
		}
		return StreamResponse{Task: &t}, nil
	case "message":
		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			return StreamResponse{}, fmt.Errorf("a2a: decode message: %w", err)
		}
		return StreamResponse{Event: m}, nil
	case "status-update":
		var ev TaskStatusUpdateEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return StreamResponse{}, fmt.Errorf("a2a: decode status update: %w", err)
		}
		return StreamResponse{Event: ev}, nil
	}
	return StreamResponse{}, fmt.Errorf("a2a: unknown frame kind %q", head.Kind)
}

func (c *Client) call(ctx context.Context, method string, params, out any) error {
	resp, err := c.post(ctx, method, params, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("a2a: read response: %w", err)
	}
	var rr rawResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return fmt.Errorf("a2a: decode response: %w", err)
	}
	if rr.Error != nil {
		return rr.Error
	}
	if err := json.Unmarshal(rr.Result, out); err != nil {
		return fmt.Errorf("a2a: decode result: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, params any, accept string) (*http.Response, error) {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("a2a: encode params: %w", err)
	}
	id, _ := json.Marshal(c.nextID.Add(1))
	body, err := json.Marshal(Request{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  rawParams,
	})
	if err != nil {
		return nil, fmt.Errorf("a2a: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("a2a: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	if len(c.extensions) > 0 {
		req.Header.Set(ExtensionsHeader, strings.Join(c.extensions, ","))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("a2a: %s: %w", method, err)
	}
	return resp, nil
}
