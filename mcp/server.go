package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spetersoncode/tablebridge/tool"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
	logger  *slog.Logger
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithLogger sets the logger for tool calls. Stdio servers must not log
// to stdout.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(c *serverConfig) {
		c.logger = logger
	}
}

// NewServer creates an MCP server exposing every tool in registry.
func NewServer(registry *tool.Registry, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "tablebridge",
		version: "1.0.0",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)
	for _, t := range registry.Tools() {
		s.AddTool(ToMCPTool(t), handler(registry, cfg.logger))
	}
	return s
}

// handler routes MCP calls through registry.Execute. Unknown tools and
// handler failures are reported as error results, not protocol errors.
func handler(registry *tool.Registry, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call, err := FromMCPCallToolRequest(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := registry.Execute(ctx, call)
		if err != nil {
			logger.Warn("mcp tool call failed", "tool", call.Name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		logger.Debug("mcp tool call", "tool", call.Name, "is_error", result.IsError)
		return ToMCPCallToolResult(result), nil
	}
}

// ServeStdio serves registry over stdin/stdout until the input closes.
func ServeStdio(registry *tool.Registry, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(registry, opts...))
}
