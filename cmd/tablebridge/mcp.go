package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/tablebridge/finder"
	"github.com/spetersoncode/tablebridge/mcp"
	"github.com/spetersoncode/tablebridge/restaurant"
	"github.com/spetersoncode/tablebridge/tool"
)

var mcpBaseURL string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the restaurant tool over MCP on stdin/stdout",
	Long: `Serve get_restaurants to MCP clients over stdio. No LLM provider is
needed. Logs go to stderr so they never mix with protocol frames.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(slog.LevelInfo)

		catalog, err := restaurant.Load(mcpBaseURL)
		if err != nil {
			return err
		}
		registry := tool.NewRegistry().Add(restaurant.Tool(catalog, logger))

		logger.Info("serving mcp over stdio", "tools", registry.Names())
		return mcp.ServeStdio(registry,
			mcp.WithName("tablebridge"),
			mcp.WithVersion(finder.Version),
			mcp.WithLogger(logger),
		)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpBaseURL, "base-url", restaurant.DefaultBaseURL, "Public base URL for restaurant image links")
}
