// Command tablebridge serves the restaurant finder agent over A2A with the
// A2UI extension, and over AG-UI for CopilotKit-style frontends.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/tablebridge/finder"
)

var rootCmd = &cobra.Command{
	Use:          "tablebridge",
	Short:        "A2A restaurant finder agent with A2UI support",
	Version:      finder.Version,
	SilenceUsage: true,
	Long: `Tablebridge runs a restaurant finder agent and speaks A2A JSON-RPC.
Clients that request the A2UI extension receive rendered interfaces
as data parts; all other clients receive plain text.

Configuration is read from the environment and from a .env file in the
working directory.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger creates a text logger on stderr at level.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
