package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/a2ui"
)

var (
	askURL       string
	askContextID string
	askTaskID    string
	askUI        bool
	askNoStream  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Send a query to a running agent and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []a2a.ClientOption
		if askUI {
			opts = append(opts, a2a.WithExtensions(a2ui.ExtensionURI))
		}
		client := a2a.NewClient(askURL, opts...)

		msg := a2a.NewMessage(a2a.RoleUser, a2a.NewTextPart(strings.Join(args, " ")))
		msg.ContextID = askContextID
		msg.TaskID = askTaskID
		params := a2a.SendMessageParams{Message: msg}
		out := cmd.OutOrStdout()

		if askNoStream {
			task, err := client.SendMessage(cmd.Context(), params)
			if err != nil {
				return err
			}
			if reply := lastAgentMessage(task); reply != nil {
				printParts(out, reply.Parts)
			}
			fmt.Fprintf(out, "\n[%s] task=%s context=%s\n", task.Status.State, task.ID, task.ContextID)
			return nil
		}

		var last *a2a.TaskStatusUpdateEvent
		err := client.StreamMessage(cmd.Context(), params, func(sr a2a.StreamResponse) error {
			switch ev := sr.Event.(type) {
			case a2a.Message:
				printParts(out, ev.Parts)
			case a2a.TaskStatusUpdateEvent:
				last = &ev
				if ev.Status.State == a2a.TaskStateWorking && ev.Status.Message != nil {
					for _, text := range ev.Status.Message.Texts() {
						fmt.Fprintf(os.Stderr, "... %s\n", text)
					}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if last != nil {
			fmt.Fprintf(out, "\n[%s] task=%s context=%s\n", last.Status.State, last.TaskID, last.ContextID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askURL, "url", "http://localhost:10002", "Agent endpoint")
	askCmd.Flags().StringVar(&askContextID, "context", "", "Continue an existing conversation")
	askCmd.Flags().StringVar(&askTaskID, "task", "", "Continue an input-required task")
	askCmd.Flags().BoolVar(&askUI, "ui", false, "Request the A2UI extension")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "Use message/send instead of message/stream")
}

// printParts writes text parts as-is and data parts as indented JSON.
func printParts(w io.Writer, parts []a2a.Part) {
	for _, p := range parts {
		switch part := p.(type) {
		case a2a.TextPart:
			fmt.Fprintln(w, part.Text)
		case a2a.DataPart:
			data, err := json.MarshalIndent(part.Data, "", "  ")
			if err != nil {
				fmt.Fprintf(w, "<unprintable data part: %v>\n", err)
				continue
			}
			fmt.Fprintln(w, string(data))
		}
	}
}

// lastAgentMessage returns the newest agent message in the task history,
// falling back to the status message.
func lastAgentMessage(task *a2a.Task) *a2a.Message {
	for i := len(task.History) - 1; i >= 0; i-- {
		if task.History[i].Role == a2a.RoleAgent {
			return &task.History[i]
		}
	}
	return task.Status.Message
}
