package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"cybersandbox/internal/shim"
)

func newChatCommand(a *app) *cobra.Command {
	var (
		system      string
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "chat [MESSAGE...]",
		Short: "Send a message to the assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive || len(args) == 0 {
				return a.chatREPL(cmd, system)
			}
			return a.invoke(cmd, shim.TriggerChat, shim.Inputs{
				shim.FieldChatMessage:  strings.Join(args, " "),
				shim.FieldSystemPrompt: system,
			})
		},
	}
	cmd.Flags().StringVarP(&system, "system", "s", "", "System prompt (defaults to preference or config)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Start an interactive session")
	return cmd
}

// chatREPL reads messages with line editing and history until EOF, Ctrl+C or /exit.
func (a *app) chatREPL(cmd *cobra.Command, system string) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	history := filepath.Join(a.cfg.Data.Dir, "chat_history")
	if f, err := os.Open(history); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if err := os.MkdirAll(filepath.Dir(history), 0o755); err != nil {
			return
		}
		if f, err := os.OpenFile(history, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Chatting with", a.client.BaseURL(), "(/exit to quit)")
	for {
		input, err := line.Prompt("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "/exit" || input == "/quit" {
			return nil
		}
		line.AppendHistory(input)
		// Failures are printed inline; the session continues.
		_ = a.invoke(cmd, shim.TriggerChat, shim.Inputs{
			shim.FieldChatMessage:  input,
			shim.FieldSystemPrompt: system,
		})
	}
}
