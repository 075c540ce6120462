package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"advisorbot/internal/model"
)

func newSendCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "send <query...>",
		Short:   "Ask the advisor a question in the active session",
		GroupID: GroupChat,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := e.app.Exchange.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			e.printMessage(result.Reply)
			return nil
		},
	}
}

func newAttachCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "attach <file>",
		Short:   "Upload a file into the active session",
		GroupID: GroupChat,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s failed: %w", args[0], err)
			}
			defer f.Close()

			msg, err := e.app.Exchange.AttachFile(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			e.printMessage(*msg)
			return nil
		},
	}
}

func newMessagesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "messages [session-id]",
		Short:   "Print the messages of a session (default: active)",
		GroupID: GroupChat,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var (
				session model.Session
				ok      bool
			)
			if len(args) == 1 {
				session, ok = e.app.Sessions.Session(args[0])
			} else {
				session, ok = e.app.Sessions.Active()
			}
			if !ok {
				return fmt.Errorf("no such session")
			}
			e.printf("# %s\n", session.Title)
			for _, msg := range session.Messages {
				e.printMessage(msg)
			}
			return nil
		},
	}
}

func newSyncCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		Short:   "Replace local sessions with the server chat history",
		GroupID: GroupChat,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.app.Account.Sync(cmd.Context()); err != nil {
				return err
			}
			sessions, _ := e.app.Sessions.Snapshot()
			e.printf("synced %d sessions\n", len(sessions))
			return nil
		},
	}
}

func newHistoryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Manage server-side chat history",
		GroupID: GroupChat,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear your chat history on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.app.Account.ResetHistory(cmd.Context()); err != nil {
				return err
			}
			e.printf("server history cleared\n")
			return nil
		},
	})
	return cmd
}

func (e *env) printMessage(msg model.Message) {
	who := "you"
	if msg.Sender == model.SenderBot {
		who = "advisor"
	}
	e.printf("[%s] %s: %s\n", msg.Time, who, msg.Text)
}
