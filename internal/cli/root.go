// Package cli implements the advisorctl terminal front end.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"advisorbot/internal/bootstrap"
)

const (
	GroupChat     = "chat"
	GroupSessions = "sessions"
	GroupAccount  = "account"
)

// OpenFunc builds the application for one invocation. The returned func
// releases it.
type OpenFunc func(ctx context.Context) (*bootstrap.App, func() error, error)

type Options struct {
	Open OpenFunc
	In   io.Reader
	Out  io.Writer
}

type env struct {
	opts   Options
	app    *bootstrap.App
	close  func() error
	reader *bufio.Reader
}

func NewRootCmd(opts Options) *cobra.Command {
	e := &env{opts: opts, reader: bufio.NewReader(opts.In)}

	rootCmd := &cobra.Command{
		Use:           "advisorctl",
		Short:         "University advising chatbot from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, closeFn, err := opts.Open(cmd.Context())
			if err != nil {
				return err
			}
			e.app = a
			e.close = closeFn
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if e.close == nil {
				return nil
			}
			return e.close()
		},
	}
	rootCmd.SetIn(opts.In)
	rootCmd.SetOut(opts.Out)
	rootCmd.SetErr(opts.Out)

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupChat, Title: "Chatting with the advisor"},
		&cobra.Group{ID: GroupSessions, Title: "Managing chat sessions"},
		&cobra.Group{ID: GroupAccount, Title: "Account, profile and preferences"},
	)

	rootCmd.AddCommand(
		newSendCmd(e),
		newAttachCmd(e),
		newMessagesCmd(e),
		newSyncCmd(e),
		newHistoryCmd(e),
		newSessionsCmd(e),
		newLoginCmd(e),
		newLogoutCmd(e),
		newRegisterCmd(e),
		newWhoamiCmd(e),
		newProfileCmd(e),
		newThemeCmd(e),
	)
	return rootCmd
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.opts.Out, format, args...)
}

// prompt reads one line from the input stream.
func (e *env) prompt(label string) (string, error) {
	e.printf("%s", label)
	line, err := e.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read input failed: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question on the input stream.
func (e *env) confirm(question string) bool {
	answer, err := e.prompt(question + " [y/N]: ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (e *env) valueOrPrompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return e.prompt(label)
}
