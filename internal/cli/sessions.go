package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"advisorbot/internal/app"
	"advisorbot/internal/model"
)

func newSessionsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"s"},
		Short:   "Manage chat sessions",
		GroupID: GroupSessions,
	}
	cmd.AddCommand(
		newSessionsListCmd(e),
		newSessionsNewCmd(e),
		newSessionsSelectCmd(e),
		newSessionsRenameCmd(e),
		newSessionsPinCmd(e),
		newSessionsArchiveCmd(e),
		newSessionsDeleteCmd(e),
	)
	return cmd
}

func newSessionsListCmd(e *env) *cobra.Command {
	var (
		query    string
		archived bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			var sessions []model.Session
			if archived {
				sessions = e.app.Sessions.Archived()
			} else {
				sessions = e.app.Sessions.List(query)
			}
			active := e.app.Sessions.ActiveID()
			for _, s := range sessions {
				marker := " "
				if s.ID == active {
					marker = "*"
				}
				var flags []string
				if s.Pinned {
					flags = append(flags, "pinned")
				}
				if s.Archived {
					flags = append(flags, "archived")
				}
				e.printf("%s %s\t%s\t%d msgs\t%s\n", marker, s.ID, s.Title, len(s.Messages), strings.Join(flags, ","))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by title")
	cmd.Flags().BoolVar(&archived, "archived", false, "list archived sessions")
	return cmd
}

func newSessionsNewCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new session and make it active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := e.app.Sessions.CreateSession(cmd.Context())
			e.printf("%s\n", s.ID)
			return nil
		},
	}
}

func newSessionsSelectCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a session active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !e.app.Sessions.SelectSession(cmd.Context(), args[0]) {
				return fmt.Errorf("%w: %s", app.ErrSessionNotFound, args[0])
			}
			return nil
		},
	}
}

func newSessionsRenameCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title...>",
		Short: "Rename a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := e.app.Sessions.Session(args[0]); !ok {
				return fmt.Errorf("%w: %s", app.ErrSessionNotFound, args[0])
			}
			if !e.app.Sessions.RenameSession(cmd.Context(), args[0], strings.Join(args[1:], " ")) {
				e.printf("title unchanged\n")
			}
			return nil
		},
	}
}

func newSessionsPinCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin or unpin a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := e.app.Sessions.TogglePin(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%w: %s", app.ErrSessionNotFound, args[0])
			}
			e.printf("pinned=%t\n", s.Pinned)
			return nil
		},
	}
}

func newSessionsArchiveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive or restore a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := e.app.Sessions.ToggleArchive(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%w: %s", app.ErrSessionNotFound, args[0])
			}
			e.printf("archived=%t\n", s.Archived)
			return nil
		},
	}
}

func newSessionsDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := e.confirm
			if yes {
				confirm = app.Confirmed
			}
			return e.app.Sessions.DeleteSession(cmd.Context(), args[0], confirm)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
