package cli

import (
	"github.com/spf13/cobra"

	"advisorbot/internal/app"
	"advisorbot/internal/backend"
)

func newLoginCmd(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log in and pull your chat history",
		GroupID: GroupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := e.valueOrPrompt(email, "Email: ")
			if err != nil {
				return err
			}
			password, err := e.valueOrPrompt(password, "Password: ")
			if err != nil {
				return err
			}
			identity, err := e.app.Account.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			sessions, _ := e.app.Sessions.Snapshot()
			e.printf("logged in as %s (%d sessions)\n", identity.Email, len(sessions))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func newRegisterCmd(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account",
		GroupID: GroupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := e.valueOrPrompt(email, "Email: ")
			if err != nil {
				return err
			}
			password, err := e.valueOrPrompt(password, "Password: ")
			if err != nil {
				return err
			}
			if err := e.app.Account.Register(cmd.Context(), email, password); err != nil {
				return err
			}
			e.printf("registered %s, you can log in now\n", email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Forget the stored token",
		GroupID: GroupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.app.Account.Logout(cmd.Context())
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the identity in the stored token",
		GroupID: GroupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, err := e.app.Account.Identity(cmd.Context())
			if err != nil {
				return err
			}
			if identity.Email == "" {
				e.printf("not logged in\n")
				return nil
			}
			e.printf("%s\n", identity.Email)
			if identity.Role != "" {
				e.printf("role: %s\n", identity.Role)
			}
			return nil
		},
	}
}

func newProfileCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Short:   "Show or edit your profile",
		GroupID: GroupAccount,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := e.app.Account.Profile(cmd.Context())
			e.printf("name:       %s\n", p.Name)
			e.printf("email:      %s\n", p.Email)
			e.printf("student id: %s\n", p.StudentID)
			e.printf("major:      %s\n", p.Major)
			e.printf("picture:    %s\n", p.ProfilePicture)
			return nil
		},
	})

	var update backend.ProfileUpdate
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update name, student id and major",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.app.Account.UpdateProfile(cmd.Context(), update); err != nil {
				return err
			}
			e.printf("profile updated\n")
			return nil
		},
	}
	updateCmd.Flags().StringVar(&update.Name, "name", "", "display name")
	updateCmd.Flags().StringVar(&update.StudentID, "student-id", "", "student id")
	updateCmd.Flags().StringVar(&update.Major, "major", "", "major")
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				input app.ChangePasswordInput
				err   error
			)
			if input.CurrentPassword, err = e.prompt("Current password: "); err != nil {
				return err
			}
			if input.NewPassword, err = e.prompt("New password: "); err != nil {
				return err
			}
			if input.ConfirmPassword, err = e.prompt("Confirm new password: "); err != nil {
				return err
			}
			if err := e.app.Account.ChangePassword(cmd.Context(), input); err != nil {
				return err
			}
			e.printf("password changed\n")
			return nil
		},
	})
	return cmd
}

func newThemeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "theme",
		Short:   "Show or toggle the color theme",
		GroupID: GroupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			theme, err := e.app.Preferences.Theme(cmd.Context())
			if err != nil {
				return err
			}
			e.printf("%s\n", theme)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			theme, err := e.app.Preferences.ToggleTheme(cmd.Context())
			if err != nil {
				return err
			}
			e.printf("%s\n", theme)
			return nil
		},
	})
	return cmd
}
