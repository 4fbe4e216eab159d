package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smaraba1/payroll-processing/internal/access"
)

var allCapabilities = []access.Capability{
	access.EditOwnTimesheets, access.ApproveTimesheets, access.ViewUsers, access.ManageUsers,
	access.ManageClients, access.ManageProjects, access.ViewAllProjects, access.ManageInvoices,
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			sess, err := app.Sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", sess.FullName(), sess.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password, read from stdin when omitted")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and what the role allows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.current()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s <%s>\n", titleStyle.Render(sess.FullName()), sess.Email)
			fmt.Fprintf(w, "id:      %s\n", sess.UserID)
			fmt.Fprintf(w, "role:    %s\n", sess.Role)
			if !sess.ExpiresAt.IsZero() {
				fmt.Fprintf(w, "expires: %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}

			var caps []string
			for _, c := range allCapabilities {
				if sess.Can(c) {
					caps = append(caps, c.String())
				}
			}
			fmt.Fprintf(w, "can:     %s\n", strings.Join(caps, ", "))
			return nil
		},
	}
}
