package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the emsctl command tree around app. A zero App is
// configured from the config file on first use.
func NewRootCommand(app *App) *cobra.Command {
	var configPath, logLevel string

	root := &cobra.Command{
		Use:   "emsctl",
		Short: "Command-line client for timesheets, projects and invoices",
		Long: `emsctl talks to the timesheet backend over its REST API.
Log in once with 'emsctl login'; the session is kept in the user config directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.ready() {
				return nil
			}
			return app.init(configPath, logLevel)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./config/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr")

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newTimesheetCmd(app),
		newProjectsCmd(app),
		newClientsCmd(app),
		newInvoicesCmd(app),
	)
	return root
}
