package cli

import (
	"github.com/spf13/cobra"

	"github.com/smaraba1/payroll-processing/internal/access"
)

func newProjectsCmd(app *App) *cobra.Command {
	var all bool
	var page, size int
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects you can book time on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				_, api, err := app.authorize(access.ViewAllProjects)
				if err != nil {
					return err
				}
				result, err := api.ListProjects(cmd.Context(), page, size)
				if err != nil {
					return err
				}
				printProjects(cmd.OutOrStdout(), result.List)
				pageFooter(cmd.OutOrStdout(), result.Pagination)
				return nil
			}

			sess, api, err := app.authorize(access.EditOwnTimesheets)
			if err != nil {
				return err
			}
			list, err := api.ActiveProjects(cmd.Context(), sess.UserID)
			if err != nil {
				return err
			}
			printProjects(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every project, paged")
	cmd.Flags().IntVar(&page, "page", 1, "Page number with --all")
	cmd.Flags().IntVar(&size, "size", 20, "Page size with --all")
	return cmd
}

func newClientsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Client companies",
	}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := app.authorize(access.EditOwnTimesheets)
			if err != nil {
				return err
			}
			result, err := api.ListClients(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			printClients(cmd.OutOrStdout(), result.List)
			pageFooter(cmd.OutOrStdout(), result.Pagination)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&size, "size", 20, "Page size")

	search := &cobra.Command{
		Use:   "search NAME",
		Short: "Find clients whose name contains NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := app.authorize(access.EditOwnTimesheets)
			if err != nil {
				return err
			}
			found, err := api.SearchClients(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printClients(cmd.OutOrStdout(), found)
			return nil
		},
	}

	cmd.AddCommand(list, search)
	return cmd
}
