package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smaraba1/payroll-processing/internal/access"
)

func newTimesheetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timesheet",
		Aliases: []string{"ts"},
		Short:   "Weekly timesheets",
	}
	cmd.AddCommand(
		newTimesheetListCmd(app),
		newTimesheetShowCmd(app),
		newTimesheetEditCmd(app),
		newTimesheetSubmitCmd(app),
		newTimesheetReviewCmd(app, true),
		newTimesheetReviewCmd(app, false),
		newTimesheetDeleteCmd(app),
		newTimesheetPendingCmd(app),
		newTimesheetExportCmd(app),
	)
	return cmd
}

func newTimesheetListCmd(app *App) *cobra.Command {
	var userID string
	var page, size int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List timesheets, newest week first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, api, err := app.authorize(access.EditOwnTimesheets)
			if err != nil {
				return err
			}
			if userID == "" {
				userID = sess.UserID
			}
			if userID != sess.UserID && !sess.Can(access.ApproveTimesheets) {
				return fmt.Errorf("%w (needs %s)", ErrNotAllowed, access.ApproveTimesheets)
			}

			result, err := api.ListTimesheets(cmd.Context(), userID, page, size)
			if err != nil {
				return err
			}
			printTimesheets(cmd.OutOrStdout(), result.List)
			pageFooter(cmd.OutOrStdout(), result.Pagination)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Employee ID (default: yourself)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 20, "Page size")
	return cmd
}

func newTimesheetShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one timesheet with its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := app.authorize(access.EditOwnTimesheets)
			if err != nil {
				return err
			}
			ts, err := api.GetTimesheet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTimesheet(cmd.OutOrStdout(), ts)
			return nil
		},
	}
}

func newTimesheetSubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit ID",
		Short: "Submit a draft or rejected timesheet for approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := app.authorize(access.EditOwnTimesheets)
			if err != nil {
				return err
			}
			ts, err := api.SubmitTimesheet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Timesheet %s is %s.\n", ts.ID, status(ts.Status))
			return nil
		},
	}
}

// newTimesheetReviewCmd builds "approve" or "reject". Rejections need a
// comment so the employee knows what to fix.
func newTimesheetReviewCmd(app *App, approve bool) *cobra.Command {
	var comments string
	use, short := "approve ID", "Approve a submitted timesheet"
	if !approve {
		use, short = "reject ID", "Reject a submitted timesheet"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := app.authorize(access.ApproveTimesheets)
			if err != nil {
				return err
			}
			ts, err := api.ApproveTimesheet(cmd.Context(), args[0], approve, comments)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Timesheet %s is %s.\n", ts.ID, status(ts.Status))
			return nil
		},
	}
	cmd.Flags().StringVarP(&comments, "comments", "m", "", "Review comments")
	if !approve {
		_ = cmd.MarkFlagRequired("comments")
	}
	return cmd
}

func newTimesheetDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a draft timesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := app.authorize(access.EditOwnTimesheets)
			if err != nil {
				return err
			}
			if err := api.DeleteTimesheet(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted timesheet %s.\n", args[0])
			return nil
		},
	}
}

func newTimesheetPendingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List your reports' timesheets awaiting approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, api, err := app.authorize(access.ApproveTimesheets)
			if err != nil {
				return err
			}
			list, err := api.PendingForManager(cmd.Context(), sess.UserID)
			if err != nil {
				return err
			}
			printTimesheets(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func newTimesheetExportCmd(app *App) *cobra.Command {
	var format, dir string
	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Download a timesheet as a spreadsheet or calendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "xlsx" && format != "ics" {
				return fmt.Errorf("unsupported format %q (want xlsx or ics)", format)
			}
			_, api, err := app.authorize(access.EditOwnTimesheets)
			if err != nil {
				return err
			}
			file, err := api.DownloadTimesheet(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}

			dest := filepath.Join(dir, file.Filename)
			if err := os.WriteFile(dest, file.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes).\n", dest, len(file.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "xlsx or ics")
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "Directory to write into")
	return cmd
}
