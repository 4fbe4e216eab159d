package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/client"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

func newInvoicesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"inv"},
		Short:   "Client invoices",
	}
	cmd.AddCommand(newInvoiceListCmd(app), newInvoiceGenerateCmd(app), newInvoicePayCmd(app))
	return cmd
}

func newInvoiceListCmd(app *App) *cobra.Command {
	var f client.InvoiceFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := app.authorize(access.ManageInvoices)
			if err != nil {
				return err
			}
			result, err := api.ListInvoices(cmd.Context(), f)
			if err != nil {
				return err
			}
			printInvoices(cmd.OutOrStdout(), result.List)
			pageFooter(cmd.OutOrStdout(), result.Pagination)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.ClientID, "client", "", "Client ID")
	cmd.Flags().StringVar(&f.Status, "status", "", "DRAFT, SENT, PAID, OVERDUE or CANCELLED")
	cmd.Flags().StringVar(&f.StartDate, "from", "", "Issued on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.EndDate, "to", "", "Issued on or before (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.PageSize, "size", 20, "Page size")
	return cmd
}

func newInvoiceGenerateCmd(app *App) *cobra.Command {
	var req dto.GenerateInvoiceRequest
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Bill a client's approved billable hours for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for flag, v := range map[string]string{"from": req.StartDate, "to": req.EndDate, "due": req.DueDate} {
				if _, err := weeksheet.ParseDate(v); err != nil {
					return fmt.Errorf("--%s must be YYYY-MM-DD", flag)
				}
			}
			_, api, err := app.authorize(access.ManageInvoices)
			if err != nil {
				return err
			}
			inv, err := api.GenerateInvoice(cmd.Context(), req)
			if err != nil {
				return err
			}
			printInvoice(cmd.OutOrStdout(), inv)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.ClientID, "client", "", "Client ID (required)")
	cmd.Flags().StringVar(&req.StartDate, "from", "", "Period start (required)")
	cmd.Flags().StringVar(&req.EndDate, "to", "", "Period end (required)")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "Due date (required)")
	for _, f := range []string{"client", "from", "to", "due"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newInvoicePayCmd(app *App) *cobra.Command {
	var amount string
	var req dto.RecordPaymentRequest
	cmd := &cobra.Command{
		Use:   "pay ID",
		Short: "Record a payment against an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil || !amt.IsPositive() {
				return fmt.Errorf("--amount must be a positive number, got %q", amount)
			}
			req.Amount = amt

			_, api, err := app.authorize(access.ManageInvoices)
			if err != nil {
				return err
			}
			inv, err := api.RecordPayment(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s is %s, balance %s.\n",
				inv.ID, status(inv.Status), inv.BalanceDue.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "Amount paid (required)")
	cmd.Flags().StringVar(&req.PaymentDate, "date", "", "Payment date, default today")
	cmd.Flags().StringVar(&req.Method, "method", "", "Payment method")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Notes")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
