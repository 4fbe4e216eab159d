package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

var (
	colorSubtle  = lipgloss.Color("#6C7086")
	colorPrimary = lipgloss.Color("#89B4FA")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(colorSubtle)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	okStyle     = lipgloss.NewStyle().Foreground(colorSuccess)
)

var statusColors = map[string]lipgloss.Color{
	"DRAFT":     colorWarning,
	"SUBMITTED": colorPrimary,
	"APPROVED":  colorSuccess,
	"REJECTED":  colorError,
	"SENT":      colorPrimary,
	"PAID":      colorSuccess,
	"OVERDUE":   colorError,
	"CANCELLED": colorSubtle,
	"ACTIVE":    colorSuccess,
	"ON_HOLD":   colorWarning,
	"COMPLETED": colorSubtle,
}

func status(s string) string {
	if c, ok := statusColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Render(s)
	}
	return s
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func hours(h float64) string { return strconv.FormatFloat(h, 'f', -1, 64) }

func pageFooter(w io.Writer, p dto.PaginationMeta) {
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d total", p.Page, p.TotalPages, p.Total)))
}

// ── timesheets ──

func printTimesheets(w io.Writer, list []dto.TimesheetResponse) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No timesheets found.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, ts := range list {
		rows = append(rows, []string{ts.ID, ts.WeekStartDate, ts.UserName, status(ts.Status), hours(ts.TotalHours)})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Week", "Employee", "Status", "Hours"}, rows))
}

func printTimesheet(w io.Writer, ts *dto.TimesheetResponse) {
	fmt.Fprintf(w, "%s  week of %s  %s\n", titleStyle.Render(ts.ID), ts.WeekStartDate, status(ts.Status))
	if ts.RejectionComments != "" {
		fmt.Fprintln(w, errorStyle.Render("Rejected: "+ts.RejectionComments))
	}

	rows := make([][]string, 0, len(ts.Entries))
	for _, e := range ts.Entries {
		day := ""
		if d, err := weeksheet.ParseDate(e.EntryDate); err == nil {
			day = d.Weekday().String()
		}
		project := e.ProjectName
		if project == "" && e.ProjectID != nil {
			project = *e.ProjectID
		}
		rows = append(rows, []string{e.EntryDate, day, e.TaskType, project, hours(e.Hours), e.Notes})
	}
	fmt.Fprintln(w, renderTable([]string{"Date", "Day", "Task", "Project", "Hours", "Notes"}, rows))
	fmt.Fprintf(w, "Total: %s hours\n", hours(ts.TotalHours))
}

// printSheet renders the editable grid. names maps project IDs to labels.
func printSheet(w io.Writer, s *weeksheet.Sheet, names map[string]string) {
	if !s.HasAnchor() {
		fmt.Fprintln(w, mutedStyle.Render("No week selected. Use 'week YYYY-MM-DD'."))
		return
	}
	title := "New timesheet"
	if s.ID != "" {
		title = "Timesheet " + s.ID
	}
	fmt.Fprintf(w, "%s  week of %s\n", titleStyle.Render(title), weeksheet.FormatDate(s.Anchor))

	grid := s.Rows()
	rows := make([][]string, 0, len(grid))
	for _, r := range grid {
		day, date := "", ""
		if r.FirstOfDay {
			day, date = r.Day.String(), weeksheet.FormatDate(r.Date)
		}
		project := r.Entry.ProjectID
		if n, ok := names[project]; ok {
			project = n
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Index), day, date, string(r.Entry.TaskType), project, r.Entry.Hours, r.Entry.Notes,
		})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Day", "Date", "Task", "Project", "Hours", "Notes"}, rows))
	fmt.Fprintf(w, "Total: %s hours\n", hours(s.TotalHours()))
}

// ── catalog ──

func printProjects(w io.Writer, list []dto.ProjectResponse) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{p.ID, p.Name, p.ClientName, p.DefaultBillableRate.StringFixed(2), status(p.Status)})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Project", "Client", "Rate", "Status"}, rows))
}

func printClients(w io.Writer, list []dto.ClientResponse) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No clients found.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{c.ID, c.Name, c.ContactPerson, c.ContactEmail})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Client", "Contact", "Email"}, rows))
}

// ── invoices ──

func printInvoices(w io.Writer, list []dto.InvoiceResponse) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No invoices found.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, inv := range list {
		rows = append(rows, []string{
			inv.ID, inv.ClientName, inv.PeriodStart + " .. " + inv.PeriodEnd, inv.DueDate,
			status(inv.Status), inv.TotalAmount.StringFixed(2), inv.BalanceDue.StringFixed(2),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Client", "Period", "Due", "Status", "Total", "Balance"}, rows))
}

func printInvoice(w io.Writer, inv *dto.InvoiceResponse) {
	fmt.Fprintf(w, "%s  %s  %s .. %s  %s\n", titleStyle.Render(inv.ID), inv.ClientName, inv.PeriodStart, inv.PeriodEnd, status(inv.Status))
	rows := make([][]string, 0, len(inv.LineItems))
	for _, li := range inv.LineItems {
		rows = append(rows, []string{li.Description, li.Hours.String(), li.Rate.StringFixed(2), li.LineTotal.StringFixed(2)})
	}
	fmt.Fprintln(w, renderTable([]string{"Description", "Hours", "Rate", "Amount"}, rows))
	fmt.Fprintf(w, "Total %s  Paid %s  Balance %s\n",
		inv.TotalAmount.StringFixed(2), inv.AmountPaid.StringFixed(2), inv.BalanceDue.StringFixed(2))
}
