package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatICS  = "ics"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

var (
	ErrExportUnknownFormat = errors.New("Unknown export format, use xlsx or ics")
	ErrExportGenerateFail  = errors.New("Failed to generate export file")
)

// ExportFile is a rendered download.
type ExportFile struct {
	Data        *bytes.Buffer
	Filename    string
	ContentType string
}

// ExportService renders timesheets and invoices as files. The handler sets
// the download headers.
type ExportService interface {
	ExportTimesheet(ctx context.Context, id, format string, caller Caller) (*ExportFile, error)
	ExportInvoice(ctx context.Context, id string) (*ExportFile, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportTimesheet
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportTimesheet(ctx context.Context, id, format string, caller Caller) (*ExportFile, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatICS {
		return nil, ErrExportUnknownFormat
	}

	ts, err := s.repo.Timesheet.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTimesheetNotFound)
	}
	if !mayAccess(caller, ts.UserID) {
		return nil, ErrTimesheetForbidden
	}

	base := fmt.Sprintf("timesheet_%s", weeksheet.FormatDate(ts.WeekStartDate))
	if format == FormatICS {
		return &ExportFile{
			Data:        bytes.NewBufferString(s.timesheetCalendar(ts)),
			Filename:    base + ".ics",
			ContentType: contentTypeICS,
		}, nil
	}

	buf, err := s.timesheetWorkbook(ts)
	if err != nil {
		s.logger.Error("render timesheet workbook failed", zap.String("id", id), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return &ExportFile{Data: buf, Filename: base + ".xlsx", ContentType: contentTypeXLSX}, nil
}

// timesheetWorkbook lays the week out Monday to Sunday, one row per entry and
// a dash row for empty days.
func (s *exportService) timesheetWorkbook(ts *model.Timesheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Timesheet"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	f.SetColWidth(sheet, "A", "B", 12)
	f.SetColWidth(sheet, "C", "D", 24)
	f.SetColWidth(sheet, "E", "F", 14)
	f.SetColWidth(sheet, "G", "G", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	owner := ts.UserID
	if ts.User != nil {
		owner = ts.User.FullName()
	}
	f.SetCellValue(sheet, "A1", fmt.Sprintf("Timesheet - %s - week of %s (%s)",
		owner, weeksheet.FormatDate(ts.WeekStartDate), ts.Status))
	f.SetCellStyle(sheet, "A1", "A1", boldStyle)

	headers := []string{"Day", "Date", "Project", "Client", "Task Type", "Hours", "Notes"}
	for i, h := range headers {
		c := cell(colName(i), 3)
		f.SetCellValue(sheet, c, h)
		f.SetCellStyle(sheet, c, c, headerStyle)
	}

	byDay := make(map[weeksheet.DayIndex][]model.TimeEntry, 7)
	for _, e := range ts.Entries {
		if day, ok := weeksheet.DayOf(ts.WeekStartDate, e.EntryDate); ok {
			byDay[day] = append(byDay[day], e)
		}
	}

	row := 4
	dates := weeksheet.DayDates(ts.WeekStartDate)
	for day := weeksheet.Monday; day <= weeksheet.Sunday; day++ {
		entries := byDay[day]
		if len(entries) == 0 {
			f.SetCellValue(sheet, cell("A", row), day.String())
			f.SetCellValue(sheet, cell("B", row), weeksheet.FormatDate(dates[day]))
			f.SetCellValue(sheet, cell("C", row), "-")
			row++
			continue
		}
		for _, e := range entries {
			f.SetCellValue(sheet, cell("A", row), day.String())
			f.SetCellValue(sheet, cell("B", row), weeksheet.FormatDate(e.EntryDate))
			if e.Project != nil {
				f.SetCellValue(sheet, cell("C", row), e.Project.Name)
				if e.Project.Client != nil {
					f.SetCellValue(sheet, cell("D", row), e.Project.Client.Name)
				}
			}
			f.SetCellValue(sheet, cell("E", row), e.TaskType)
			f.SetCellValue(sheet, cell("F", row), e.Hours)
			f.SetCellValue(sheet, cell("G", row), e.Notes)
			row++
		}
	}

	f.SetCellValue(sheet, cell("E", row), "Total")
	f.SetCellValue(sheet, cell("F", row), ts.TotalHours())
	f.SetCellStyle(sheet, cell("E", row), cell("F", row), boldStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// timesheetCalendar emits one all-day event per entry.
func (s *exportService) timesheetCalendar(ts *model.Timesheet) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//payroll-processing//timesheet//EN")
	cal.SetName(fmt.Sprintf("Timesheet %s", weeksheet.FormatDate(ts.WeekStartDate)))

	stamp := s.now().UTC()
	for _, e := range ts.Entries {
		ev := cal.AddEvent(e.EntryID + "@payroll-processing")
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(e.EntryDate)
		ev.SetAllDayEndAt(e.EntryDate.AddDate(0, 0, 1))

		label := e.TaskType
		if e.Project != nil {
			label = e.Project.Name
		}
		ev.SetSummary(fmt.Sprintf("%s (%gh)", label, e.Hours))
		if e.Notes != "" {
			ev.SetDescription(e.Notes)
		}
	}
	return cal.Serialize()
}

// ═══════════════════════════════════════════════════════════
// ExportInvoice
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportInvoice(ctx context.Context, id string) (*ExportFile, error) {
	inv, err := s.repo.Invoice.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrInvoiceNotFound)
	}

	buf, err := s.invoiceWorkbook(inv)
	if err != nil {
		s.logger.Error("render invoice workbook failed", zap.String("id", id), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return &ExportFile{
		Data:        buf,
		Filename:    fmt.Sprintf("invoice_%s.xlsx", weeksheet.FormatDate(inv.IssueDate)),
		ContentType: contentTypeXLSX,
	}, nil
}

func (s *exportService) invoiceWorkbook(inv *model.Invoice) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoice"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	f.SetColWidth(sheet, "A", "A", 48)
	f.SetColWidth(sheet, "B", "D", 14)

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	client := inv.ClientID
	if inv.Client != nil {
		client = inv.Client.Name
	}
	meta := [][2]string{
		{"Client", client},
		{"Issue date", weeksheet.FormatDate(inv.IssueDate)},
		{"Due date", weeksheet.FormatDate(inv.DueDate)},
		{"Period", weeksheet.FormatDate(inv.PeriodStart) + " to " + weeksheet.FormatDate(inv.PeriodEnd)},
		{"Status", inv.Status},
	}
	row := 1
	for _, m := range meta {
		f.SetCellValue(sheet, cell("A", row), m[0])
		f.SetCellValue(sheet, cell("B", row), m[1])
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), boldStyle)
		row++
	}

	row++
	for i, h := range []string{"Description", "Hours", "Rate", "Amount"} {
		f.SetCellValue(sheet, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheet, cell("A", row), cell("D", row), boldStyle)
	row++

	for _, li := range inv.LineItems {
		f.SetCellValue(sheet, cell("A", row), li.Description)
		f.SetCellValue(sheet, cell("B", row), li.Hours.InexactFloat64())
		f.SetCellValue(sheet, cell("C", row), li.Rate.InexactFloat64())
		f.SetCellValue(sheet, cell("D", row), li.LineTotal.InexactFloat64())
		row++
	}

	row++
	totals := [][2]interface{}{
		{"Total", inv.TotalAmount.InexactFloat64()},
		{"Paid", inv.AmountPaid.InexactFloat64()},
		{"Balance due", inv.BalanceDue().InexactFloat64()},
	}
	for _, t := range totals {
		f.SetCellValue(sheet, cell("C", row), t[0])
		f.SetCellValue(sheet, cell("D", row), t[1])
		f.SetCellStyle(sheet, cell("C", row), cell("C", row), boldStyle)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── helpers ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
