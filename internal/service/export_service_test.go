package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/smaraba1/payroll-processing/internal/dto"
)

func setupTestExportService() (ExportService, TimesheetService, *mockRepos) {
	repo, mocks := newMockRepos()
	seedTimesheetFixture(mocks)
	svc := NewExportService(repo, zap.NewNop())
	svc.(*exportService).now = func() time.Time { return time.Date(2024, 1, 14, 8, 0, 0, 0, time.UTC) }
	return svc, newTestTimesheetService(repo), mocks
}

func savedWeek(t *testing.T, tsSvc TimesheetService) *dto.TimesheetResponse {
	t.Helper()
	pto := dto.TimeEntryRequest{EntryDate: "2024-01-10", Hours: 8, TaskType: "PTO", Notes: "Dentist"}
	resp, err := tsSvc.Save(context.Background(), "e1", &dto.SaveTimesheetRequest{
		WeekStartDate: testWeek,
		Entries:       []dto.TimeEntryRequest{billable("2024-01-08", 8), billable("2024-01-08", 1), pto},
	}, employee)
	if err != nil {
		t.Fatalf("save week: %v", err)
	}
	return resp
}

func TestExportService_TimesheetXLSX(t *testing.T) {
	svc, tsSvc, _ := setupTestExportService()
	week := savedWeek(t, tsSvc)

	file, err := svc.ExportTimesheet(context.Background(), week.ID, "", employee)
	if err != nil {
		t.Fatalf("ExportTimesheet should succeed: %v", err)
	}
	if file.Filename != "timesheet_2024-01-07.xlsx" {
		t.Errorf("unexpected filename %s", file.Filename)
	}
	if file.ContentType != contentTypeXLSX {
		t.Errorf("unexpected content type %s", file.ContentType)
	}

	f, err := excelize.OpenReader(bytes.NewReader(file.Data.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Timesheet")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	// title, blank, header, Mon x2, Tue..Sun x6, total
	if len(rows) != 12 {
		t.Fatalf("expected 12 rows, got %d: %v", len(rows), rows)
	}
	if rows[2][0] != "Day" || rows[3][0] != "Monday" || rows[4][0] != "Monday" {
		t.Errorf("Monday should come first with both entries: %v %v", rows[3], rows[4])
	}
	if rows[3][2] != "Website" || rows[3][3] != "Acme" {
		t.Errorf("project and client columns: %v", rows[3])
	}
	if rows[10][0] != "Sunday" || rows[10][1] != "2024-01-07" {
		t.Errorf("Sunday is the anchor date and comes last: %v", rows[10])
	}
	total, _ := f.GetCellValue("Timesheet", "F12")
	if total != "17" {
		t.Errorf("expected total 17, got %q", total)
	}
}

func TestExportService_TimesheetICS(t *testing.T) {
	svc, tsSvc, _ := setupTestExportService()
	week := savedWeek(t, tsSvc)

	file, err := svc.ExportTimesheet(context.Background(), week.ID, FormatICS, admin)
	if err != nil {
		t.Fatalf("ExportTimesheet should succeed: %v", err)
	}
	if !strings.HasSuffix(file.Filename, ".ics") {
		t.Errorf("unexpected filename %s", file.Filename)
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(file.Data.Bytes()))
	if err != nil {
		t.Fatalf("parse calendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 3 {
		t.Fatalf("expected one event per entry, got %d", len(events))
	}
	summary := events[0].GetProperty(ics.ComponentPropertySummary)
	if summary == nil || summary.Value != "Website (8h)" {
		t.Errorf("unexpected summary %+v", summary)
	}
	desc := events[2].GetProperty(ics.ComponentPropertyDescription)
	if desc == nil || desc.Value != "Dentist" {
		t.Errorf("notes become the description: %+v", desc)
	}
}

func TestExportService_TimesheetErrors(t *testing.T) {
	svc, tsSvc, _ := setupTestExportService()
	week := savedWeek(t, tsSvc)
	ctx := context.Background()

	if _, err := svc.ExportTimesheet(ctx, week.ID, "pdf", employee); !errors.Is(err, ErrExportUnknownFormat) {
		t.Errorf("expected ErrExportUnknownFormat, got %v", err)
	}
	if _, err := svc.ExportTimesheet(ctx, "missing", FormatXLSX, employee); !errors.Is(err, ErrTimesheetNotFound) {
		t.Errorf("expected ErrTimesheetNotFound, got %v", err)
	}
	other := Caller{UserID: "e2", Role: employee.Role}
	if _, err := svc.ExportTimesheet(ctx, week.ID, FormatXLSX, other); !errors.Is(err, ErrTimesheetForbidden) {
		t.Errorf("expected ErrTimesheetForbidden, got %v", err)
	}
}

func TestExportService_Invoice(t *testing.T) {
	repo, _ := seedInvoiceFixture()
	invSvc := NewInvoiceService(repo, zap.NewNop())
	svc := NewExportService(repo, zap.NewNop())
	ctx := context.Background()

	inv, err := invSvc.Generate(ctx, generateReq(), "a1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	file, err := svc.ExportInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("ExportInvoice should succeed: %v", err)
	}
	if !strings.HasPrefix(file.Filename, "invoice_") || !strings.HasSuffix(file.Filename, ".xlsx") {
		t.Errorf("unexpected filename %s", file.Filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(file.Data.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Invoice")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	// 5 header lines, blank, column header, 2 lines, blank, 3 totals
	if len(rows) != 13 {
		t.Fatalf("expected 13 rows, got %d: %v", len(rows), rows)
	}
	if rows[7][0] != "Website - Test e1" {
		t.Errorf("unexpected first line %v", rows[7])
	}
	total, _ := f.GetCellValue("Invoice", "D11")
	if total != "1050" {
		t.Errorf("expected total 1050, got %q", total)
	}

	if _, err := svc.ExportInvoice(ctx, "missing"); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("expected ErrInvoiceNotFound, got %v", err)
	}
}
