package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
)

const testWeek = "2024-01-07" // a Sunday

var (
	employee = Caller{UserID: "e1", Role: access.RoleEmployee}
	manager  = Caller{UserID: "m1", Role: access.RoleManager}
	admin    = Caller{UserID: "a1", Role: access.RoleAdmin}
)

func seedTimesheetFixture(mocks *mockRepos) {
	createTestUser(mocks.users, "a1", "a@example.com", "x", access.RoleAdmin)
	createTestUser(mocks.users, "m1", "m@example.com", "x", access.RoleManager)
	e := createTestUser(mocks.users, "e1", "e@example.com", "x", access.RoleEmployee)
	e.ManagerID = strPtr("m1")
	createTestUser(mocks.users, "e2", "e2@example.com", "x", access.RoleEmployee)

	mocks.clients.Create(context.Background(), &model.Client{ClientID: "c1", Name: "Acme"})
	mocks.projects.Create(context.Background(), &model.Project{ProjectID: "p1", Name: "Website", ClientID: "c1", Status: model.ProjectActive})
}

func newTestTimesheetService(repo *repository.Repository) TimesheetService {
	svc := NewTimesheetService(repo, zap.NewNop())
	svc.(*timesheetService).now = func() time.Time { return time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC) }
	return svc
}

func setupTestTimesheetService() (TimesheetService, *mockRepos) {
	repo, mocks := newMockRepos()
	seedTimesheetFixture(mocks)
	return newTestTimesheetService(repo), mocks
}

func billable(date string, hours float64) dto.TimeEntryRequest {
	return dto.TimeEntryRequest{ProjectID: strPtr("p1"), EntryDate: date, Hours: hours, TaskType: "BILLABLE"}
}

func TestTimesheetService_Save_CreatesDraft(t *testing.T) {
	svc, _ := setupTestTimesheetService()

	resp, err := svc.Save(context.Background(), "e1", &dto.SaveTimesheetRequest{
		WeekStartDate: testWeek,
		Entries: []dto.TimeEntryRequest{
			billable("2024-01-08", 8),
			billable("2024-01-08", 1.5),
			{EntryDate: "2024-01-09", Hours: 8, TaskType: "PTO", ProjectID: strPtr("p1")},
		},
	}, employee)
	if err != nil {
		t.Fatalf("Save should succeed: %v", err)
	}
	if resp.Status != model.TimesheetDraft {
		t.Errorf("expected DRAFT, got %s", resp.Status)
	}
	if resp.TotalHours != 17.5 {
		t.Errorf("expected 17.5 hours, got %v", resp.TotalHours)
	}
	if len(resp.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(resp.Entries))
	}
	if resp.Entries[0].ProjectName != "Website" || resp.Entries[0].ClientName != "Acme" {
		t.Errorf("entry should carry project and client names: %+v", resp.Entries[0])
	}
	if resp.Entries[2].ProjectID != nil {
		t.Error("PTO entries drop their project")
	}
}

func TestTimesheetService_Save_Validation(t *testing.T) {
	svc, _ := setupTestTimesheetService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  *dto.SaveTimesheetRequest
		want error
	}{
		{"monday anchor", &dto.SaveTimesheetRequest{WeekStartDate: "2024-01-08"}, ErrWeekStartNotSunday},
		{"outside week", &dto.SaveTimesheetRequest{WeekStartDate: testWeek, Entries: []dto.TimeEntryRequest{billable("2024-01-14", 1)}}, ErrEntryOutsideWeek},
		{"billable without project", &dto.SaveTimesheetRequest{WeekStartDate: testWeek, Entries: []dto.TimeEntryRequest{{EntryDate: "2024-01-08", Hours: 1, TaskType: "BILLABLE"}}}, ErrEntryProjectRequired},
		{"too many hours", &dto.SaveTimesheetRequest{WeekStartDate: testWeek, Entries: []dto.TimeEntryRequest{billable("2024-01-08", 25)}}, ErrEntryInvalidHours},
		{"bad task type", &dto.SaveTimesheetRequest{WeekStartDate: testWeek, Entries: []dto.TimeEntryRequest{{EntryDate: "2024-01-08", Hours: 1, TaskType: "NAP"}}}, ErrEntryInvalidTaskType},
		{"unknown project", &dto.SaveTimesheetRequest{WeekStartDate: testWeek, Entries: []dto.TimeEntryRequest{{ProjectID: strPtr("p9"), EntryDate: "2024-01-08", Hours: 1, TaskType: "BILLABLE"}}}, ErrEntryProjectNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(ctx, "e1", tc.req, employee)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTimesheetService_Save_OtherUserForbidden(t *testing.T) {
	svc, _ := setupTestTimesheetService()

	_, err := svc.Save(context.Background(), "e2", &dto.SaveTimesheetRequest{WeekStartDate: testWeek}, employee)
	if !errors.Is(err, ErrTimesheetForbidden) {
		t.Errorf("expected ErrTimesheetForbidden, got %v", err)
	}
}

func TestTimesheetService_Save_ReplacesEntries(t *testing.T) {
	svc, mocks := setupTestTimesheetService()
	ctx := context.Background()

	first, err := svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{
		WeekStartDate: testWeek,
		Entries:       []dto.TimeEntryRequest{billable("2024-01-08", 8), billable("2024-01-09", 8)},
	}, employee)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	keepID := first.Entries[1].ID

	kept := billable("2024-01-09", 6)
	kept.ID = &keepID
	forged := billable("2024-01-10", 2)
	forged.ID = strPtr("entry-from-elsewhere")

	second, err := svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{
		WeekStartDate: testWeek,
		Entries:       []dto.TimeEntryRequest{kept, forged},
	}, employee)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.ID != first.ID {
		t.Error("the same week should be updated in place")
	}
	if len(mocks.timesheets.sheets) != 1 {
		t.Errorf("expected one timesheet, got %d", len(mocks.timesheets.sheets))
	}
	if len(second.Entries) != 2 {
		t.Fatalf("omitted entry should be deleted, got %d entries", len(second.Entries))
	}
	if second.Entries[0].ID != keepID || second.Entries[0].Hours != 6 {
		t.Errorf("existing entry should keep its id: %+v", second.Entries[0])
	}
	if second.Entries[1].ID == "entry-from-elsewhere" {
		t.Error("ids that do not belong to the sheet must not be reused")
	}
}

func TestTimesheetService_Save_RepeatedEntryID(t *testing.T) {
	svc, mocks := setupTestTimesheetService()
	ctx := context.Background()

	first, err := svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{
		WeekStartDate: testWeek,
		Entries:       []dto.TimeEntryRequest{billable("2024-01-08", 8)},
	}, employee)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	id := first.Entries[0].ID

	a := billable("2024-01-08", 4)
	a.ID = &id
	b := billable("2024-01-09", 4)
	b.ID = &id
	_, err = svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{
		WeekStartDate: testWeek,
		Entries:       []dto.TimeEntryRequest{a, b},
	}, employee)
	if !errors.Is(err, ErrEntryDuplicateID) {
		t.Fatalf("expected ErrEntryDuplicateID, got %v", err)
	}

	stored, err := svc.GetByID(ctx, first.ID, employee)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(stored.Entries) != 1 || stored.Entries[0].Hours != 8 {
		t.Errorf("rejected save must leave the sheet untouched: %+v", stored.Entries)
	}
	if len(mocks.timesheets.sheets) != 1 {
		t.Errorf("expected one timesheet, got %d", len(mocks.timesheets.sheets))
	}
}

func TestTimesheetService_SubmitApproveFlow(t *testing.T) {
	svc, _ := setupTestTimesheetService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{
		WeekStartDate: testWeek,
		Entries:       []dto.TimeEntryRequest{billable("2024-01-08", 8)},
	}, employee)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	submitted, err := svc.Submit(ctx, saved.ID, employee)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != model.TimesheetSubmitted || submitted.SubmittedAt == nil {
		t.Errorf("unexpected submitted sheet %+v", submitted)
	}

	// locked once submitted
	_, err = svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{WeekStartDate: testWeek}, employee)
	if !errors.Is(err, ErrTimesheetNotModifiable) {
		t.Errorf("expected ErrTimesheetNotModifiable, got %v", err)
	}

	pending, err := svc.PendingForManager(ctx, "m1", manager)
	if err != nil || len(pending) != 1 {
		t.Fatalf("manager should see one pending sheet: %v %d", err, len(pending))
	}

	if _, err := svc.Approve(ctx, saved.ID, &dto.ApprovalRequest{Approved: boolPtr(true)}, employee); !errors.Is(err, ErrNoPermission) {
		t.Errorf("employees cannot approve, got %v", err)
	}

	approved, err := svc.Approve(ctx, saved.ID, &dto.ApprovalRequest{Approved: boolPtr(true)}, manager)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.TimesheetApproved || approved.ApprovedAt == nil {
		t.Errorf("unexpected approved sheet %+v", approved)
	}

	if _, err := svc.Approve(ctx, saved.ID, &dto.ApprovalRequest{Approved: boolPtr(true)}, manager); !errors.Is(err, ErrTimesheetNotSubmitted) {
		t.Errorf("expected ErrTimesheetNotSubmitted, got %v", err)
	}
	if err := svc.Delete(ctx, saved.ID, employee); !errors.Is(err, ErrTimesheetNotDraft) {
		t.Errorf("expected ErrTimesheetNotDraft, got %v", err)
	}
}

func TestTimesheetService_RejectNeedsComment(t *testing.T) {
	svc, _ := setupTestTimesheetService()
	ctx := context.Background()

	saved, _ := svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{
		WeekStartDate: testWeek,
		Entries:       []dto.TimeEntryRequest{billable("2024-01-08", 8)},
	}, employee)
	if _, err := svc.Submit(ctx, saved.ID, employee); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := svc.Approve(ctx, saved.ID, &dto.ApprovalRequest{Approved: boolPtr(false), Comments: "  "}, manager)
	if !errors.Is(err, ErrRejectionCommentRequired) {
		t.Errorf("expected ErrRejectionCommentRequired, got %v", err)
	}

	rejected, err := svc.Approve(ctx, saved.ID, &dto.ApprovalRequest{Approved: boolPtr(false), Comments: "Split Monday"}, manager)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.TimesheetRejected || rejected.RejectionComments != "Split Monday" {
		t.Errorf("unexpected rejected sheet %+v", rejected)
	}

	// rejected sheets can be edited and resubmitted
	if _, err := svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{
		WeekStartDate: testWeek,
		Entries:       []dto.TimeEntryRequest{billable("2024-01-08", 4), billable("2024-01-08", 4)},
	}, employee); err != nil {
		t.Fatalf("save after rejection: %v", err)
	}
	resubmitted, err := svc.Submit(ctx, saved.ID, employee)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.RejectionComments != "" {
		t.Error("resubmitting clears the rejection comment")
	}
}

func TestTimesheetService_SubmitEmpty(t *testing.T) {
	svc, _ := setupTestTimesheetService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{WeekStartDate: testWeek}, employee)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.Submit(ctx, saved.ID, employee); !errors.Is(err, ErrTimesheetEmpty) {
		t.Errorf("expected ErrTimesheetEmpty, got %v", err)
	}
	if err := svc.Delete(ctx, saved.ID, employee); err != nil {
		t.Errorf("draft delete should succeed: %v", err)
	}
}

func TestTimesheetService_Access(t *testing.T) {
	svc, _ := setupTestTimesheetService()
	ctx := context.Background()

	saved, _ := svc.Save(ctx, "e1", &dto.SaveTimesheetRequest{WeekStartDate: testWeek}, employee)

	other := Caller{UserID: "e2", Role: access.RoleEmployee}
	if _, err := svc.GetByID(ctx, saved.ID, other); !errors.Is(err, ErrTimesheetForbidden) {
		t.Errorf("expected ErrTimesheetForbidden, got %v", err)
	}
	if _, err := svc.GetByID(ctx, saved.ID, admin); err != nil {
		t.Errorf("admins may read any sheet: %v", err)
	}
	if _, _, err := svc.ListByUser(ctx, "e1", &dto.PaginationRequest{}, other); !errors.Is(err, ErrTimesheetForbidden) {
		t.Errorf("expected ErrTimesheetForbidden, got %v", err)
	}
	if _, err := svc.PendingForManager(ctx, "m1", other); !errors.Is(err, ErrNoPermission) {
		t.Errorf("expected ErrNoPermission, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "missing", admin); !errors.Is(err, ErrTimesheetNotFound) {
		t.Errorf("expected ErrTimesheetNotFound, got %v", err)
	}
}
