//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
	pkgerrors "github.com/smaraba1/payroll-processing/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=payroll password=payroll dbname=payroll_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot connect to test database: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Project{},
		&model.ProjectAssignment{},
		&model.Timesheet{},
		&model.TimeEntry{},
		&model.Invoice{},
		&model.InvoiceLineItem{},
		&model.Payment{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

type fixture struct {
	manager  *model.User
	employee *model.User
	client   *model.Client
	project  *model.Project
}

var monday = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
var anchor = time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

// setupTestData creates a manager, an employee reporting to them, and one
// client with one project. The returned func removes everything.
func setupTestData(t *testing.T) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	n := time.Now().UnixNano()

	f := &fixture{}
	f.manager = &model.User{
		Email: fmt.Sprintf("mgr%d@example.com", n), PasswordHash: "$2a$10$placeholder",
		FirstName: "Mia", LastName: "Manager", Role: access.RoleManager, IsActive: true,
	}
	if err := testDB.WithContext(ctx).Create(f.manager).Error; err != nil {
		t.Fatalf("create manager: %v", err)
	}
	f.employee = &model.User{
		Email: fmt.Sprintf("emp%d@example.com", n), PasswordHash: "$2a$10$placeholder",
		FirstName: "Eli", LastName: "Employee", Role: access.RoleEmployee, IsActive: true,
		ManagerID: &f.manager.UserID,
	}
	if err := testDB.WithContext(ctx).Create(f.employee).Error; err != nil {
		t.Fatalf("create employee: %v", err)
	}
	f.client = &model.Client{Name: fmt.Sprintf("Acme %d", n)}
	if err := testDB.WithContext(ctx).Create(f.client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	f.project = &model.Project{
		Name: "Apollo", ClientID: f.client.ClientID,
		DefaultBillableRate: decimal.NewFromInt(100), Status: model.ProjectActive,
	}
	if err := testDB.WithContext(ctx).Omit("Client").Create(f.project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}

	cleanup := func() {
		testDB.Exec("DELETE FROM time_entries WHERE timesheet_id IN (SELECT timesheet_id FROM timesheets WHERE user_id = ?)", f.employee.UserID)
		testDB.Unscoped().Where("user_id = ?", f.employee.UserID).Delete(&model.Timesheet{})
		testDB.Unscoped().Where("project_id = ?", f.project.ProjectID).Delete(&model.Project{})
		testDB.Unscoped().Where("client_id = ?", f.client.ClientID).Delete(&model.Client{})
		testDB.Unscoped().Where("user_id IN ?", []string{f.employee.UserID, f.manager.UserID}).Delete(&model.User{})
	}
	return f, cleanup
}

func newTimesheet(t *testing.T, repo *repository.Repository, userID, status string) *model.Timesheet {
	t.Helper()
	ts := &model.Timesheet{UserID: userID, WeekStartDate: anchor, Status: status}
	if err := repo.Timesheet.Create(context.Background(), ts); err != nil {
		t.Fatalf("create timesheet: %v", err)
	}
	return ts
}

// ═══════════════════════════════════════════════════════════
// Test: Transactions
// ═══════════════════════════════════════════════════════════

func TestRunInTx_RollbackOnError(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	boom := errors.New("boom")

	var created string
	err := repo.RunInTx(ctx, func(tx *repository.Repository) error {
		ts := &model.Timesheet{UserID: f.employee.UserID, WeekStartDate: anchor, Status: model.TimesheetDraft}
		if err := tx.Timesheet.Create(ctx, ts); err != nil {
			return err
		}
		created = ts.TimesheetID
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := repo.Timesheet.GetByID(ctx, created); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected rolled-back timesheet to be absent, got %v", err)
	}
}

func TestRunInTx_Commit(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	var created string
	err := repo.RunInTx(ctx, func(tx *repository.Repository) error {
		ts := &model.Timesheet{UserID: f.employee.UserID, WeekStartDate: anchor, Status: model.TimesheetDraft}
		if err := tx.Timesheet.Create(ctx, ts); err != nil {
			return err
		}
		created = ts.TimesheetID
		return tx.TimeEntry.ReplaceForTimesheet(ctx, ts.TimesheetID, []model.TimeEntry{
			{EntryDate: monday, Hours: 8, TaskType: "NON_BILLABLE"},
		})
	})
	if err != nil {
		t.Fatalf("RunInTx: %v", err)
	}

	found, err := repo.Timesheet.GetByID(ctx, created)
	if err != nil {
		t.Fatalf("load committed timesheet: %v", err)
	}
	if len(found.Entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(found.Entries))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Timesheet_ConflictDetected(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	ts := newTimesheet(t, repo, f.employee.UserID, model.TimesheetDraft)

	copy1, _ := repo.Timesheet.GetByID(ctx, ts.TimesheetID)
	copy2, _ := repo.Timesheet.GetByID(ctx, ts.TimesheetID)

	now := time.Now()
	copy1.Status = model.TimesheetSubmitted
	copy1.SubmittedAt = &now
	if err := repo.Timesheet.Update(ctx, copy1); err != nil {
		t.Fatalf("first update should succeed: %v", err)
	}

	copy2.Status = model.TimesheetApproved
	if err := repo.Timesheet.Update(ctx, copy2); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("expected ErrOptimisticLock, got %v", err)
	}
}

func TestOptimisticLock_VersionIncrement(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	ts := newTimesheet(t, repo, f.employee.UserID, model.TimesheetDraft)

	if ts.Version != 1 {
		t.Errorf("initial version should be 1, got %d", ts.Version)
	}
	for i := 0; i < 3; i++ {
		got, _ := repo.Timesheet.GetByID(ctx, ts.TimesheetID)
		if err := repo.Timesheet.Update(ctx, got); err != nil {
			t.Fatalf("update %d failed: %v", i+1, err)
		}
	}
	final, _ := repo.Timesheet.GetByID(ctx, ts.TimesheetID)
	if final.Version != 4 {
		t.Errorf("expected version 4, got %d", final.Version)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Constraints and entry replacement
// ═══════════════════════════════════════════════════════════

func TestUniqueTimesheetPerWeek(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	newTimesheet(t, repo, f.employee.UserID, model.TimesheetDraft)

	dup := &model.Timesheet{UserID: f.employee.UserID, WeekStartDate: anchor, Status: model.TimesheetDraft}
	err := repo.Timesheet.Create(context.Background(), dup)
	if !errors.Is(err, pkgerrors.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for a second sheet in the same week, got %v", err)
	}
}

func TestReplaceForTimesheet_OmittedEntriesAreDeleted(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	ts := newTimesheet(t, repo, f.employee.UserID, model.TimesheetDraft)

	first := []model.TimeEntry{
		{EntryDate: monday, Hours: 4, TaskType: "BILLABLE", ProjectID: &f.project.ProjectID, Position: 0},
		{EntryDate: monday, Hours: 2, TaskType: "NON_BILLABLE", Position: 1},
	}
	if err := repo.TimeEntry.ReplaceForTimesheet(ctx, ts.TimesheetID, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	keep := first[0].EntryID

	second := []model.TimeEntry{
		{EntryID: keep, EntryDate: monday, Hours: 6, TaskType: "BILLABLE", ProjectID: &f.project.ProjectID},
	}
	if err := repo.TimeEntry.ReplaceForTimesheet(ctx, ts.TimesheetID, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := repo.Timesheet.GetByID(ctx, ts.TimesheetID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got.Entries) != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", len(got.Entries))
	}
	if got.Entries[0].EntryID != keep || got.Entries[0].Hours != 6 {
		t.Errorf("expected entry %s with 6h, got %s with %v", keep, got.Entries[0].EntryID, got.Entries[0].Hours)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Queries
// ═══════════════════════════════════════════════════════════

func TestSumApprovedBillable(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	ts := newTimesheet(t, repo, f.employee.UserID, model.TimesheetDraft)

	entries := []model.TimeEntry{
		{EntryDate: monday, Hours: 5, TaskType: "BILLABLE", ProjectID: &f.project.ProjectID},
		{EntryDate: monday.AddDate(0, 0, 1), Hours: 3.5, TaskType: "BILLABLE", ProjectID: &f.project.ProjectID},
		{EntryDate: monday, Hours: 2, TaskType: "NON_BILLABLE", ProjectID: &f.project.ProjectID},
	}
	if err := repo.TimeEntry.ReplaceForTimesheet(ctx, ts.TimesheetID, entries); err != nil {
		t.Fatalf("replace: %v", err)
	}
	ids := []string{f.project.ProjectID}
	end := anchor.AddDate(0, 0, 6)

	sums, err := repo.TimeEntry.SumApprovedBillable(ctx, ids, anchor, end)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if len(sums) != 0 {
		t.Fatalf("draft hours must not be billed, got %+v", sums)
	}

	ts.Status = model.TimesheetApproved
	if err := repo.Timesheet.Update(ctx, ts); err != nil {
		t.Fatalf("approve: %v", err)
	}
	sums, err = repo.TimeEntry.SumApprovedBillable(ctx, ids, anchor, end)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if len(sums) != 1 {
		t.Fatalf("expected one (project, user) group, got %d", len(sums))
	}
	if !sums[0].Hours.Equal(decimal.RequireFromString("8.5")) {
		t.Errorf("expected 8.5 billable hours, got %s", sums[0].Hours)
	}
	if sums[0].UserID != f.employee.UserID {
		t.Errorf("expected user %s, got %s", f.employee.UserID, sums[0].UserID)
	}
}

func TestListPendingForManager(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	newTimesheet(t, repo, f.employee.UserID, model.TimesheetSubmitted)

	pending, err := repo.Timesheet.ListPendingForManager(ctx, f.manager.UserID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].UserID != f.employee.UserID {
		t.Fatalf("expected the employee's submitted sheet, got %+v", pending)
	}

	other, err := repo.Timesheet.ListPendingForManager(ctx, f.employee.UserID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("employee manages nobody, got %d sheets", len(other))
	}
}
