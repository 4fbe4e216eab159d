package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/model"
	pkgerrors "github.com/smaraba1/payroll-processing/pkg/errors"
)

// TimesheetRepository weekly timesheet data access
type TimesheetRepository interface {
	Create(ctx context.Context, ts *model.Timesheet) error
	GetByID(ctx context.Context, id string) (*model.Timesheet, error)
	GetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*model.Timesheet, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Timesheet, int64, error)
	ListPendingForManager(ctx context.Context, managerID string) ([]model.Timesheet, error)
	Update(ctx context.Context, ts *model.Timesheet) error
	Delete(ctx context.Context, id, deletedBy string) error
}

// BillableHours approved billable hours of one employee on one project.
type BillableHours struct {
	ProjectID string
	UserID    string
	Hours     decimal.Decimal
}

// TimeEntryRepository time entry data access
type TimeEntryRepository interface {
	ReplaceForTimesheet(ctx context.Context, timesheetID string, entries []model.TimeEntry) error
	SumApprovedBillable(ctx context.Context, projectIDs []string, start, end time.Time) ([]BillableHours, error)
}

// ── Timesheet ──

type timesheetRepo struct {
	db *gorm.DB
}

// NewTimesheetRepo creates a TimesheetRepository.
func NewTimesheetRepo(db *gorm.DB) TimesheetRepository {
	return &timesheetRepo{db: db}
}

func (r *timesheetRepo) Create(ctx context.Context, ts *model.Timesheet) error {
	return r.db.WithContext(ctx).Omit("User", "Entries").Create(ts).Error
}

func (r *timesheetRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("entry_date, position")
		}).
		Preload("Entries.Project").
		Preload("Entries.Project.Client")
}

func (r *timesheetRepo) GetByID(ctx context.Context, id string) (*model.Timesheet, error) {
	var ts model.Timesheet
	if err := r.preloaded(ctx).Where("timesheet_id = ?", id).First(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *timesheetRepo) GetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*model.Timesheet, error) {
	var ts model.Timesheet
	err := r.preloaded(ctx).
		Where("user_id = ? AND week_start_date = ?", userID, weekStart).
		First(&ts).Error
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *timesheetRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Timesheet, int64, error) {
	var list []model.Timesheet
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Timesheet{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.preloaded(ctx).
		Where("user_id = ?", userID).
		Offset(offset).Limit(limit).
		Order("week_start_date DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *timesheetRepo) ListPendingForManager(ctx context.Context, managerID string) ([]model.Timesheet, error) {
	var list []model.Timesheet
	err := r.preloaded(ctx).
		Joins("JOIN users u ON u.user_id = timesheets.user_id").
		Where("u.manager_id = ? AND timesheets.status = ?", managerID, model.TimesheetSubmitted).
		Order("timesheets.week_start_date").
		Find(&list).Error
	return list, err
}

// Update writes the workflow columns if the row still carries ts.Version.
func (r *timesheetRepo) Update(ctx context.Context, ts *model.Timesheet) error {
	oldVersion := ts.Version
	result := r.db.WithContext(ctx).
		Model(&model.Timesheet{}).
		Where("timesheet_id = ? AND version = ?", ts.TimesheetID, oldVersion).
		Updates(map[string]interface{}{
			"status":             ts.Status,
			"submitted_at":       ts.SubmittedAt,
			"approved_at":        ts.ApprovedAt,
			"approved_by":        ts.ApprovedBy,
			"rejection_comments": ts.RejectionComments,
			"updated_by":         ts.UpdatedBy,
			"updated_at":         time.Now(),
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	ts.Version = oldVersion + 1
	return nil
}

func (r *timesheetRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timesheet_id = ?", id).Delete(&model.TimeEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Timesheet{}).
			Where("timesheet_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("timesheet_id = ?", id).Delete(&model.Timesheet{}).Error
	})
}

// ── TimeEntry ──

type timeEntryRepo struct {
	db *gorm.DB
}

// NewTimeEntryRepo creates a TimeEntryRepository.
func NewTimeEntryRepo(db *gorm.DB) TimeEntryRepository {
	return &timeEntryRepo{db: db}
}

// ReplaceForTimesheet deletes the sheet's entries and inserts entries. Entry IDs
// that were already persisted are kept.
func (r *timeEntryRepo) ReplaceForTimesheet(ctx context.Context, timesheetID string, entries []model.TimeEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timesheet_id = ?", timesheetID).Delete(&model.TimeEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].TimesheetID = timesheetID
		}
		return tx.Omit("Project").Create(&entries).Error
	})
}

func (r *timeEntryRepo) SumApprovedBillable(ctx context.Context, projectIDs []string, start, end time.Time) ([]BillableHours, error) {
	var rows []BillableHours
	if len(projectIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Table("time_entries te").
		Select("te.project_id AS project_id, t.user_id AS user_id, SUM(te.hours) AS hours").
		Joins("JOIN timesheets t ON t.timesheet_id = te.timesheet_id AND t.deleted_at IS NULL").
		Where("t.status = ?", model.TimesheetApproved).
		Where("te.task_type = ?", "BILLABLE").
		Where("te.project_id IN ?", projectIDs).
		Where("te.entry_date BETWEEN ? AND ?", start, end).
		Group("te.project_id, t.user_id").
		Order("te.project_id, t.user_id").
		Scan(&rows).Error
	return rows, err
}
