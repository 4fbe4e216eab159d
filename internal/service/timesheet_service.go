package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

// ── Timesheet errors ──

var (
	ErrTimesheetNotFound        = errors.New("Timesheet not found")
	ErrTimesheetForbidden       = errors.New("You can only access your own timesheets")
	ErrWeekStartNotSunday       = weeksheet.ErrNotAnchor
	ErrEntryOutsideWeek         = errors.New("Entry date must fall within the timesheet week")
	ErrEntryProjectRequired     = errors.New(weeksheet.MsgProjectRequired)
	ErrEntryInvalidTaskType     = errors.New("Unknown task type")
	ErrEntryInvalidHours        = errors.New("Hours must be greater than 0 and at most 24")
	ErrEntryProjectNotFound     = errors.New("Entry references an unknown project")
	ErrEntryDuplicateID         = errors.New("The same entry id appears more than once")
	ErrTimesheetNotModifiable   = errors.New("Only draft or rejected timesheets can be modified")
	ErrTimesheetEmpty           = errors.New("Cannot submit a timesheet without entries")
	ErrTimesheetNotSubmitted    = errors.New("Only submitted timesheets can be approved or rejected")
	ErrRejectionCommentRequired = errors.New("Comments are required when rejecting a timesheet")
	ErrTimesheetNotDraft        = errors.New("Only draft timesheets can be deleted")
)

// TimesheetService weekly timesheet workflow
type TimesheetService interface {
	Save(ctx context.Context, userID string, req *dto.SaveTimesheetRequest, caller Caller) (*dto.TimesheetResponse, error)
	GetByID(ctx context.Context, id string, caller Caller) (*dto.TimesheetResponse, error)
	ListByUser(ctx context.Context, userID string, page *dto.PaginationRequest, caller Caller) ([]dto.TimesheetResponse, int64, error)
	Submit(ctx context.Context, id string, caller Caller) (*dto.TimesheetResponse, error)
	Approve(ctx context.Context, id string, req *dto.ApprovalRequest, caller Caller) (*dto.TimesheetResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
	PendingForManager(ctx context.Context, managerID string, caller Caller) ([]dto.TimesheetResponse, error)
}

type timesheetService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewTimesheetService creates a TimesheetService.
func NewTimesheetService(repo *repository.Repository, logger *zap.Logger) TimesheetService {
	return &timesheetService{repo: repo, logger: logger, now: time.Now}
}

// mayAccess: owners always, approvers for anyone.
func mayAccess(caller Caller, ownerID string) bool {
	return caller.UserID == ownerID || caller.Can(access.ApproveTimesheets)
}

// ────────────────────── Save ──────────────────────

// Save creates or updates the (user, week) timesheet. The submitted entries
// replace the stored ones, so an entry left out of the request is deleted.
func (s *timesheetService) Save(ctx context.Context, userID string, req *dto.SaveTimesheetRequest, caller Caller) (*dto.TimesheetResponse, error) {
	if !mayAccess(caller, userID) {
		return nil, ErrTimesheetForbidden
	}
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	anchor, err := weeksheet.ParseDate(req.WeekStartDate)
	if err != nil || !weeksheet.IsAnchor(anchor) {
		return nil, ErrWeekStartNotSunday
	}

	entries, err := s.buildEntries(ctx, anchor, req.Entries)
	if err != nil {
		return nil, err
	}

	ts, err := s.repo.Timesheet.GetByUserAndWeek(ctx, userID, anchor)
	switch {
	case err == nil:
		if !ts.Modifiable() {
			return nil, ErrTimesheetNotModifiable
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		ts = nil
	default:
		s.logger.Error("load week timesheet failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	// entry IDs survive only when they already belong to this sheet
	known := make(map[string]bool)
	if ts != nil {
		for _, e := range ts.Entries {
			known[e.EntryID] = true
		}
	}
	for i := range entries {
		if !known[entries[i].EntryID] {
			entries[i].EntryID = ""
		}
		entries[i].CreatedBy = &caller.UserID
	}

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if ts == nil {
			ts = &model.Timesheet{
				UserID:        userID,
				WeekStartDate: anchor,
				Status:        model.TimesheetDraft,
				VersionedModel: model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{
					BaseModel: model.CreatedBy(caller.UserID),
				}},
			}
			if err := tx.Timesheet.Create(ctx, ts); err != nil {
				return err
			}
		}
		return tx.TimeEntry.ReplaceForTimesheet(ctx, ts.TimesheetID, entries)
	})
	if err != nil {
		s.logger.Error("save timesheet failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("timesheet saved",
		zap.String("timesheet_id", ts.TimesheetID),
		zap.String("week_start", req.WeekStartDate),
		zap.Int("entries", len(entries)),
	)
	return s.GetByID(ctx, ts.TimesheetID, caller)
}

// buildEntries applies the week editor rules to a request.
func (s *timesheetService) buildEntries(ctx context.Context, anchor time.Time, reqs []dto.TimeEntryRequest) ([]model.TimeEntry, error) {
	entries := make([]model.TimeEntry, 0, len(reqs))
	projectIDs := make(map[string]bool)
	perDay := make(map[string]int)
	seenIDs := make(map[string]bool)

	for i, r := range reqs {
		date, err := weeksheet.ParseDate(r.EntryDate)
		if err != nil || !weeksheet.InWeek(anchor, date) {
			return nil, fmt.Errorf("%w (entry %d)", ErrEntryOutsideWeek, i)
		}
		tt, err := weeksheet.ParseTaskType(r.TaskType)
		if err != nil {
			return nil, fmt.Errorf("%w (entry %d)", ErrEntryInvalidTaskType, i)
		}
		if r.Hours <= 0 || r.Hours > 24 {
			return nil, fmt.Errorf("%w (entry %d)", ErrEntryInvalidHours, i)
		}

		var projectID *string
		if r.ProjectID != nil && strings.TrimSpace(*r.ProjectID) != "" && !tt.ForbidsProject() {
			pid := strings.TrimSpace(*r.ProjectID)
			projectID = &pid
			projectIDs[pid] = true
		}
		if tt.RequiresProject() && projectID == nil {
			return nil, fmt.Errorf("%w (entry %d)", ErrEntryProjectRequired, i)
		}

		e := model.TimeEntry{
			ProjectID: projectID,
			EntryDate: date,
			Hours:     r.Hours,
			TaskType:  string(tt),
			Notes:     r.Notes,
			Position:  perDay[r.EntryDate],
		}
		if r.ID != nil && *r.ID != "" {
			if seenIDs[*r.ID] {
				return nil, fmt.Errorf("%w (entry %d)", ErrEntryDuplicateID, i)
			}
			seenIDs[*r.ID] = true
			e.EntryID = *r.ID
		}
		perDay[r.EntryDate]++
		entries = append(entries, e)
	}

	if len(projectIDs) > 0 {
		ids := make([]string, 0, len(projectIDs))
		for id := range projectIDs {
			ids = append(ids, id)
		}
		n, err := s.repo.Project.CountByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		if n != int64(len(ids)) {
			return nil, ErrEntryProjectNotFound
		}
	}
	return entries, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *timesheetService) load(ctx context.Context, id string, caller Caller) (*model.Timesheet, error) {
	ts, err := s.repo.Timesheet.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		s.logger.Error("load timesheet failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !mayAccess(caller, ts.UserID) {
		return nil, ErrTimesheetForbidden
	}
	return ts, nil
}

func (s *timesheetService) GetByID(ctx context.Context, id string, caller Caller) (*dto.TimesheetResponse, error) {
	ts, err := s.load(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	return toTimesheetResponse(ts), nil
}

// ────────────────────── ListByUser ──────────────────────

func (s *timesheetService) ListByUser(ctx context.Context, userID string, page *dto.PaginationRequest, caller Caller) ([]dto.TimesheetResponse, int64, error) {
	if !mayAccess(caller, userID) {
		return nil, 0, ErrTimesheetForbidden
	}
	list, total, err := s.repo.Timesheet.ListByUser(ctx, userID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("list timesheets failed", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.TimesheetResponse, 0, len(list))
	for i := range list {
		result = append(result, *toTimesheetResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Submit ──────────────────────

func (s *timesheetService) Submit(ctx context.Context, id string, caller Caller) (*dto.TimesheetResponse, error) {
	ts, err := s.load(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if !ts.Modifiable() {
		return nil, ErrTimesheetNotModifiable
	}
	if len(ts.Entries) == 0 {
		return nil, ErrTimesheetEmpty
	}
	for i, e := range ts.Entries {
		if weeksheet.TaskType(e.TaskType).RequiresProject() && e.ProjectID == nil {
			return nil, fmt.Errorf("%w (entry %d)", ErrEntryProjectRequired, i)
		}
	}

	now := s.now()
	ts.Status = model.TimesheetSubmitted
	ts.SubmittedAt = &now
	ts.RejectionComments = ""
	ts.UpdatedBy = &caller.UserID

	if err := s.repo.Timesheet.Update(ctx, ts); err != nil {
		s.logger.Error("submit timesheet failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("timesheet submitted", zap.String("timesheet_id", id))
	return toTimesheetResponse(ts), nil
}

// ────────────────────── Approve ──────────────────────

func (s *timesheetService) Approve(ctx context.Context, id string, req *dto.ApprovalRequest, caller Caller) (*dto.TimesheetResponse, error) {
	if !caller.Can(access.ApproveTimesheets) {
		return nil, ErrNoPermission
	}
	ts, err := s.load(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if ts.Status != model.TimesheetSubmitted {
		return nil, ErrTimesheetNotSubmitted
	}

	approved := req.Approved != nil && *req.Approved
	comments := strings.TrimSpace(req.Comments)
	if approved {
		now := s.now()
		ts.Status = model.TimesheetApproved
		ts.ApprovedAt = &now
		ts.ApprovedBy = &caller.UserID
		ts.RejectionComments = ""
	} else {
		if comments == "" {
			return nil, ErrRejectionCommentRequired
		}
		ts.Status = model.TimesheetRejected
		ts.RejectionComments = comments
	}
	ts.UpdatedBy = &caller.UserID

	if err := s.repo.Timesheet.Update(ctx, ts); err != nil {
		s.logger.Error("approve timesheet failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("timesheet reviewed", zap.String("timesheet_id", id), zap.String("status", ts.Status))
	return toTimesheetResponse(ts), nil
}

// ────────────────────── Delete ──────────────────────

func (s *timesheetService) Delete(ctx context.Context, id string, caller Caller) error {
	ts, err := s.load(ctx, id, caller)
	if err != nil {
		return err
	}
	if ts.Status != model.TimesheetDraft {
		return ErrTimesheetNotDraft
	}
	if err := s.repo.Timesheet.Delete(ctx, id, caller.UserID); err != nil {
		s.logger.Error("delete timesheet failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── PendingForManager ──────────────────────

func (s *timesheetService) PendingForManager(ctx context.Context, managerID string, caller Caller) ([]dto.TimesheetResponse, error) {
	if caller.UserID != managerID && !caller.Can(access.ManageUsers) {
		return nil, ErrNoPermission
	}
	list, err := s.repo.Timesheet.ListPendingForManager(ctx, managerID)
	if err != nil {
		s.logger.Error("list pending timesheets failed", zap.String("manager_id", managerID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.TimesheetResponse, 0, len(list))
	for i := range list {
		result = append(result, *toTimesheetResponse(&list[i]))
	}
	return result, nil
}
