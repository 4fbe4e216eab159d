// Package editor drives one week-editing session: it owns a weeksheet.Sheet,
// loads it from the backend and saves it back.
package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

// ErrNoEntries rejects a save where no row has hours.
var ErrNoEntries = errors.New("Please add at least one time entry.")

// LocalValidationError is returned by Save when the sheet fails validation.
// Nothing is sent to the backend.
type LocalValidationError struct {
	Errors weeksheet.ValidationErrors
}

func (e *LocalValidationError) Error() string {
	return "timesheet is invalid: " + e.Errors.Error()
}

// Backend is the slice of the REST client the editor uses. Its errors are
// returned to the caller unchanged.
type Backend interface {
	GetTimesheet(ctx context.Context, id string) (*dto.TimesheetResponse, error)
	SaveTimesheet(ctx context.Context, userID string, sub weeksheet.Submission) (*dto.TimesheetResponse, error)
	ActiveProjects(ctx context.Context, userID string) ([]dto.ProjectResponse, error)
}

// Editor is single-threaded; one Editor serves one session's user.
type Editor struct {
	backend Backend
	userID  string
	logger  *zap.Logger

	sheet *weeksheet.Sheet
	saved *dto.TimesheetResponse
	done  bool
}

// New starts an editor on a blank sheet for the week containing now.
func New(backend Backend, userID string, now time.Time, logger *zap.Logger) *Editor {
	return &Editor{
		backend: backend,
		userID:  userID,
		logger:  logger,
		sheet:   weeksheet.New(now),
	}
}

// Sheet is the sheet being edited. Mutate it through its methods.
func (e *Editor) Sheet() *weeksheet.Sheet { return e.sheet }

// Done reports whether the last Save succeeded.
func (e *Editor) Done() bool { return e.done }

// Saved is the backend's view of the sheet after the last successful Save.
func (e *Editor) Saved() *dto.TimesheetResponse { return e.saved }

// Open replaces the sheet with the persisted week id. On any failure the
// current sheet is kept.
func (e *Editor) Open(ctx context.Context, id string) error {
	ts, err := e.backend.GetTimesheet(ctx, id)
	if err != nil {
		return err
	}
	sheet, err := weeksheet.Load(Record(ts))
	if err != nil {
		return fmt.Errorf("load timesheet %s: %w", id, err)
	}
	e.sheet = sheet
	e.done = false
	return nil
}

// Projects lists the projects the user may book time on. An empty list is a
// valid answer.
func (e *Editor) Projects(ctx context.Context) ([]dto.ProjectResponse, error) {
	projects, err := e.backend.ActiveProjects(ctx, e.userID)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []dto.ProjectResponse{}
	}
	return projects, nil
}

// Save validates, flattens and submits the sheet. Local problems come back as
// *LocalValidationError or ErrNoEntries; backend failures are returned as-is
// and leave the sheet untouched.
func (e *Editor) Save(ctx context.Context) (*dto.TimesheetResponse, error) {
	if errs := e.sheet.Validate(); len(errs) > 0 {
		return nil, &LocalValidationError{Errors: errs}
	}

	sub := e.sheet.ToSubmission()
	if sub.Empty() {
		return nil, ErrNoEntries
	}

	ts, err := e.backend.SaveTimesheet(ctx, e.userID, sub)
	if err != nil {
		e.logger.Debug("save timesheet failed", zap.String("week", sub.AnchorDate), zap.Error(err))
		return nil, err
	}

	e.sheet.ID = ts.ID
	e.saved = ts
	e.done = true
	e.logger.Debug("timesheet saved",
		zap.String("id", ts.ID),
		zap.String("week", sub.AnchorDate),
		zap.Int("entries", len(sub.Entries)),
	)
	return ts, nil
}

// Record converts a backend timesheet into the form weeksheet.Load takes.
func Record(ts *dto.TimesheetResponse) weeksheet.PersistedRecord {
	rec := weeksheet.PersistedRecord{
		ID:         ts.ID,
		AnchorDate: ts.WeekStartDate,
		Entries:    make([]weeksheet.PersistedEntry, 0, len(ts.Entries)),
	}
	for _, e := range ts.Entries {
		pe := weeksheet.PersistedEntry{
			ID:        e.ID,
			EntryDate: e.EntryDate,
			Hours:     e.Hours,
			TaskType:  weeksheet.TaskType(e.TaskType),
			Notes:     e.Notes,
		}
		if e.ProjectID != nil {
			pe.ProjectID = *e.ProjectID
		}
		rec.Entries = append(rec.Entries, pe)
	}
	return rec
}
