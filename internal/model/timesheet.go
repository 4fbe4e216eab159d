package model

import "time"

// Timesheet statuses
const (
	TimesheetDraft     = "DRAFT"
	TimesheetSubmitted = "SUBMITTED"
	TimesheetApproved  = "APPROVED"
	TimesheetRejected  = "REJECTED"
)

// Timesheet maps to timesheets; one per (user, week start).
type Timesheet struct {
	TimesheetID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"timesheet_id"`
	UserID            string     `gorm:"type:uuid;not null;uniqueIndex:uq_timesheet_week" json:"user_id"`
	WeekStartDate     time.Time  `gorm:"type:date;not null;uniqueIndex:uq_timesheet_week" json:"week_start_date"`
	Status            string     `gorm:"type:varchar(20);not null;default:'DRAFT'"      json:"status"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	ApprovedBy        *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	RejectionComments string     `gorm:"type:text"                                      json:"rejection_comments"`
	VersionedModel

	User    *User       `gorm:"foreignKey:UserID;references:UserID"           json:"user,omitempty"`
	Entries []TimeEntry `gorm:"foreignKey:TimesheetID;references:TimesheetID" json:"entries,omitempty"`
}

func (Timesheet) TableName() string { return "timesheets" }

// Modifiable reports whether entries may still change.
func (t *Timesheet) Modifiable() bool {
	return t.Status == TimesheetDraft || t.Status == TimesheetRejected
}

// TotalHours sums every entry.
func (t *Timesheet) TotalHours() float64 {
	var sum float64
	for _, e := range t.Entries {
		sum += e.Hours
	}
	return sum
}

// TimeEntry maps to time_entries.
type TimeEntry struct {
	EntryID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	TimesheetID string    `gorm:"type:uuid;not null;index"                       json:"timesheet_id"`
	ProjectID   *string   `gorm:"type:uuid;index"                                json:"project_id,omitempty"`
	EntryDate   time.Time `gorm:"type:date;not null"                             json:"entry_date"`
	Hours       float64   `gorm:"type:numeric(5,2);not null"                     json:"hours"`
	TaskType    string    `gorm:"type:varchar(20);not null"                      json:"task_type"`
	Notes       string    `gorm:"type:text"                                      json:"notes"`
	Position    int       `gorm:"not null;default:0"                             json:"position"`
	BaseModel

	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
}

func (TimeEntry) TableName() string { return "time_entries" }
