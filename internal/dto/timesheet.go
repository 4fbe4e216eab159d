package dto

import "time"

// TimeEntryRequest one line of a saved week. ID is set for rows that already
// exist on the server.
type TimeEntryRequest struct {
	ID        *string `json:"id,omitempty"         binding:"omitempty,uuid"`
	ProjectID *string `json:"project_id,omitempty" binding:"omitempty,uuid"`
	EntryDate string  `json:"entry_date"           binding:"required,datetime=2006-01-02"`
	Hours     float64 `json:"hours"                binding:"gt=0,lte=24"`
	TaskType  string  `json:"task_type"            binding:"required,oneof=BILLABLE NON_BILLABLE PTO SICK_LEAVE"`
	Notes     string  `json:"notes"                binding:"max=2000"`
}

// SaveTimesheetRequest POST /timesheets/user/:userId
type SaveTimesheetRequest struct {
	WeekStartDate string             `json:"week_start_date" binding:"required,datetime=2006-01-02"`
	Entries       []TimeEntryRequest `json:"entries"         binding:"dive"`
}

// ApprovalRequest POST /timesheets/:id/approval
type ApprovalRequest struct {
	Approved *bool  `json:"approved" binding:"required"`
	Comments string `json:"comments" binding:"max=2000"`
}

// TimeEntryResponse one stored entry
type TimeEntryResponse struct {
	ID          string  `json:"id"`
	ProjectID   *string `json:"project_id,omitempty"`
	ProjectName string  `json:"project_name,omitempty"`
	ClientName  string  `json:"client_name,omitempty"`
	EntryDate   string  `json:"entry_date"`
	Hours       float64 `json:"hours"`
	TaskType    string  `json:"task_type"`
	Notes       string  `json:"notes"`
}

// TimesheetResponse a week with its entries
type TimesheetResponse struct {
	ID                string              `json:"id"`
	UserID            string              `json:"user_id"`
	UserName          string              `json:"user_name,omitempty"`
	WeekStartDate     string              `json:"week_start_date"`
	Status            string              `json:"status"`
	SubmittedAt       *time.Time          `json:"submitted_at,omitempty"`
	ApprovedAt        *time.Time          `json:"approved_at,omitempty"`
	RejectionComments string              `json:"rejection_comments,omitempty"`
	Version           int                 `json:"version"`
	TotalHours        float64             `json:"total_hours"`
	Entries           []TimeEntryResponse `json:"entries"`
}
