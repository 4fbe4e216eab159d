package model

import "github.com/shopspring/decimal"

// Project statuses
const (
	ProjectActive    = "ACTIVE"
	ProjectOnHold    = "ON_HOLD"
	ProjectCompleted = "COMPLETED"
)

// Project maps to projects.
type Project struct {
	ProjectID           string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	Name                string          `gorm:"type:varchar(200);not null"                     json:"name"`
	ClientID            string          `gorm:"type:uuid;not null;index"                       json:"client_id"`
	DefaultBillableRate decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"          json:"default_billable_rate"`
	Status              string          `gorm:"type:varchar(20);not null;default:'ACTIVE'"     json:"status"`
	SoftDeleteModel

	Client      *Client             `gorm:"foreignKey:ClientID;references:ClientID"   json:"client,omitempty"`
	Assignments []ProjectAssignment `gorm:"foreignKey:ProjectID;references:ProjectID" json:"assignments,omitempty"`
}

func (Project) TableName() string { return "projects" }

// ProjectAssignment maps to project_assignments; (user, project) is unique.
type ProjectAssignment struct {
	AssignmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"assignment_id"`
	UserID       string `gorm:"type:uuid;not null;uniqueIndex:uq_assignment"     json:"user_id"`
	ProjectID    string `gorm:"type:uuid;not null;uniqueIndex:uq_assignment"     json:"project_id"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (ProjectAssignment) TableName() string { return "project_assignments" }
