package dto

import "github.com/shopspring/decimal"

// ProjectResponse project with its client and assigned employees
type ProjectResponse struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	ClientID            string          `json:"client_id"`
	ClientName          string          `json:"client_name,omitempty"`
	DefaultBillableRate decimal.Decimal `json:"default_billable_rate"`
	Status              string          `json:"status"`
	EmployeeIDs         []string        `json:"employee_ids"`
}

// CreateProjectRequest POST /projects
type CreateProjectRequest struct {
	Name                string          `json:"name"                  binding:"required,max=200"`
	ClientID            string          `json:"client_id"             binding:"required,uuid"`
	DefaultBillableRate decimal.Decimal `json:"default_billable_rate"`
	Status              string          `json:"status"                binding:"omitempty,oneof=ACTIVE ON_HOLD COMPLETED"`
	EmployeeIDs         []string        `json:"employee_ids"          binding:"omitempty,dive,uuid"`
}

// UpdateProjectRequest PUT /projects/:id. A non-nil EmployeeIDs replaces the
// assignment set.
type UpdateProjectRequest struct {
	Name                *string          `json:"name"                  binding:"omitempty,min=1,max=200"`
	ClientID            *string          `json:"client_id"             binding:"omitempty,uuid"`
	DefaultBillableRate *decimal.Decimal `json:"default_billable_rate"`
	Status              *string          `json:"status"                binding:"omitempty,oneof=ACTIVE ON_HOLD COMPLETED"`
	EmployeeIDs         *[]string        `json:"employee_ids"`
}

// AssignmentRequest POST /projects/assignments and DELETE query
type AssignmentRequest struct {
	UserID    string `json:"user_id"    form:"user_id"    binding:"required,uuid"`
	ProjectID string `json:"project_id" form:"project_id" binding:"required,uuid"`
}
