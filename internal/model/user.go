package model

import (
	"strings"
	"time"

	"github.com/smaraba1/payroll-processing/internal/access"
)

// User maps to users.
type User struct {
	UserID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email        string      `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string      `gorm:"type:varchar(255);not null"                     json:"-"`
	FirstName    string      `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName     string      `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Role         access.Role `gorm:"type:varchar(20);not null"                      json:"role"`
	ManagerID    *string     `gorm:"type:uuid;index"                                json:"manager_id,omitempty"`
	IsActive     bool        `gorm:"not null;default:true"                          json:"is_active"`
	HireDate     *time.Time  `gorm:"type:date"                                      json:"hire_date,omitempty"`
	Department   string      `gorm:"type:varchar(100)"                              json:"department"`
	JobTitle     string      `gorm:"type:varchar(100)"                              json:"job_title"`
	SoftDeleteModel

	Manager *User `gorm:"foreignKey:ManagerID;references:UserID" json:"manager,omitempty"`
}

func (User) TableName() string { return "users" }

// FullName returns "First Last", trimmed when either part is blank.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
