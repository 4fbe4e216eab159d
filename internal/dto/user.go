package dto

// UserResponse user without credentials
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	FullName    string  `json:"full_name"`
	Role        string  `json:"role"`
	ManagerID   *string `json:"manager_id,omitempty"`
	ManagerName string  `json:"manager_name,omitempty"`
	IsActive    bool    `json:"is_active"`
	HireDate    string  `json:"hire_date,omitempty"`
	Department  string  `json:"department,omitempty"`
	JobTitle    string  `json:"job_title,omitempty"`
}

// UserListRequest GET /users
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=ROLE_ADMIN ROLE_MANAGER ROLE_EMPLOYEE"`
}

// CreateUserRequest POST /users. A blank password gets the configured default.
type CreateUserRequest struct {
	Email      string  `json:"email"      binding:"required,email"`
	Password   string  `json:"password"   binding:"omitempty,min=6,max=72"`
	FirstName  string  `json:"first_name" binding:"required,max=100"`
	LastName   string  `json:"last_name"  binding:"required,max=100"`
	Role       string  `json:"role"       binding:"required,oneof=ROLE_ADMIN ROLE_MANAGER ROLE_EMPLOYEE"`
	ManagerID  *string `json:"manager_id" binding:"omitempty,uuid"`
	HireDate   string  `json:"hire_date"  binding:"omitempty,datetime=2006-01-02"`
	Department string  `json:"department" binding:"omitempty,max=100"`
	JobTitle   string  `json:"job_title"  binding:"omitempty,max=100"`
}

// UpdateUserRequest PUT /users/:id; nil fields are left unchanged.
type UpdateUserRequest struct {
	Email      *string `json:"email"      binding:"omitempty,email"`
	Password   *string `json:"password"   binding:"omitempty,min=6,max=72"`
	FirstName  *string `json:"first_name" binding:"omitempty,max=100"`
	LastName   *string `json:"last_name"  binding:"omitempty,max=100"`
	Role       *string `json:"role"       binding:"omitempty,oneof=ROLE_ADMIN ROLE_MANAGER ROLE_EMPLOYEE"`
	ManagerID  *string `json:"manager_id" binding:"omitempty,uuid"`
	HireDate   *string `json:"hire_date"  binding:"omitempty,datetime=2006-01-02"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	JobTitle   *string `json:"job_title"  binding:"omitempty,max=100"`
	IsActive   *bool   `json:"is_active"`
}

// ImportUserResponse POST /users/import
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}

// ImportUserError one rejected row
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
