package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/config"
	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

// ── User errors ──

var (
	ErrEmailExists        = errors.New("Email is already in use")
	ErrManagerRequired    = errors.New("Employees must have a manager")
	ErrManagerNotFound    = errors.New("Manager not found")
	ErrUserSelfDelete     = errors.New("You cannot delete your own account")
	ErrUserSelfDeactivate = errors.New("You cannot deactivate your own account")
	ErrNoPermission       = errors.New("You are not allowed to do this")
	ErrInvalidDate        = errors.New("Dates must use YYYY-MM-DD")
)

// UserService user administration
type UserService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	DirectReports(ctx context.Context, managerID string) ([]dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	Deactivate(ctx context.Context, id, callerID string) (*dto.UserResponse, error)
	ParseImportFile(filename string, data []byte) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error)
}

type userService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── CreateUser ──────────────────────

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	email := strings.TrimSpace(req.Email)
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := access.Role(req.Role)
	managerID, err := s.resolveManager(ctx, role, req.ManagerID)
	if err != nil {
		return nil, err
	}

	hireDate, err := parseOptionalDate(req.HireDate)
	if err != nil {
		return nil, err
	}

	password := req.Password
	if password == "" {
		password = s.cfg.Auth.DefaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Email:           email,
		PasswordHash:    string(hash),
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Role:            role,
		ManagerID:       managerID,
		IsActive:        true,
		HireDate:        hireDate,
		Department:      req.Department,
		JobTitle:        req.JobTitle,
		SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.CreatedBy(callerID)},
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.User.GetByID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(created), nil
}

// resolveManager enforces that employees report to an existing manager.
func (s *userService) resolveManager(ctx context.Context, role access.Role, managerID *string) (*string, error) {
	if managerID == nil || *managerID == "" {
		if role == access.RoleEmployee {
			return nil, ErrManagerRequired
		}
		return nil, nil
	}
	if _, err := s.repo.User.GetByID(ctx, *managerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, err
	}
	id := *managerID
	return &id, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, &repository.UserListFilters{Role: req.Role}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── DirectReports ──────────────────────

func (s *userService) DirectReports(ctx context.Context, managerID string) ([]dto.UserResponse, error) {
	if _, err := s.repo.User.GetByID(ctx, managerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	users, err := s.repo.User.ListDirectReports(ctx, managerID)
	if err != nil {
		s.logger.Error("list direct reports failed", zap.String("manager_id", managerID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		existing, err := s.repo.User.GetByEmail(ctx, email)
		if err == nil && existing.UserID != id {
			return nil, ErrEmailExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = email
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		user.Role = access.Role(*req.Role)
	}
	if req.ManagerID != nil {
		if *req.ManagerID == id {
			return nil, ErrNoPermission
		}
		user.ManagerID = req.ManagerID
	}
	if user.ManagerID != nil && *user.ManagerID == "" {
		user.ManagerID = nil
	}
	managerID, err := s.resolveManager(ctx, user.Role, user.ManagerID)
	if err != nil {
		return nil, err
	}
	user.ManagerID = managerID

	if req.HireDate != nil {
		hd, err := parseOptionalDate(*req.HireDate)
		if err != nil {
			return nil, err
		}
		user.HireDate = hd
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.JobTitle != nil {
		user.JobTitle = *req.JobTitle
	}
	if req.IsActive != nil {
		if !*req.IsActive && id == callerID {
			return nil, ErrUserSelfDeactivate
		}
		user.IsActive = *req.IsActive
	}

	user.UpdatedBy = &callerID
	user.Manager = nil

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete user failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Deactivate ──────────────────────

func (s *userService) Deactivate(ctx context.Context, id, callerID string) (*dto.UserResponse, error) {
	if id == callerID {
		return nil, ErrUserSelfDeactivate
	}
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.IsActive = false
	user.UpdatedBy = &callerID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("deactivate user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// parseOptionalDate returns nil for a blank string.
func parseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := weeksheet.ParseDate(s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
