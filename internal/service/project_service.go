package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
)

// ── Project errors ──

var (
	ErrProjectNotFound    = errors.New("Project not found")
	ErrNegativeRate       = errors.New("Billable rate must not be negative")
	ErrAssignmentExists   = errors.New("User is already assigned to this project")
	ErrAssignmentNotFound = errors.New("Assignment not found")
	ErrAssigneeNotFound   = errors.New("Assigned employee not found")
)

// ProjectService projects and their assignments
type ProjectService interface {
	Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.ProjectResponse, int64, error)
	ListByClient(ctx context.Context, clientID string) ([]dto.ProjectResponse, error)
	ActiveForUser(ctx context.Context, userID string) ([]dto.ProjectResponse, error)
	Assign(ctx context.Context, req *dto.AssignmentRequest, callerID string) error
	Unassign(ctx context.Context, req *dto.AssignmentRequest) error
}

type projectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProjectService creates a ProjectService.
func NewProjectService(repo *repository.Repository, logger *zap.Logger) ProjectService {
	return &projectService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *projectService) Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	if req.DefaultBillableRate.IsNegative() {
		return nil, ErrNegativeRate
	}
	if err := s.ensureClient(ctx, req.ClientID); err != nil {
		return nil, err
	}
	if err := s.ensureUsers(ctx, req.EmployeeIDs); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.ProjectActive
	}
	project := &model.Project{
		Name:                strings.TrimSpace(req.Name),
		ClientID:            req.ClientID,
		DefaultBillableRate: req.DefaultBillableRate,
		Status:              status,
		SoftDeleteModel:     model.SoftDeleteModel{BaseModel: model.CreatedBy(callerID)},
	}

	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Project.Create(ctx, project); err != nil {
			return err
		}
		return syncAssignments(ctx, tx, project.ProjectID, req.EmployeeIDs, callerID)
	})
	if err != nil {
		s.logger.Error("create project failed", zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, project.ProjectID)
}

// ────────────────────── GetByID ──────────────────────

func (s *projectService) get(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("load project failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return project, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// ────────────────────── Update ──────────────────────

func (s *projectService) Update(ctx context.Context, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.ClientID != nil && *req.ClientID != project.ClientID {
		if err := s.ensureClient(ctx, *req.ClientID); err != nil {
			return nil, err
		}
		project.ClientID = *req.ClientID
		project.Client = nil
	}
	if req.DefaultBillableRate != nil {
		if req.DefaultBillableRate.IsNegative() {
			return nil, ErrNegativeRate
		}
		project.DefaultBillableRate = *req.DefaultBillableRate
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.EmployeeIDs != nil {
		if err := s.ensureUsers(ctx, *req.EmployeeIDs); err != nil {
			return nil, err
		}
	}
	project.UpdatedBy = &callerID

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Project.Update(ctx, project); err != nil {
			return err
		}
		if req.EmployeeIDs == nil {
			return nil
		}
		return syncAssignments(ctx, tx, project.ProjectID, *req.EmployeeIDs, callerID)
	})
	if err != nil {
		s.logger.Error("update project failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// syncAssignments makes the project's assignment set equal to userIDs.
func syncAssignments(ctx context.Context, repo *repository.Repository, projectID string, userIDs []string, callerID string) error {
	current, err := repo.Assignment.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}

	want := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	have := make(map[string]bool, len(current))
	for _, a := range current {
		have[a.UserID] = true
		if !want[a.UserID] {
			if err := repo.Assignment.Delete(ctx, a.UserID, projectID); err != nil {
				return err
			}
		}
	}
	for _, id := range userIDs {
		if have[id] {
			continue
		}
		have[id] = true
		a := &model.ProjectAssignment{
			UserID:    id,
			ProjectID: projectID,
			BaseModel: model.CreatedBy(callerID),
		}
		if err := repo.Assignment.Create(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *projectService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Project.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete project failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Lists ──────────────────────

func (s *projectService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.ProjectResponse, int64, error) {
	projects, total, err := s.repo.Project.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list projects failed", zap.Error(err))
		return nil, 0, err
	}
	return toProjectResponses(projects), total, nil
}

func (s *projectService) ListByClient(ctx context.Context, clientID string) ([]dto.ProjectResponse, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	projects, err := s.repo.Project.ListByClient(ctx, clientID)
	if err != nil {
		s.logger.Error("list client projects failed", zap.String("client_id", clientID), zap.Error(err))
		return nil, err
	}
	return toProjectResponses(projects), nil
}

// ActiveForUser returns the projects a user may log time against: every active
// project for roles that see all projects, otherwise only assigned ones.
func (s *projectService) ActiveForUser(ctx context.Context, userID string) ([]dto.ProjectResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var projects []model.Project
	if user.Role.Can(access.ViewAllProjects) {
		projects, err = s.repo.Project.ListActive(ctx)
	} else {
		projects, err = s.repo.Project.ListActiveForUser(ctx, userID)
	}
	if err != nil {
		s.logger.Error("list active projects failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toProjectResponses(projects), nil
}

// ────────────────────── Assignments ──────────────────────

func (s *projectService) Assign(ctx context.Context, req *dto.AssignmentRequest, callerID string) error {
	if _, err := s.get(ctx, req.ProjectID); err != nil {
		return err
	}
	if err := s.ensureUsers(ctx, []string{req.UserID}); err != nil {
		return err
	}
	exists, err := s.repo.Assignment.Exists(ctx, req.UserID, req.ProjectID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAssignmentExists
	}
	a := &model.ProjectAssignment{
		UserID:    req.UserID,
		ProjectID: req.ProjectID,
		BaseModel: model.CreatedBy(callerID),
	}
	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("create assignment failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *projectService) Unassign(ctx context.Context, req *dto.AssignmentRequest) error {
	if err := s.repo.Assignment.Delete(ctx, req.UserID, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("delete assignment failed", zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

func (s *projectService) ensureClient(ctx context.Context, clientID string) error {
	if _, err := s.repo.Client.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	return nil
}

func (s *projectService) ensureUsers(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.repo.User.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssigneeNotFound
			}
			return err
		}
	}
	return nil
}

func toProjectResponses(projects []model.Project) []dto.ProjectResponse {
	result := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		result = append(result, *toProjectResponse(&projects[i]))
	}
	return result
}
