package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/model"
)

// ProjectRepository project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id, deletedBy string) error
	List(ctx context.Context, offset, limit int) ([]model.Project, int64, error)
	ListByClient(ctx context.Context, clientID string) ([]model.Project, error)
	ListActive(ctx context.Context) ([]model.Project, error)
	ListActiveForUser(ctx context.Context, userID string) ([]model.Project, error)
	CountByIDs(ctx context.Context, ids []string) (int64, error)
}

// AssignmentRepository project membership data access
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.ProjectAssignment) error
	Delete(ctx context.Context, userID, projectID string) error
	Exists(ctx context.Context, userID, projectID string) (bool, error)
	ListByProject(ctx context.Context, projectID string) ([]model.ProjectAssignment, error)
}

// ── Project ──

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo creates a ProjectRepository.
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit("Client", "Assignments").Create(project).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Assignments").
		Where("project_id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit("Client", "Assignments").Save(project).Error
}

func (r *projectRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Project{}).
			Where("project_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("project_id = ?", id).Delete(&model.Project{}).Error
	})
}

func (r *projectRepo) List(ctx context.Context, offset, limit int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Project{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Client").Preload("Assignments").
		Offset(offset).Limit(limit).
		Order("name").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *projectRepo) ListByClient(ctx context.Context, clientID string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Preload("Client").Preload("Assignments").
		Where("client_id = ?", clientID).
		Order("name").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepo) ListActive(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("status = ?", model.ProjectActive).
		Order("name").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepo) ListActiveForUser(ctx context.Context, userID string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Preload("Client").
		Joins("JOIN project_assignments pa ON pa.project_id = projects.project_id").
		Where("pa.user_id = ? AND projects.status = ?", userID, model.ProjectActive).
		Order("projects.name").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepo) CountByIDs(ctx context.Context, ids []string) (int64, error) {
	var n int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("project_id IN ?", ids).
		Count(&n).Error
	return n, err
}

// ── Assignment ──

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo creates an AssignmentRepository.
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.ProjectAssignment) error {
	return r.db.WithContext(ctx).Omit("User").Create(a).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, userID, projectID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&model.ProjectAssignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepo) Exists(ctx context.Context, userID, projectID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ProjectAssignment{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&n).Error
	return n > 0, err
}

func (r *assignmentRepo) ListByProject(ctx context.Context, projectID string) ([]model.ProjectAssignment, error) {
	var list []model.ProjectAssignment
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&list).Error
	return list, err
}
