package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/model"
)

// ClientRepository client data access
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	GetByID(ctx context.Context, id string) (*model.Client, error)
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id, deletedBy string) error
	List(ctx context.Context, offset, limit int) ([]model.Client, int64, error)
	SearchByName(ctx context.Context, name string) ([]model.Client, error)
}

type clientRepo struct {
	db *gorm.DB
}

// NewClientRepo creates a ClientRepository.
func NewClientRepo(db *gorm.DB) ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).Where("client_id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepo) Update(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Client{}).
			Where("client_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("client_id = ?", id).Delete(&model.Client{}).Error
	})
}

func (r *clientRepo) List(ctx context.Context, offset, limit int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Client{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).Order("name").Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepo) SearchByName(ctx context.Context, name string) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+name+"%").
		Order("name").
		Find(&clients).Error
	return clients, err
}
