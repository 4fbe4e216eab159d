package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/model"
	pkgerrors "github.com/smaraba1/payroll-processing/pkg/errors"
)

// InvoiceSearchFilters optional filters for Search. Dates bound issue_date.
type InvoiceSearchFilters struct {
	ClientID  string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// InvoiceRepository invoice data access
type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	GetByID(ctx context.Context, id string) (*model.Invoice, error)
	Update(ctx context.Context, inv *model.Invoice) error
	Delete(ctx context.Context, id, deletedBy string) error
	Search(ctx context.Context, filters *InvoiceSearchFilters, offset, limit int) ([]model.Invoice, int64, error)
}

// PaymentRepository payment data access
type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
}

// ── Invoice ──

type invoiceRepo struct {
	db *gorm.DB
}

// NewInvoiceRepo creates an InvoiceRepository.
func NewInvoiceRepo(db *gorm.DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

// Create inserts the invoice together with its line items.
func (r *invoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Omit("Client", "Payments").Create(inv).Error
}

func (r *invoiceRepo) GetByID(ctx context.Context, id string) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("description") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payment_date") }).
		Where("invoice_id = ?", id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Update writes status and amounts if the row still carries inv.Version.
func (r *invoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	oldVersion := inv.Version
	result := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("invoice_id = ? AND version = ?", inv.InvoiceID, oldVersion).
		Updates(map[string]interface{}{
			"status":       inv.Status,
			"due_date":     inv.DueDate,
			"total_amount": inv.TotalAmount,
			"amount_paid":  inv.AmountPaid,
			"updated_by":   inv.UpdatedBy,
			"updated_at":   time.Now(),
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	inv.Version = oldVersion + 1
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Invoice{}).
			Where("invoice_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("invoice_id = ?", id).Delete(&model.Invoice{}).Error
	})
}

func (r *invoiceRepo) Search(ctx context.Context, filters *InvoiceSearchFilters, offset, limit int) ([]model.Invoice, int64, error) {
	var list []model.Invoice
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Invoice{})
	if filters != nil {
		if filters.ClientID != "" {
			db = db.Where("client_id = ?", filters.ClientID)
		}
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.StartDate != nil {
			db = db.Where("issue_date >= ?", *filters.StartDate)
		}
		if filters.EndDate != nil {
			db = db.Where("issue_date <= ?", *filters.EndDate)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Client").
		Offset(offset).Limit(limit).
		Order("issue_date DESC, created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ── Payment ──

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo creates a PaymentRepository.
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}
