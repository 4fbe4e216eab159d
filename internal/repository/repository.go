package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every data access interface.
type Repository struct {
	db *gorm.DB

	User       UserRepository
	Client     ClientRepository
	Project    ProjectRepository
	Assignment AssignmentRepository
	Timesheet  TimesheetRepository
	TimeEntry  TimeEntryRepository
	Invoice    InvoiceRepository
	Payment    PaymentRepository
}

// NewRepository builds the aggregate on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		Client:     NewClientRepo(db),
		Project:    NewProjectRepo(db),
		Assignment: NewAssignmentRepo(db),
		Timesheet:  NewTimesheetRepo(db),
		TimeEntry:  NewTimeEntryRepo(db),
		Invoice:    NewInvoiceRepo(db),
		Payment:    NewPaymentRepo(db),
	}
}

// BeginTx starts a transaction. A repository built without a database (unit
// tests) returns a nil tx and WithTx hands back the same aggregate.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns an aggregate whose repositories all run inside tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// RunInTx runs fn in a transaction, committing on nil and rolling back on
// error or panic.
func (r *Repository) RunInTx(ctx context.Context, fn func(txRepo *Repository) error) (err error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}
