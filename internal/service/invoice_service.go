package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

// ── Invoice errors ──

var (
	ErrInvoiceNotFound      = errors.New("Invoice not found")
	ErrInvalidDateRange     = errors.New("Start date must not be after end date")
	ErrNoBillableEntries    = errors.New("No approved billable time found for this client and period")
	ErrInvalidPaymentAmount = errors.New("Payment amount must be greater than zero")
	ErrInvoiceCancelled     = errors.New("Cancelled invoices cannot receive payments")
	ErrInvoiceNotDraft      = errors.New("Only draft invoices can be deleted")
)

// InvoiceService client invoicing
type InvoiceService interface {
	Generate(ctx context.Context, req *dto.GenerateInvoiceRequest, callerID string) (*dto.InvoiceResponse, error)
	GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	Search(ctx context.Context, req *dto.InvoiceSearchRequest) ([]dto.InvoiceResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateInvoiceStatusRequest, callerID string) (*dto.InvoiceResponse, error)
	RecordPayment(ctx context.Context, id string, req *dto.RecordPaymentRequest, callerID string) (*dto.InvoiceResponse, error)
	Delete(ctx context.Context, id, callerID string) error
}

type invoiceService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewInvoiceService creates an InvoiceService.
func NewInvoiceService(repo *repository.Repository, logger *zap.Logger) InvoiceService {
	return &invoiceService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Generate ──────────────────────

// Generate bills every approved billable hour of the client's projects in
// [start, end], one line per (project, employee) at the project's rate.
func (s *invoiceService) Generate(ctx context.Context, req *dto.GenerateInvoiceRequest, callerID string) (*dto.InvoiceResponse, error) {
	start, err := weeksheet.ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := weeksheet.ParseDate(req.EndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	due, err := weeksheet.ParseDate(req.DueDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	if _, err := s.repo.Client.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	projects, err := s.repo.Project.ListByClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Project, len(projects))
	ids := make([]string, 0, len(projects))
	for i := range projects {
		byID[projects[i].ProjectID] = &projects[i]
		ids = append(ids, projects[i].ProjectID)
	}

	sums, err := s.repo.TimeEntry.SumApprovedBillable(ctx, ids, start, end)
	if err != nil {
		s.logger.Error("sum billable hours failed", zap.String("client_id", req.ClientID), zap.Error(err))
		return nil, err
	}
	if len(sums) == 0 {
		return nil, ErrNoBillableEntries
	}

	users := make(map[string]*model.User)
	total := decimal.Zero
	lines := make([]model.InvoiceLineItem, 0, len(sums))
	for _, sum := range sums {
		project, ok := byID[sum.ProjectID]
		if !ok {
			continue
		}
		user, ok := users[sum.UserID]
		if !ok {
			user, err = s.repo.User.GetByID(ctx, sum.UserID)
			if err != nil {
				return nil, fmt.Errorf("load user %s: %w", sum.UserID, err)
			}
			users[sum.UserID] = user
		}

		lineTotal := sum.Hours.Mul(project.DefaultBillableRate).Round(2)
		total = total.Add(lineTotal)
		lines = append(lines, model.InvoiceLineItem{
			ProjectID:   project.ProjectID,
			UserID:      user.UserID,
			Description: fmt.Sprintf("%s - %s", project.Name, user.FullName()),
			Hours:       sum.Hours,
			Rate:        project.DefaultBillableRate,
			LineTotal:   lineTotal,
			BaseModel:   model.CreatedBy(callerID),
		})
	}

	now := s.now()
	inv := &model.Invoice{
		ClientID:    req.ClientID,
		IssueDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		DueDate:     due,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      model.InvoiceDraft,
		TotalAmount: total,
		AmountPaid:  decimal.Zero,
		LineItems:   lines,
		VersionedModel: model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{
			BaseModel: model.CreatedBy(callerID),
		}},
	}
	if err := s.repo.Invoice.Create(ctx, inv); err != nil {
		s.logger.Error("create invoice failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("invoice generated",
		zap.String("invoice_id", inv.InvoiceID),
		zap.String("client_id", req.ClientID),
		zap.String("total", total.StringFixed(2)),
		zap.Int("lines", len(lines)),
	)
	return s.GetByID(ctx, inv.InvoiceID)
}

// ────────────────────── Read ──────────────────────

func (s *invoiceService) get(ctx context.Context, id string) (*model.Invoice, error) {
	inv, err := s.repo.Invoice.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		s.logger.Error("load invoice failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

func (s *invoiceService) Search(ctx context.Context, req *dto.InvoiceSearchRequest) ([]dto.InvoiceResponse, int64, error) {
	filters := &repository.InvoiceSearchFilters{ClientID: req.ClientID, Status: req.Status}
	if req.StartDate != "" {
		t, err := weeksheet.ParseDate(req.StartDate)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filters.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := weeksheet.ParseDate(req.EndDate)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filters.EndDate = &t
	}

	list, total, err := s.repo.Invoice.Search(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("search invoices failed", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.InvoiceResponse, 0, len(list))
	for i := range list {
		result = append(result, *toInvoiceResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *invoiceService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateInvoiceStatusRequest, callerID string) (*dto.InvoiceResponse, error) {
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Status = req.Status
	inv.UpdatedBy = &callerID
	if err := s.repo.Invoice.Update(ctx, inv); err != nil {
		s.logger.Error("update invoice status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// ────────────────────── RecordPayment ──────────────────────

// RecordPayment adds to the amount paid and marks the invoice PAID once the
// total is covered. A concurrent payment surfaces as ErrOptimisticLock.
func (s *invoiceService) RecordPayment(ctx context.Context, id string, req *dto.RecordPaymentRequest, callerID string) (*dto.InvoiceResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == model.InvoiceCancelled {
		return nil, ErrInvoiceCancelled
	}

	paidOn := s.now()
	if req.PaymentDate != "" {
		paidOn, err = weeksheet.ParseDate(req.PaymentDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
	}

	payment := &model.Payment{
		InvoiceID:   inv.InvoiceID,
		PaymentDate: paidOn,
		Amount:      req.Amount,
		Method:      req.Method,
		Notes:       req.Notes,
		BaseModel:   model.CreatedBy(callerID),
	}

	inv.AmountPaid = inv.AmountPaid.Add(req.Amount)
	if inv.AmountPaid.GreaterThanOrEqual(inv.TotalAmount) {
		inv.Status = model.InvoicePaid
	}
	inv.UpdatedBy = &callerID

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Payment.Create(ctx, payment); err != nil {
			return err
		}
		return tx.Invoice.Update(ctx, inv)
	})
	if err != nil {
		s.logger.Error("record payment failed", zap.String("invoice_id", id), zap.Error(err))
		return nil, err
	}

	inv.Payments = append(inv.Payments, *payment)
	s.logger.Info("payment recorded",
		zap.String("invoice_id", id),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("status", inv.Status),
	)
	return toInvoiceResponse(inv), nil
}

// ────────────────────── Delete ──────────────────────

func (s *invoiceService) Delete(ctx context.Context, id, callerID string) error {
	inv, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != model.InvoiceDraft {
		return ErrInvoiceNotDraft
	}
	if err := s.repo.Invoice.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete invoice failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
