package dto

import "github.com/shopspring/decimal"

// GenerateInvoiceRequest POST /invoices/generate
type GenerateInvoiceRequest struct {
	ClientID  string `json:"client_id"  binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"required,datetime=2006-01-02"`
	DueDate   string `json:"due_date"   binding:"required,datetime=2006-01-02"`
}

// InvoiceSearchRequest GET /invoices/search
type InvoiceSearchRequest struct {
	PaginationRequest
	ClientID  string `form:"client_id"  binding:"omitempty,uuid"`
	Status    string `form:"status"     binding:"omitempty,oneof=DRAFT SENT PAID OVERDUE CANCELLED"`
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"omitempty,datetime=2006-01-02"`
}

// UpdateInvoiceStatusRequest PATCH /invoices/:id/status
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT SENT PAID OVERDUE CANCELLED"`
}

// RecordPaymentRequest POST /invoices/:id/payments
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Method      string          `json:"method"       binding:"omitempty,max=50"`
	Notes       string          `json:"notes"        binding:"max=2000"`
}

// InvoiceLineItemResponse one (project, employee) line
type InvoiceLineItemResponse struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PaymentResponse recorded payment
type PaymentResponse struct {
	ID          string          `json:"id"`
	PaymentDate string          `json:"payment_date"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// InvoiceResponse invoice with lines and payments
type InvoiceResponse struct {
	ID          string                    `json:"id"`
	ClientID    string                    `json:"client_id"`
	ClientName  string                    `json:"client_name,omitempty"`
	IssueDate   string                    `json:"issue_date"`
	DueDate     string                    `json:"due_date"`
	PeriodStart string                    `json:"period_start"`
	PeriodEnd   string                    `json:"period_end"`
	Status      string                    `json:"status"`
	TotalAmount decimal.Decimal           `json:"total_amount"`
	AmountPaid  decimal.Decimal           `json:"amount_paid"`
	BalanceDue  decimal.Decimal           `json:"balance_due"`
	Version     int                       `json:"version"`
	LineItems   []InvoiceLineItemResponse `json:"line_items"`
	Payments    []PaymentResponse         `json:"payments"`
}
