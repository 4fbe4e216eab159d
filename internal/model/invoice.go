package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses
const (
	InvoiceDraft     = "DRAFT"
	InvoiceSent      = "SENT"
	InvoicePaid      = "PAID"
	InvoiceOverdue   = "OVERDUE"
	InvoiceCancelled = "CANCELLED"
)

// Invoice maps to invoices.
type Invoice struct {
	InvoiceID   string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invoice_id"`
	ClientID    string          `gorm:"type:uuid;not null;index"                       json:"client_id"`
	IssueDate   time.Time       `gorm:"type:date;not null"                             json:"issue_date"`
	DueDate     time.Time       `gorm:"type:date;not null"                             json:"due_date"`
	PeriodStart time.Time       `gorm:"type:date;not null"                             json:"period_start"`
	PeriodEnd   time.Time       `gorm:"type:date;not null"                             json:"period_end"`
	Status      string          `gorm:"type:varchar(20);not null;default:'DRAFT'"      json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"          json:"total_amount"`
	AmountPaid  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"          json:"amount_paid"`
	VersionedModel

	Client    *Client           `gorm:"foreignKey:ClientID;references:ClientID"   json:"client,omitempty"`
	LineItems []InvoiceLineItem `gorm:"foreignKey:InvoiceID;references:InvoiceID" json:"line_items,omitempty"`
	Payments  []Payment         `gorm:"foreignKey:InvoiceID;references:InvoiceID" json:"payments,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

// BalanceDue is total minus paid.
func (i *Invoice) BalanceDue() decimal.Decimal {
	return i.TotalAmount.Sub(i.AmountPaid)
}

// InvoiceLineItem maps to invoice_line_items.
type InvoiceLineItem struct {
	LineItemID  string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"line_item_id"`
	InvoiceID   string          `gorm:"type:uuid;not null;index"                       json:"invoice_id"`
	ProjectID   string          `gorm:"type:uuid;not null"                             json:"project_id"`
	UserID      string          `gorm:"type:uuid;not null"                             json:"user_id"`
	Description string          `gorm:"type:varchar(500);not null"                     json:"description"`
	Hours       decimal.Decimal `gorm:"type:numeric(10,2);not null"                    json:"hours"`
	Rate        decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"rate"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(14,2);not null"                    json:"line_total"`
	BaseModel
}

func (InvoiceLineItem) TableName() string { return "invoice_line_items" }

// Payment maps to payments.
type Payment struct {
	PaymentID   string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	InvoiceID   string          `gorm:"type:uuid;not null;index"                       json:"invoice_id"`
	PaymentDate time.Time       `gorm:"type:date;not null"                             json:"payment_date"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null"                    json:"amount"`
	Method      string          `gorm:"type:varchar(50)"                               json:"method"`
	Notes       string          `gorm:"type:text"                                      json:"notes"`
	BaseModel
}

func (Payment) TableName() string { return "payments" }
