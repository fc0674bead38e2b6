package invoice

import (
	"time"
)

type Type string

const (
	TypeFunding           Type = "funding"
	TypeCollateralDeposit Type = "collateral_deposit"
	TypeRepayment         Type = "repayment"
)

type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusExpired       Status = "expired"
)

// Invoice tracks an external payment. The payment/ledger subsystem owns the
// money movement; the core creates the record, reads amount/currency/expiry,
// and reacts to paid events.
type Invoice struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	InvoiceID  string `gorm:"size:36;uniqueIndex:ux_invoices_invoice_id" json:"invoice_id"`
	Type       Type   `gorm:"size:24;not null" json:"type"`
	CurrencyID string `gorm:"size:32;not null" json:"currency_id"`
	// Amount and PaidAmount in the invoice currency's smallest units.
	Amount     string     `gorm:"type:decimal(65,0);not null" json:"amount"`
	PaidAmount string     `gorm:"type:decimal(65,0);default:0" json:"paid_amount"`
	Status     Status     `gorm:"size:16;default:'pending'" json:"status"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	ExpiresAt  time.Time  `gorm:"index" json:"expires_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }
