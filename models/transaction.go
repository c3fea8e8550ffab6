package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the server-owned status of a payment transaction.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// IsTerminal reports whether no further client-side transition is expected.
// Terminal statuses are absorbing: the flow stops polling once one is seen.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentPaid, PaymentFailed, PaymentExpired, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

// Transaction mirrors the backend's payment transaction record. The client
// never mutates it except by requesting cancellation; paymentStatus is
// authoritative on the server side only.
type Transaction struct {
	OrderID       string          `json:"order_id"`
	EventID       string          `json:"event_id"`
	UserID        string          `json:"user_id"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Amount        decimal.Decimal `json:"amount"`
	AdminFee      decimal.Decimal `json:"admin_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	RedirectURL   string          `json:"redirect_url,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PaymentStatistics is the admin dashboard aggregate from the backend.
type PaymentStatistics struct {
	TotalTransactions int             `json:"total_transactions"`
	PaidTransactions  int             `json:"paid_transactions"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	ByStatus          map[string]int  `json:"by_status"`
}
