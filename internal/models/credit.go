package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditProfile mirrors the credit_profiles table. One row per farmer.
// The version column backs the optimistic concurrency check; every update
// must match and increment it.
type CreditProfile struct {
	FarmerID          string          `db:"farmer_id"`
	Tier              string          `db:"tier"`
	LimitPercentage   decimal.Decimal `db:"limit_percentage"`
	MaxCreditAmount   decimal.Decimal `db:"max_credit_amount"`
	CurrentBalance    decimal.Decimal `db:"current_balance"`
	TotalUsed         decimal.Decimal `db:"total_used"`
	PendingDeductions decimal.Decimal `db:"pending_deductions"`
	IsFrozen          bool            `db:"is_frozen"`
	FreezeReason      *string         `db:"freeze_reason"`
	Version           int64           `db:"version"`
	AuditFields
}

// CreditTransaction mirrors the credit_transactions table (append-only).
type CreditTransaction struct {
	TransactionID string          `db:"transaction_id"`
	FarmerID      string          `db:"farmer_id"`
	Type          string          `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Description   string          `db:"description"`
	CreatedBy     string          `db:"created_by"`
	CreatedAt     time.Time       `db:"created_at"`
}

// CreditRequest mirrors the credit_requests table.
type CreditRequest struct {
	RequestID                string          `db:"request_id"`
	FarmerID                 string          `db:"farmer_id"`
	ProductID                string          `db:"product_id"`
	ProductName              string          `db:"product_name"`
	Quantity                 decimal.Decimal `db:"quantity"`
	UnitPrice                decimal.Decimal `db:"unit_price"`
	TotalAmount              decimal.Decimal `db:"total_amount"`
	Status                   string          `db:"status"`
	AvailableCreditAtRequest decimal.Decimal `db:"available_credit_at_request"`
	ApprovedBy               *string         `db:"approved_by"`
	ApprovedAt               *time.Time      `db:"approved_at"`
	RejectionReason          *string         `db:"rejection_reason"`
	CreatedAt                time.Time       `db:"created_at"`
}
