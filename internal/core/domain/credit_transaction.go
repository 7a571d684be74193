package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditTransactionType classifies a ledger entry.
type CreditTransactionType string

const (
	TxnGranted         CreditTransactionType = "GRANTED"
	TxnAdjusted        CreditTransactionType = "ADJUSTED"
	TxnRequestApproved CreditTransactionType = "REQUEST_APPROVED"
	TxnRequestRejected CreditTransactionType = "REQUEST_REJECTED"
)

// CreditTransaction is an append-only ledger entry recording a
// balance-affecting (or policy-affecting, amount zero) event on a
// CreditProfile. Rows are never updated or deleted.
type CreditTransaction struct {
	TransactionID string                `json:"transactionID"`
	FarmerID      string                `json:"farmerID"`
	Type          CreditTransactionType `json:"type"`
	Amount        decimal.Decimal       `json:"amount"`
	BalanceAfter  decimal.Decimal       `json:"balanceAfter"`
	Description   string                `json:"description"`
	CreatedBy     string                `json:"createdBy"` // opaque actor ID, not validated here
	CreatedAt     time.Time             `json:"createdAt"`
}
