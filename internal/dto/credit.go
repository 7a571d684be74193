package dto

import (
	"time"

	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EligibilityResponse is the advisory eligibility view for a farmer.
type EligibilityResponse struct {
	FarmerID        string          `json:"farmerID"`
	IsEligible      bool            `json:"isEligible"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`
	AvailableCredit decimal.Decimal `json:"availableCredit"`
	PendingPayments decimal.Decimal `json:"pendingPayments"`
}

// ToEligibilityResponse converts a domain.EligibilityResult to its DTO.
func ToEligibilityResponse(farmerID string, r domain.EligibilityResult) EligibilityResponse {
	return EligibilityResponse{
		FarmerID:        farmerID,
		IsEligible:      r.IsEligible,
		CreditLimit:     r.CreditLimit,
		AvailableCredit: r.AvailableCredit,
		PendingPayments: r.PendingPayments,
	}
}

// CreditProfileResponse defines the data returned for a credit profile.
type CreditProfileResponse struct {
	FarmerID          string          `json:"farmerID"`
	Tier              string          `json:"tier"`
	LimitPercentage   decimal.Decimal `json:"limitPercentage"`
	MaxCreditAmount   decimal.Decimal `json:"maxCreditAmount"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	TotalUsed         decimal.Decimal `json:"totalUsed"`
	PendingDeductions decimal.Decimal `json:"pendingDeductions"`
	IsFrozen          bool            `json:"isFrozen"`
	FreezeReason      *string         `json:"freezeReason,omitempty"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ToCreditProfileResponse converts a domain.CreditProfile to its DTO.
func ToCreditProfileResponse(p *domain.CreditProfile) CreditProfileResponse {
	return CreditProfileResponse{
		FarmerID:          p.FarmerID,
		Tier:              string(p.Tier),
		LimitPercentage:   p.LimitPercentage,
		MaxCreditAmount:   p.MaxCreditAmount,
		CurrentBalance:    p.CurrentBalance,
		TotalUsed:         p.TotalUsed,
		PendingDeductions: p.PendingDeductions,
		IsFrozen:          p.IsFrozen,
		FreezeReason:      p.FreezeReason,
		UpdatedAt:         p.LastUpdatedAt,
	}
}

// AdjustCreditLimitRequest defines the policy change applied to a profile.
// It never touches the balance.
type AdjustCreditLimitRequest struct {
	LimitPercentage decimal.Decimal `json:"limitPercentage" binding:"required"`
	MaxCreditAmount decimal.Decimal `json:"maxCreditAmount" binding:"required"`
}

// FreezeProfileRequest carries the reason a profile is being frozen.
type FreezeProfileRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreditTransactionResponse defines the data returned for a ledger entry.
type CreditTransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	FarmerID      string          `json:"farmerID"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Description   string          `json:"description"`
	CreatedBy     string          `json:"createdBy"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToCreditTransactionResponse converts a domain.CreditTransaction to its DTO.
func ToCreditTransactionResponse(t *domain.CreditTransaction) CreditTransactionResponse {
	return CreditTransactionResponse{
		TransactionID: t.TransactionID,
		FarmerID:      t.FarmerID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		BalanceAfter:  t.BalanceAfter,
		Description:   t.Description,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
	}
}

// ToCreditTransactionResponses converts a slice of ledger entries.
func ToCreditTransactionResponses(txns []domain.CreditTransaction) []CreditTransactionResponse {
	responses := make([]CreditTransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToCreditTransactionResponse(&txn)
	}
	return responses
}

// ListTransactionsParams defines query parameters for listing ledger entries.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a page of ledger entries plus the next cursor.
type ListTransactionsResponse struct {
	Transactions []CreditTransactionResponse `json:"transactions"`
	NextToken    *string                     `json:"nextToken,omitempty"`
}
