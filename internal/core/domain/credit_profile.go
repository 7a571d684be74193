package domain

import "github.com/shopspring/decimal"

// FarmerTier classifies a farmer and drives the default credit limit percentage.
type FarmerTier string

const (
	TierNew         FarmerTier = "NEW"
	TierEstablished FarmerTier = "ESTABLISHED"
	TierPremium     FarmerTier = "PREMIUM"
)

// CreditProfile is the per-farmer record of credit policy and balance.
// CurrentBalance is the sole shared mutable resource in this subsystem;
// every balance change goes through a locked read-check-write and produces
// exactly one CreditTransaction in the same atomic unit.
type CreditProfile struct {
	FarmerID        string          `json:"farmerID"`
	Tier            FarmerTier      `json:"tier"`
	LimitPercentage decimal.Decimal `json:"limitPercentage"` // 0-100, percent of pending payments usable as credit
	MaxCreditAmount decimal.Decimal `json:"maxCreditAmount"` // absolute cap in currency units
	CurrentBalance  decimal.Decimal `json:"currentBalance"`  // never negative
	TotalUsed       decimal.Decimal `json:"totalUsed"`       // cumulative drawdown, monotonically non-decreasing
	PendingDeductions decimal.Decimal `json:"pendingDeductions"`
	IsFrozen        bool            `json:"isFrozen"`
	FreezeReason    *string         `json:"freezeReason,omitempty"`
	Version         int64           `json:"-"` // optimistic concurrency check on every update
	AuditFields
}

// EligibilityResult is the advisory output of the eligibility calculator.
// It is not a lock: binding decisions (grant, approval) re-check inside the
// atomic section.
type EligibilityResult struct {
	IsEligible      bool            `json:"isEligible"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`
	AvailableCredit decimal.Decimal `json:"availableCredit"`
	PendingPayments decimal.Decimal `json:"pendingPayments"`
}
