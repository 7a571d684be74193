package creditcalc

import (
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeCreditLimit derives the credit limit from the unpaid collection total.
// creditLimit = min(pendingPayments * limitPercentage/100, maxCreditAmount),
// clamped to >= 0. A negative maxCreditAmount persisted by a data error must
// not silently grant credit; it is treated as 0.
func ComputeCreditLimit(pendingPayments, limitPercentage, maxCreditAmount decimal.Decimal) decimal.Decimal {
	cap := maxCreditAmount
	if cap.IsNegative() {
		cap = decimal.Zero
	}

	limit := pendingPayments.Mul(limitPercentage).Div(hundred)
	if limit.IsNegative() {
		limit = decimal.Zero
	}
	if limit.GreaterThan(cap) {
		limit = cap
	}
	return limit
}

// ComputeEligibility evaluates a profile against the unpaid collection total.
// The result is advisory: binding decisions re-check under the profile lock.
// A nil or frozen profile yields isEligible=false with all figures zero,
// regardless of the stored balance.
func ComputeEligibility(profile *domain.CreditProfile, pendingPayments decimal.Decimal) domain.EligibilityResult {
	if profile == nil || profile.IsFrozen {
		return domain.EligibilityResult{
			IsEligible:      false,
			CreditLimit:     decimal.Zero,
			AvailableCredit: decimal.Zero,
			PendingPayments: decimal.Zero,
		}
	}

	limit := ComputeCreditLimit(pendingPayments, profile.LimitPercentage, profile.MaxCreditAmount)

	// Available credit is the granted balance, never beyond the current limit.
	balance := profile.CurrentBalance
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	available := balance
	if available.GreaterThan(limit) {
		available = limit
	}

	return domain.EligibilityResult{
		IsEligible:      true,
		CreditLimit:     limit,
		AvailableCredit: available,
		PendingPayments: pendingPayments,
	}
}
