package services

import (
	"context"

	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/maziwaops/dairy_credit_app/internal/dto"
	"github.com/shopspring/decimal"
)

// TierPolicy holds the bootstrap defaults for one farmer tier.
type TierPolicy struct {
	LimitPercentage decimal.Decimal
	MaxCreditAmount decimal.Decimal
}

// PolicyProvider supplies tier defaults and the global ceiling used when
// bootstrapping a profile. Read-only input to the eligibility calculator.
type PolicyProvider interface {
	// DefaultsForTier returns the limit percentage and cap for a tier.
	DefaultsForTier(tier domain.FarmerTier) TierPolicy

	// AbsoluteCap returns the global ceiling no profile cap may exceed.
	AbsoluteCap() decimal.Decimal
}

// CreditSvcFacade exposes the eligibility calculator and the grant/adjust
// service.
type CreditSvcFacade interface {
	// CalculateEligibility computes the advisory eligibility view for a
	// farmer. Read-only; a missing profile yields a bootstrap view with tier
	// defaults rather than failing.
	CalculateEligibility(ctx context.Context, farmerID string) (*domain.EligibilityResult, error)

	// GetProfile retrieves a farmer's credit profile.
	GetProfile(ctx context.Context, farmerID string) (*domain.CreditProfile, error)

	// GrantCredit activates the profile's spendable balance at the current
	// credit limit. Fails with apperrors.ErrAlreadyGranted when the balance
	// is non-zero, and with apperrors.ErrFrozen on a frozen profile.
	GrantCredit(ctx context.Context, farmerID string, actorID string) (*domain.CreditProfile, error)

	// AdjustCreditLimit updates the limit percentage and cap only; the
	// balance is untouched. Creates the profile with tier defaults first if
	// none exists.
	AdjustCreditLimit(ctx context.Context, farmerID string, percentage decimal.Decimal, maxAmount decimal.Decimal, actorID string) (*domain.CreditProfile, error)

	// FreezeProfile suspends all credit for a farmer.
	FreezeProfile(ctx context.Context, farmerID string, reason string, actorID string) (*domain.CreditProfile, error)

	// UnfreezeProfile lifts a freeze.
	UnfreezeProfile(ctx context.Context, farmerID string, actorID string) (*domain.CreditProfile, error)

	// ListTransactions retrieves a page of the farmer's ledger.
	ListTransactions(ctx context.Context, farmerID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}
