package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maziwaops/dairy_credit_app/internal/apperrors"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portsrepo "github.com/maziwaops/dairy_credit_app/internal/core/ports/repositories"
	portssvc "github.com/maziwaops/dairy_credit_app/internal/core/ports/services"
	"github.com/maziwaops/dairy_credit_app/internal/dto"
	"github.com/maziwaops/dairy_credit_app/internal/middleware"
	"github.com/maziwaops/dairy_credit_app/internal/utils/creditcalc"
	"github.com/shopspring/decimal"
)

// maxConflictRetries bounds the internal retry loop on version conflicts.
// Conflicts are rare because the grant and approval paths hold a row lock,
// but a bounded retry keeps the contract when they do occur.
const maxConflictRetries = 3

var hundred = decimal.NewFromInt(100)

// creditService provides the eligibility calculator and the grant/adjust
// operations on credit profiles.
type creditService struct {
	creditRepo     portsrepo.CreditRepositoryFacade
	collectionRepo portsrepo.CollectionRepositoryFacade
	farmerRepo     portsrepo.FarmerRepositoryFacade
	policy         portssvc.PolicyProvider
}

// NewCreditService creates a new CreditService.
func NewCreditService(creditRepo portsrepo.CreditRepositoryFacade, collectionRepo portsrepo.CollectionRepositoryFacade, farmerRepo portsrepo.FarmerRepositoryFacade, policy portssvc.PolicyProvider) portssvc.CreditSvcFacade {
	return &creditService{
		creditRepo:     creditRepo,
		collectionRepo: collectionRepo,
		farmerRepo:     farmerRepo,
		policy:         policy,
	}
}

var _ portssvc.CreditSvcFacade = (*creditService)(nil)

// defaultProfile builds a fresh profile from the farmer's tier defaults. The
// balance starts at zero; a separate grant activates it.
func (s *creditService) defaultProfile(farmer *domain.Farmer, actorID string, now time.Time) domain.CreditProfile {
	tierPolicy := s.policy.DefaultsForTier(farmer.Tier)
	return domain.CreditProfile{
		FarmerID:          farmer.FarmerID,
		Tier:              farmer.Tier,
		LimitPercentage:   tierPolicy.LimitPercentage,
		MaxCreditAmount:   tierPolicy.MaxCreditAmount,
		CurrentBalance:    decimal.Zero,
		TotalUsed:         decimal.Zero,
		PendingDeductions: decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
}

// CalculateEligibility computes the advisory eligibility view for a farmer.
// A farmer without a profile gets a read-only bootstrap view built from tier
// defaults; nothing is persisted.
func (s *creditService) CalculateEligibility(ctx context.Context, farmerID string) (*domain.EligibilityResult, error) {
	farmer, err := s.farmerRepo.FindFarmerByID(ctx, farmerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: farmer %s not found", apperrors.ErrValidation, farmerID)
		}
		return nil, err
	}

	pending, err := s.collectionRepo.SumUnpaidAmountByFarmerID(ctx, farmerID)
	if err != nil {
		return nil, err
	}

	profile, err := s.creditRepo.FindProfileByFarmerID(ctx, farmerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		bootstrap := s.defaultProfile(farmer, "", time.Now().UTC())
		profile = &bootstrap
	}

	result := creditcalc.ComputeEligibility(profile, pending)
	return &result, nil
}

// GetProfile retrieves a farmer's credit profile.
func (s *creditService) GetProfile(ctx context.Context, farmerID string) (*domain.CreditProfile, error) {
	profile, err := s.creditRepo.FindProfileByFarmerID(ctx, farmerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("credit profile for farmer %s not found", farmerID))
		}
		return nil, err
	}
	return profile, nil
}

// ensureProfile guarantees a profile row exists for the farmer, creating one
// with tier defaults when missing. A concurrent creator winning the insert
// race is fine; the caller re-reads under lock afterwards.
func (s *creditService) ensureProfile(ctx context.Context, farmerID string, actorID string) error {
	_, err := s.creditRepo.FindProfileByFarmerID(ctx, farmerID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	farmer, err := s.farmerRepo.FindFarmerByID(ctx, farmerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: farmer %s not found", apperrors.ErrValidation, farmerID)
		}
		return err
	}

	profile := s.defaultProfile(farmer, actorID, time.Now().UTC())
	if err := s.creditRepo.SaveProfile(ctx, profile); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
		return err
	}
	return nil
}

// GrantCredit activates the spendable balance at the current credit limit.
// The read-check-write on the balance runs under the profile row lock so that
// of two concurrent grants exactly one succeeds.
func (s *creditService) GrantCredit(ctx context.Context, farmerID string, actorID string) (*domain.CreditProfile, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.ensureProfile(ctx, farmerID, actorID); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		profile, err := s.grantOnce(ctx, farmerID, actorID)
		if err == nil {
			logger.Info("Credit granted", slog.String("farmer_id", farmerID), slog.String("balance", profile.CurrentBalance.String()))
			return profile, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		lastErr = err
		logger.Warn("Conflict during credit grant, retrying", slog.String("farmer_id", farmerID), slog.Int("attempt", attempt+1))
	}
	return nil, apperrors.NewAppError(500, "credit grant failed after repeated conflicts", lastErr)
}

func (s *creditService) grantOnce(ctx context.Context, farmerID string, actorID string) (*domain.CreditProfile, error) {
	tx, err := s.creditRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.creditRepo.Rollback(ctx, tx)

	profile, err := s.creditRepo.FindProfileByFarmerIDForUpdate(ctx, tx, farmerID)
	if err != nil {
		return nil, err
	}

	if profile.IsFrozen {
		return nil, fmt.Errorf("%w: cannot grant credit to farmer %s", apperrors.ErrFrozen, farmerID)
	}
	if !profile.CurrentBalance.IsZero() {
		return nil, apperrors.ErrAlreadyGranted
	}

	pending, err := s.collectionRepo.SumUnpaidAmountByFarmerIDInTx(ctx, tx, farmerID)
	if err != nil {
		return nil, err
	}

	limit := creditcalc.ComputeCreditLimit(pending, profile.LimitPercentage, profile.MaxCreditAmount)

	now := time.Now().UTC()
	profile.CurrentBalance = limit
	profile.LastUpdatedAt = now
	profile.LastUpdatedBy = actorID

	if err := s.creditRepo.UpdateProfileInTx(ctx, tx, *profile); err != nil {
		return nil, err
	}

	txn := domain.CreditTransaction{
		TransactionID: uuid.NewString(),
		FarmerID:      farmerID,
		Type:          domain.TxnGranted,
		Amount:        limit,
		BalanceAfter:  profile.CurrentBalance,
		Description:   "Credit granted at current limit",
		CreatedBy:     actorID,
		CreatedAt:     now,
	}
	if err := s.creditRepo.RecordTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := s.creditRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	profile.Version++
	return profile, nil
}

// AdjustCreditLimit updates the policy fields of a profile. It never touches
// the balance; the change is evidenced by an amount-zero ledger entry.
func (s *creditService) AdjustCreditLimit(ctx context.Context, farmerID string, percentage decimal.Decimal, maxAmount decimal.Decimal, actorID string) (*domain.CreditProfile, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: limit percentage must be between 0 and 100, got %s", apperrors.ErrValidation, percentage.String())
	}
	if maxAmount.IsNegative() {
		return nil, fmt.Errorf("%w: max credit amount must not be negative, got %s", apperrors.ErrValidation, maxAmount.String())
	}
	if cap := s.policy.AbsoluteCap(); maxAmount.GreaterThan(cap) {
		return nil, fmt.Errorf("%w: max credit amount %s exceeds the absolute ceiling %s", apperrors.ErrValidation, maxAmount.String(), cap.String())
	}

	if err := s.ensureProfile(ctx, farmerID, actorID); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		profile, err := s.adjustOnce(ctx, farmerID, percentage, maxAmount, actorID)
		if err == nil {
			logger.Info("Credit limit adjusted", slog.String("farmer_id", farmerID), slog.String("percentage", percentage.String()), slog.String("max_amount", maxAmount.String()))
			return profile, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, apperrors.NewAppError(500, "credit limit adjustment failed after repeated conflicts", lastErr)
}

func (s *creditService) adjustOnce(ctx context.Context, farmerID string, percentage decimal.Decimal, maxAmount decimal.Decimal, actorID string) (*domain.CreditProfile, error) {
	tx, err := s.creditRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.creditRepo.Rollback(ctx, tx)

	profile, err := s.creditRepo.FindProfileByFarmerIDForUpdate(ctx, tx, farmerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	profile.LimitPercentage = percentage
	profile.MaxCreditAmount = maxAmount
	profile.LastUpdatedAt = now
	profile.LastUpdatedBy = actorID

	if err := s.creditRepo.UpdateProfileInTx(ctx, tx, *profile); err != nil {
		return nil, err
	}

	txn := domain.CreditTransaction{
		TransactionID: uuid.NewString(),
		FarmerID:      farmerID,
		Type:          domain.TxnAdjusted,
		Amount:        decimal.Zero,
		BalanceAfter:  profile.CurrentBalance,
		Description:   fmt.Sprintf("Credit policy adjusted: %s%% up to %s", percentage.String(), maxAmount.String()),
		CreatedBy:     actorID,
		CreatedAt:     now,
	}
	if err := s.creditRepo.RecordTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := s.creditRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	profile.Version++
	return profile, nil
}

// FreezeProfile suspends all credit for a farmer until unfrozen.
func (s *creditService) FreezeProfile(ctx context.Context, farmerID string, reason string, actorID string) (*domain.CreditProfile, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: freeze reason is required", apperrors.ErrValidation)
	}
	return s.setFrozen(ctx, farmerID, true, &reason, actorID)
}

// UnfreezeProfile lifts a freeze.
func (s *creditService) UnfreezeProfile(ctx context.Context, farmerID string, actorID string) (*domain.CreditProfile, error) {
	return s.setFrozen(ctx, farmerID, false, nil, actorID)
}

func (s *creditService) setFrozen(ctx context.Context, farmerID string, frozen bool, reason *string, actorID string) (*domain.CreditProfile, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		profile, err := s.setFrozenOnce(ctx, farmerID, frozen, reason, actorID)
		if err == nil {
			logger.Info("Credit profile freeze state changed", slog.String("farmer_id", farmerID), slog.Bool("frozen", frozen))
			return profile, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, apperrors.NewAppError(500, "freeze state change failed after repeated conflicts", lastErr)
}

func (s *creditService) setFrozenOnce(ctx context.Context, farmerID string, frozen bool, reason *string, actorID string) (*domain.CreditProfile, error) {
	tx, err := s.creditRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.creditRepo.Rollback(ctx, tx)

	profile, err := s.creditRepo.FindProfileByFarmerIDForUpdate(ctx, tx, farmerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("credit profile for farmer %s not found", farmerID))
		}
		return nil, err
	}

	if profile.IsFrozen == frozen {
		if frozen {
			return nil, fmt.Errorf("%w: profile is already frozen", apperrors.ErrInvalidState)
		}
		return nil, fmt.Errorf("%w: profile is not frozen", apperrors.ErrInvalidState)
	}

	now := time.Now().UTC()
	profile.IsFrozen = frozen
	profile.FreezeReason = reason
	profile.LastUpdatedAt = now
	profile.LastUpdatedBy = actorID

	if err := s.creditRepo.UpdateProfileInTx(ctx, tx, *profile); err != nil {
		return nil, err
	}

	description := "Credit profile unfrozen"
	if frozen {
		description = "Credit profile frozen: " + *reason
	}
	txn := domain.CreditTransaction{
		TransactionID: uuid.NewString(),
		FarmerID:      farmerID,
		Type:          domain.TxnAdjusted,
		Amount:        decimal.Zero,
		BalanceAfter:  profile.CurrentBalance,
		Description:   description,
		CreatedBy:     actorID,
		CreatedAt:     now,
	}
	if err := s.creditRepo.RecordTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := s.creditRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	profile.Version++
	return profile, nil
}

// ListTransactions retrieves a page of the farmer's ledger, newest first.
func (s *creditService) ListTransactions(ctx context.Context, farmerID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	txns, nextToken, err := s.creditRepo.ListTransactionsByFarmerID(ctx, farmerID, limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToCreditTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}
