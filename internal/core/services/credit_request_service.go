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

// creditRequestService drives the purchase request workflow.
type creditRequestService struct {
	requestRepo    portsrepo.CreditRequestRepositoryFacade
	creditRepo     portsrepo.CreditRepositoryFacade
	collectionRepo portsrepo.CollectionRepositoryFacade
	creditSvc      portssvc.CreditSvcFacade
}

// NewCreditRequestService creates a new CreditRequestService.
func NewCreditRequestService(requestRepo portsrepo.CreditRequestRepositoryFacade, creditRepo portsrepo.CreditRepositoryFacade, collectionRepo portsrepo.CollectionRepositoryFacade, creditSvc portssvc.CreditSvcFacade) portssvc.CreditRequestSvcFacade {
	return &creditRequestService{
		requestRepo:    requestRepo,
		creditRepo:     creditRepo,
		collectionRepo: collectionRepo,
		creditSvc:      creditSvc,
	}
}

var _ portssvc.CreditRequestSvcFacade = (*creditRequestService)(nil)

// CreateRequest queues a purchase request. The available credit snapshot is an
// audit field only; a farmer may submit a request that exceeds it and the
// binding check happens at approval.
func (s *creditRequestService) CreateRequest(ctx context.Context, farmerID string, req dto.CreateCreditRequestRequest) (*domain.CreditRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if req.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: unit price must be positive", apperrors.ErrValidation)
	}

	eligibility, err := s.creditSvc.CalculateEligibility(ctx, farmerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	request := domain.CreditRequest{
		RequestID:                uuid.NewString(),
		FarmerID:                 farmerID,
		ProductID:                req.ProductID,
		ProductName:              req.ProductName,
		Quantity:                 req.Quantity,
		UnitPrice:                req.UnitPrice,
		TotalAmount:              req.Quantity.Mul(req.UnitPrice),
		Status:                   domain.RequestPending,
		AvailableCreditAtRequest: eligibility.AvailableCredit,
		CreatedAt:                now,
	}

	if err := s.requestRepo.SaveRequest(ctx, request); err != nil {
		return nil, err
	}

	logger.Info("Credit request created",
		slog.String("request_id", request.RequestID),
		slog.String("farmer_id", farmerID),
		slog.String("total_amount", request.TotalAmount.String()),
	)
	return &request, nil
}

// ApproveRequest re-validates eligibility against current state under the
// profile lock and either draws down the balance or refuses with a structured
// result. A refusal leaves the request pending.
func (s *creditRequestService) ApproveRequest(ctx context.Context, requestID string, approverID string) (*dto.ApprovalResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		result, err := s.approveOnce(ctx, requestID, approverID)
		if err == nil {
			if result.Success {
				logger.Info("Credit request approved", slog.String("request_id", requestID), slog.String("approver_id", approverID))
			} else {
				logger.Info("Credit request approval refused", slog.String("request_id", requestID), slog.String("reason", result.ErrorMessage))
			}
			return result, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		lastErr = err
		logger.Warn("Conflict during request approval, retrying", slog.String("request_id", requestID), slog.Int("attempt", attempt+1))
	}
	return nil, apperrors.NewAppError(500, "request approval failed after repeated conflicts", lastErr)
}

func refusal(message string, details *dto.EnforcementDetails) *dto.ApprovalResult {
	return &dto.ApprovalResult{
		Success:            false,
		ErrorMessage:       message,
		EnforcementDetails: details,
	}
}

func (s *creditRequestService) approveOnce(ctx context.Context, requestID string, approverID string) (*dto.ApprovalResult, error) {
	tx, err := s.creditRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.creditRepo.Rollback(ctx, tx)

	request, err := s.requestRepo.FindRequestByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("credit request %s not found", requestID))
		}
		return nil, err
	}
	if request.Status != domain.RequestPending {
		return nil, fmt.Errorf("%w: request %s is no longer pending", apperrors.ErrInvalidState, requestID)
	}

	profile, err := s.creditRepo.FindProfileByFarmerIDForUpdate(ctx, tx, request.FarmerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return refusal("No credit profile exists for this farmer", &dto.EnforcementDetails{
				AvailableCredit: decimal.Zero,
				RequestedAmount: request.TotalAmount,
				Shortfall:       request.TotalAmount,
			}), nil
		}
		return nil, err
	}

	pending, err := s.collectionRepo.SumUnpaidAmountByFarmerIDInTx(ctx, tx, request.FarmerID)
	if err != nil {
		return nil, err
	}

	eligibility := creditcalc.ComputeEligibility(profile, pending)

	if profile.IsFrozen {
		return refusal("Credit profile is frozen", &dto.EnforcementDetails{
			AvailableCredit: decimal.Zero,
			RequestedAmount: request.TotalAmount,
			Shortfall:       request.TotalAmount,
			ProfileFrozen:   true,
		}), nil
	}

	if eligibility.AvailableCredit.LessThan(request.TotalAmount) {
		return refusal("Insufficient available credit", &dto.EnforcementDetails{
			AvailableCredit: eligibility.AvailableCredit,
			RequestedAmount: request.TotalAmount,
			Shortfall:       request.TotalAmount.Sub(eligibility.AvailableCredit),
		}), nil
	}

	now := time.Now().UTC()
	profile.CurrentBalance = profile.CurrentBalance.Sub(request.TotalAmount)
	profile.TotalUsed = profile.TotalUsed.Add(request.TotalAmount)
	profile.LastUpdatedAt = now
	profile.LastUpdatedBy = approverID

	if err := s.creditRepo.UpdateProfileInTx(ctx, tx, *profile); err != nil {
		return nil, err
	}

	txn := domain.CreditTransaction{
		TransactionID: uuid.NewString(),
		FarmerID:      request.FarmerID,
		Type:          domain.TxnRequestApproved,
		Amount:        request.TotalAmount,
		BalanceAfter:  profile.CurrentBalance,
		Description:   fmt.Sprintf("Request approved: %s x%s", request.ProductName, request.Quantity.String()),
		CreatedBy:     approverID,
		CreatedAt:     now,
	}
	if err := s.creditRepo.RecordTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	request.Status = domain.RequestApproved
	request.ApprovedBy = &approverID
	request.ApprovedAt = &now
	if err := s.requestRepo.ResolveRequestInTx(ctx, tx, *request); err != nil {
		return nil, err
	}

	if err := s.creditRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	response := dto.ToCreditRequestResponse(request)
	return &dto.ApprovalResult{Success: true, Request: &response}, nil
}

// RejectRequest marks a pending request rejected. The balance is untouched;
// an amount-zero ledger entry evidences the decision when a profile exists.
func (s *creditRequestService) RejectRequest(ctx context.Context, requestID string, approverID string, reason string) (*domain.CreditRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", apperrors.ErrValidation)
	}

	tx, err := s.creditRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.creditRepo.Rollback(ctx, tx)

	request, err := s.requestRepo.FindRequestByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("credit request %s not found", requestID))
		}
		return nil, err
	}
	if request.Status != domain.RequestPending {
		return nil, fmt.Errorf("%w: request %s is no longer pending", apperrors.ErrInvalidState, requestID)
	}

	now := time.Now().UTC()
	request.Status = domain.RequestRejected
	request.RejectionReason = &reason
	request.ApprovedBy = &approverID
	request.ApprovedAt = &now

	if err := s.requestRepo.ResolveRequestInTx(ctx, tx, *request); err != nil {
		return nil, err
	}

	profile, err := s.creditRepo.FindProfileByFarmerIDForUpdate(ctx, tx, request.FarmerID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if profile != nil {
		txn := domain.CreditTransaction{
			TransactionID: uuid.NewString(),
			FarmerID:      request.FarmerID,
			Type:          domain.TxnRequestRejected,
			Amount:        decimal.Zero,
			BalanceAfter:  profile.CurrentBalance,
			Description:   "Request rejected: " + reason,
			CreatedBy:     approverID,
			CreatedAt:     now,
		}
		if err := s.creditRepo.RecordTransactionInTx(ctx, tx, txn); err != nil {
			return nil, err
		}
	}

	if err := s.creditRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Credit request rejected", slog.String("request_id", requestID), slog.String("approver_id", approverID))
	return request, nil
}

// CancelRequest deletes a pending request on behalf of its owning farmer.
func (s *creditRequestService) CancelRequest(ctx context.Context, requestID string, actorFarmerID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.requestRepo.DeletePendingRequest(ctx, requestID, actorFarmerID); err != nil {
		return err
	}

	logger.Info("Credit request cancelled", slog.String("request_id", requestID), slog.String("farmer_id", actorFarmerID))
	return nil
}

// GetRequest retrieves a single request.
func (s *creditRequestService) GetRequest(ctx context.Context, requestID string) (*domain.CreditRequest, error) {
	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("credit request %s not found", requestID))
		}
		return nil, err
	}
	return request, nil
}

// ListRequestsByFarmer retrieves a farmer's requests, optionally filtered by status.
func (s *creditRequestService) ListRequestsByFarmer(ctx context.Context, farmerID string, params dto.ListCreditRequestsParams) ([]domain.CreditRequest, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.requestRepo.ListRequestsByFarmerID(ctx, farmerID, domain.CreditRequestStatus(params.Status), limit)
}

// ListPendingRequests retrieves the approver queue, oldest first.
func (s *creditRequestService) ListPendingRequests(ctx context.Context, limit int) ([]domain.CreditRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.requestRepo.ListRequestsByStatus(ctx, domain.RequestPending, limit)
}
