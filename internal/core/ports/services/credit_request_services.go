package services

import (
	"context"

	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/maziwaops/dairy_credit_app/internal/dto"
)

// CreditRequestSvcFacade exposes the purchase request workflow:
// pending -> approved | rejected, plus owner-initiated cancellation while
// still pending.
type CreditRequestSvcFacade interface {
	// CreateRequest queues a purchase request for a farmer. The request may
	// exceed available credit; the binding check is deferred to approval.
	CreateRequest(ctx context.Context, farmerID string, req dto.CreateCreditRequestRequest) (*domain.CreditRequest, error)

	// ApproveRequest re-validates eligibility against current state and, on
	// success, atomically draws down the balance, appends a ledger entry and
	// marks the request approved. A refusal is a structured result, not an
	// error.
	ApproveRequest(ctx context.Context, requestID string, approverID string) (*dto.ApprovalResult, error)

	// RejectRequest marks a pending request rejected with a reason.
	RejectRequest(ctx context.Context, requestID string, approverID string, reason string) (*domain.CreditRequest, error)

	// CancelRequest deletes a request; permitted only for the owning farmer
	// and only while the request is still pending.
	CancelRequest(ctx context.Context, requestID string, actorFarmerID string) error

	// GetRequest retrieves a single request.
	GetRequest(ctx context.Context, requestID string) (*domain.CreditRequest, error)

	// ListRequestsByFarmer retrieves a farmer's requests.
	ListRequestsByFarmer(ctx context.Context, farmerID string, params dto.ListCreditRequestsParams) ([]domain.CreditRequest, error)

	// ListPendingRequests retrieves the approver queue, oldest first.
	ListPendingRequests(ctx context.Context, limit int) ([]domain.CreditRequest, error)
}
