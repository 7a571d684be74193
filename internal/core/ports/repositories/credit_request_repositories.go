package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
)

// CreditRequestReader defines read operations for credit request data.
type CreditRequestReader interface {
	// FindRequestByID retrieves a request, or apperrors.ErrNotFound.
	FindRequestByID(ctx context.Context, requestID string) (*domain.CreditRequest, error)

	// FindRequestByIDForUpdate retrieves the request row with an exclusive
	// lock. Must be called within a transaction.
	FindRequestByIDForUpdate(ctx context.Context, tx pgx.Tx, requestID string) (*domain.CreditRequest, error)

	// ListRequestsByFarmerID retrieves a farmer's requests, newest first,
	// optionally filtered by status (empty string means all).
	ListRequestsByFarmerID(ctx context.Context, farmerID string, status domain.CreditRequestStatus, limit int) ([]domain.CreditRequest, error)

	// ListRequestsByStatus retrieves requests across farmers in a given
	// status, oldest first, for the approver queue.
	ListRequestsByStatus(ctx context.Context, status domain.CreditRequestStatus, limit int) ([]domain.CreditRequest, error)
}

// CreditRequestWriter defines write operations for credit request data.
type CreditRequestWriter interface {
	// SaveRequest inserts a new request in PENDING status.
	SaveRequest(ctx context.Context, request domain.CreditRequest) error

	// ResolveRequestInTx transitions a PENDING request to APPROVED or
	// REJECTED, setting the approval/rejection columns from the given
	// request. The update is guarded by WHERE status = 'PENDING'; returns
	// apperrors.ErrInvalidState if the request was already resolved and
	// apperrors.ErrNotFound if it does not exist.
	ResolveRequestInTx(ctx context.Context, tx pgx.Tx, request domain.CreditRequest) error

	// DeletePendingRequest removes a request only while it is PENDING and
	// owned by the given farmer. Returns apperrors.ErrInvalidState if the
	// request exists but is not pending, apperrors.ErrForbidden if it is
	// owned by another farmer, and apperrors.ErrNotFound otherwise.
	DeletePendingRequest(ctx context.Context, requestID string, farmerID string) error
}

// CreditRequestRepositoryFacade combines all credit request operations.
type CreditRequestRepositoryFacade interface {
	CreditRequestReader
	CreditRequestWriter
}
