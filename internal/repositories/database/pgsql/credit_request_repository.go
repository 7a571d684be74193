package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maziwaops/dairy_credit_app/internal/apperrors"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portsrepo "github.com/maziwaops/dairy_credit_app/internal/core/ports/repositories"
	"github.com/maziwaops/dairy_credit_app/internal/models"
	"github.com/maziwaops/dairy_credit_app/internal/utils/mapping"
)

// PgxCreditRequestRepository persists purchase requests.
type PgxCreditRequestRepository struct {
	BaseRepository
}

// NewCreditRequestRepository creates a new repository for credit request data.
func NewCreditRequestRepository(pool *pgxpool.Pool) portsrepo.CreditRequestRepositoryFacade {
	return &PgxCreditRequestRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CreditRequestRepositoryFacade = (*PgxCreditRequestRepository)(nil)

const creditRequestColumns = `
	request_id, farmer_id, product_id, product_name, quantity, unit_price,
	total_amount, status, available_credit_at_request, approved_by,
	approved_at, rejection_reason, created_at`

func scanCreditRequest(row pgx.Row) (*models.CreditRequest, error) {
	var m models.CreditRequest
	err := row.Scan(
		&m.RequestID,
		&m.FarmerID,
		&m.ProductID,
		&m.ProductName,
		&m.Quantity,
		&m.UnitPrice,
		&m.TotalAmount,
		&m.Status,
		&m.AvailableCreditAtRequest,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.RejectionReason,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveRequest inserts a new request in PENDING status.
func (r *PgxCreditRequestRepository) SaveRequest(ctx context.Context, request domain.CreditRequest) error {
	m := mapping.ToModelCreditRequest(request)

	query := `
		INSERT INTO credit_requests (
			request_id, farmer_id, product_id, product_name, quantity, unit_price,
			total_amount, status, available_credit_at_request, approved_by,
			approved_at, rejection_reason, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RequestID,
		m.FarmerID,
		m.ProductID,
		m.ProductName,
		m.Quantity,
		m.UnitPrice,
		m.TotalAmount,
		m.Status,
		m.AvailableCreditAtRequest,
		m.ApprovedBy,
		m.ApprovedAt,
		m.RejectionReason,
		m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: credit request %s already exists", apperrors.ErrDuplicate, m.RequestID)
		}
		return apperrors.NewAppError(500, "failed to save credit request "+m.RequestID, err)
	}
	return nil
}

// FindRequestByID retrieves a request by its ID.
func (r *PgxCreditRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.CreditRequest, error) {
	query := `SELECT ` + creditRequestColumns + ` FROM credit_requests WHERE request_id = $1;`

	m, err := scanCreditRequest(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find credit request "+requestID, err)
	}

	request := mapping.ToDomainCreditRequest(*m)
	return &request, nil
}

// FindRequestByIDForUpdate retrieves the request row with an exclusive lock.
// Must run inside a transaction.
func (r *PgxCreditRequestRepository) FindRequestByIDForUpdate(ctx context.Context, tx pgx.Tx, requestID string) (*domain.CreditRequest, error) {
	query := `SELECT ` + creditRequestColumns + ` FROM credit_requests WHERE request_id = $1 FOR UPDATE;`

	m, err := scanCreditRequest(tx.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock credit request "+requestID, err)
	}

	request := mapping.ToDomainCreditRequest(*m)
	return &request, nil
}

// ResolveRequestInTx transitions a PENDING request to its terminal status.
// Guarded by WHERE status = 'PENDING' so a request resolves exactly once.
func (r *PgxCreditRequestRepository) ResolveRequestInTx(ctx context.Context, tx pgx.Tx, request domain.CreditRequest) error {
	m := mapping.ToModelCreditRequest(request)

	query := `
		UPDATE credit_requests
		SET status = $2,
		    approved_by = $3,
		    approved_at = $4,
		    rejection_reason = $5
		WHERE request_id = $1 AND status = 'PENDING';
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.RequestID,
		m.Status,
		m.ApprovedBy,
		m.ApprovedAt,
		m.RejectionReason,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to resolve credit request "+m.RequestID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if checkErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM credit_requests WHERE request_id = $1);`, m.RequestID).Scan(&exists); checkErr != nil {
			return apperrors.NewAppError(500, "failed to check credit request existence for "+m.RequestID, checkErr)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: credit request %s is no longer pending", apperrors.ErrInvalidState, m.RequestID)
	}

	return nil
}

// DeletePendingRequest removes a request while it is still PENDING and owned
// by the given farmer.
func (r *PgxCreditRequestRepository) DeletePendingRequest(ctx context.Context, requestID string, farmerID string) error {
	query := `DELETE FROM credit_requests WHERE request_id = $1 AND farmer_id = $2 AND status = 'PENDING';`

	cmdTag, err := r.Pool.Exec(ctx, query, requestID, farmerID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete credit request "+requestID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Work out which precondition failed.
		existing, findErr := r.FindRequestByID(ctx, requestID)
		if findErr != nil {
			return findErr // ErrNotFound or store error
		}
		if existing.FarmerID != farmerID {
			return fmt.Errorf("%w: credit request %s belongs to another farmer", apperrors.ErrForbidden, requestID)
		}
		return fmt.Errorf("%w: only pending requests can be cancelled", apperrors.ErrInvalidState)
	}

	return nil
}

// ListRequestsByFarmerID retrieves a farmer's requests, newest first.
func (r *PgxCreditRequestRepository) ListRequestsByFarmerID(ctx context.Context, farmerID string, status domain.CreditRequestStatus, limit int) ([]domain.CreditRequest, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + creditRequestColumns + ` FROM credit_requests WHERE farmer_id = $1`
	args := []interface{}{farmerID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d;`, limit)

	return r.queryRequests(ctx, query, args...)
}

// ListRequestsByStatus retrieves requests in a status across farmers, oldest
// first, for the approver queue.
func (r *PgxCreditRequestRepository) ListRequestsByStatus(ctx context.Context, status domain.CreditRequestStatus, limit int) ([]domain.CreditRequest, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + creditRequestColumns + ` FROM credit_requests WHERE status = $1 ORDER BY created_at ASC LIMIT $2;`
	return r.queryRequests(ctx, query, string(status), limit)
}

func (r *PgxCreditRequestRepository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]domain.CreditRequest, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query credit requests", err)
	}
	defer rows.Close()

	requests := []models.CreditRequest{}
	for rows.Next() {
		var m models.CreditRequest
		if err := rows.Scan(
			&m.RequestID,
			&m.FarmerID,
			&m.ProductID,
			&m.ProductName,
			&m.Quantity,
			&m.UnitPrice,
			&m.TotalAmount,
			&m.Status,
			&m.AvailableCreditAtRequest,
			&m.ApprovedBy,
			&m.ApprovedAt,
			&m.RejectionReason,
			&m.CreatedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan credit request row", err)
		}
		requests = append(requests, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating credit request rows", err)
	}

	return mapping.ToDomainCreditRequestSlice(requests), nil
}
