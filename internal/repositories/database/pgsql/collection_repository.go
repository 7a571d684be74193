package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maziwaops/dairy_credit_app/internal/apperrors"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portsrepo "github.com/maziwaops/dairy_credit_app/internal/core/ports/repositories"
	"github.com/maziwaops/dairy_credit_app/internal/models"
	"github.com/maziwaops/dairy_credit_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

// PgxCollectionRepository persists milk collection records.
type PgxCollectionRepository struct {
	BaseRepository
}

// NewCollectionRepository creates a new repository for collection data.
func NewCollectionRepository(pool *pgxpool.Pool) portsrepo.CollectionRepositoryFacade {
	return &PgxCollectionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CollectionRepositoryFacade = (*PgxCollectionRepository)(nil)

const sumUnpaidQuery = `
	SELECT COALESCE(SUM(total_amount), 0)
	FROM collections
	WHERE farmer_id = $1 AND status != 'PAID';
`

// SumUnpaidAmountByFarmerID returns the unpaid collection total for a farmer.
func (r *PgxCollectionRepository) SumUnpaidAmountByFarmerID(ctx context.Context, farmerID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, sumUnpaidQuery, farmerID).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum unpaid collections for farmer "+farmerID, err)
	}
	return sum, nil
}

// SumUnpaidAmountByFarmerIDInTx is the same read inside an open transaction,
// used for approval-time re-validation under the profile lock.
func (r *PgxCollectionRepository) SumUnpaidAmountByFarmerIDInTx(ctx context.Context, tx pgx.Tx, farmerID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := tx.QueryRow(ctx, sumUnpaidQuery, farmerID).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum unpaid collections for farmer "+farmerID, err)
	}
	return sum, nil
}

// SaveCollection inserts a new collection record.
func (r *PgxCollectionRepository) SaveCollection(ctx context.Context, collection domain.Collection) error {
	m := mapping.ToModelCollection(collection)

	query := `
		INSERT INTO collections (
			collection_id, farmer_id, quantity_litres, rate_per_litre, total_amount,
			status, collected_at, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CollectionID,
		m.FarmerID,
		m.QuantityLitres,
		m.RatePerLitre,
		m.TotalAmount,
		m.Status,
		m.CollectedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: collection %s already exists", apperrors.ErrDuplicate, m.CollectionID)
		}
		return apperrors.NewAppError(500, "failed to save collection "+m.CollectionID, err)
	}
	return nil
}

// MarkCollectionPaid flips a collection's settlement status to PAID.
func (r *PgxCollectionRepository) MarkCollectionPaid(ctx context.Context, collectionID string, userID string, now time.Time) error {
	query := `
		UPDATE collections
		SET status = 'PAID', last_updated_at = $2, last_updated_by = $3
		WHERE collection_id = $1 AND status != 'PAID';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, collectionID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark collection paid "+collectionID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if checkErr := r.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM collections WHERE collection_id = $1);`, collectionID).Scan(&exists); checkErr != nil {
			return apperrors.NewAppError(500, "failed to check collection existence for "+collectionID, checkErr)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: collection %s is already paid", apperrors.ErrInvalidState, collectionID)
	}

	return nil
}

// ListCollectionsByFarmerID retrieves a farmer's collections, newest first.
func (r *PgxCollectionRepository) ListCollectionsByFarmerID(ctx context.Context, farmerID string, limit int) ([]domain.Collection, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT collection_id, farmer_id, quantity_litres, rate_per_litre, total_amount,
		       status, collected_at, created_at, created_by, last_updated_at, last_updated_by
		FROM collections
		WHERE farmer_id = $1
		ORDER BY collected_at DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, farmerID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query collections for farmer "+farmerID, err)
	}
	defer rows.Close()

	collections := []domain.Collection{}
	for rows.Next() {
		var m models.Collection
		if err := rows.Scan(
			&m.CollectionID,
			&m.FarmerID,
			&m.QuantityLitres,
			&m.RatePerLitre,
			&m.TotalAmount,
			&m.Status,
			&m.CollectedAt,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan collection row for farmer "+farmerID, err)
		}
		collections = append(collections, mapping.ToDomainCollection(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating collection rows for farmer "+farmerID, err)
	}

	return collections, nil
}
