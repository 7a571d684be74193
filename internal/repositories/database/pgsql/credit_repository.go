package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maziwaops/dairy_credit_app/internal/apperrors"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portsrepo "github.com/maziwaops/dairy_credit_app/internal/core/ports/repositories"
	"github.com/maziwaops/dairy_credit_app/internal/models"
	"github.com/maziwaops/dairy_credit_app/internal/utils/mapping"
	"github.com/maziwaops/dairy_credit_app/internal/utils/pagination"
)

// PgxCreditRepository persists credit profiles and their append-only ledger.
type PgxCreditRepository struct {
	BaseRepository
}

// NewCreditRepository creates a new repository for credit profile and ledger data.
func NewCreditRepository(pool *pgxpool.Pool) portsrepo.CreditRepositoryFacade {
	return &PgxCreditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CreditRepositoryFacade = (*PgxCreditRepository)(nil)

const creditProfileColumns = `
	farmer_id, tier, limit_percentage, max_credit_amount, current_balance,
	total_used, pending_deductions, is_frozen, freeze_reason, version,
	created_at, created_by, last_updated_at, last_updated_by`

func scanCreditProfile(row pgx.Row) (*models.CreditProfile, error) {
	var m models.CreditProfile
	err := row.Scan(
		&m.FarmerID,
		&m.Tier,
		&m.LimitPercentage,
		&m.MaxCreditAmount,
		&m.CurrentBalance,
		&m.TotalUsed,
		&m.PendingDeductions,
		&m.IsFrozen,
		&m.FreezeReason,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindProfileByFarmerID retrieves a farmer's credit profile.
func (r *PgxCreditRepository) FindProfileByFarmerID(ctx context.Context, farmerID string) (*domain.CreditProfile, error) {
	query := `SELECT ` + creditProfileColumns + ` FROM credit_profiles WHERE farmer_id = $1;`

	m, err := scanCreditProfile(r.Pool.QueryRow(ctx, query, farmerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find credit profile for farmer "+farmerID, err)
	}

	profile := mapping.ToDomainCreditProfile(*m)
	return &profile, nil
}

// FindProfileByFarmerIDForUpdate retrieves the profile row with an exclusive
// per-farmer lock. Must run inside a transaction; the lock is held until
// commit or rollback, serializing concurrent grant and approval attempts.
func (r *PgxCreditRepository) FindProfileByFarmerIDForUpdate(ctx context.Context, tx pgx.Tx, farmerID string) (*domain.CreditProfile, error) {
	query := `SELECT ` + creditProfileColumns + ` FROM credit_profiles WHERE farmer_id = $1 FOR UPDATE;`

	m, err := scanCreditProfile(tx.QueryRow(ctx, query, farmerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock credit profile for farmer "+farmerID, err)
	}

	profile := mapping.ToDomainCreditProfile(*m)
	return &profile, nil
}

// SaveProfile inserts a new credit profile.
func (r *PgxCreditRepository) SaveProfile(ctx context.Context, profile domain.CreditProfile) error {
	m := mapping.ToModelCreditProfile(profile)

	query := `
		INSERT INTO credit_profiles (
			farmer_id, tier, limit_percentage, max_credit_amount, current_balance,
			total_used, pending_deductions, is_frozen, freeze_reason, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.FarmerID,
		m.Tier,
		m.LimitPercentage,
		m.MaxCreditAmount,
		m.CurrentBalance,
		m.TotalUsed,
		m.PendingDeductions,
		m.IsFrozen,
		m.FreezeReason,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: credit profile for farmer %s already exists", apperrors.ErrDuplicate, m.FarmerID)
		}
		return apperrors.NewAppError(500, "failed to save credit profile for farmer "+m.FarmerID, err)
	}
	return nil
}

// UpdateProfileInTx writes all mutable profile columns, guarded by the row
// version. The stored version is incremented; a mismatch means another writer
// got there first, surfaced as apperrors.ErrConflict so the caller can
// re-read and retry its check.
func (r *PgxCreditRepository) UpdateProfileInTx(ctx context.Context, tx pgx.Tx, profile domain.CreditProfile) error {
	m := mapping.ToModelCreditProfile(profile)

	query := `
		UPDATE credit_profiles
		SET tier = $2,
		    limit_percentage = $3,
		    max_credit_amount = $4,
		    current_balance = $5,
		    total_used = $6,
		    pending_deductions = $7,
		    is_frozen = $8,
		    freeze_reason = $9,
		    version = version + 1,
		    last_updated_at = $10,
		    last_updated_by = $11
		WHERE farmer_id = $1 AND version = $12;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.FarmerID,
		m.Tier,
		m.LimitPercentage,
		m.MaxCreditAmount,
		m.CurrentBalance,
		m.TotalUsed,
		m.PendingDeductions,
		m.IsFrozen,
		m.FreezeReason,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update credit profile for farmer "+m.FarmerID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Either the row vanished or the version moved; distinguish so the
		// caller knows whether a retry can help.
		var exists bool
		if checkErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM credit_profiles WHERE farmer_id = $1);`, m.FarmerID).Scan(&exists); checkErr != nil {
			return apperrors.NewAppError(500, "failed to check credit profile existence for farmer "+m.FarmerID, checkErr)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: credit profile for farmer %s was modified concurrently", apperrors.ErrConflict, m.FarmerID)
	}

	return nil
}

// RecordTransactionInTx appends a ledger entry. Insert-only: the table has no
// update path in this repository.
func (r *PgxCreditRepository) RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.CreditTransaction) error {
	m := mapping.ToModelCreditTransaction(txn)

	query := `
		INSERT INTO credit_transactions (
			transaction_id, farmer_id, type, amount, balance_after,
			description, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.FarmerID,
		m.Type,
		m.Amount,
		m.BalanceAfter,
		m.Description,
		m.CreatedBy,
		m.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to record credit transaction "+m.TransactionID, err)
	}
	return nil
}

// ListTransactionsByFarmerID retrieves a page of ledger entries for a farmer,
// newest first, using keyset pagination on (created_at, transaction_id).
func (r *PgxCreditRepository) ListTransactionsByFarmerID(ctx context.Context, farmerID string, limit int, nextToken *string) ([]domain.CreditTransaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT transaction_id, farmer_id, type, amount, balance_after,
		       description, created_by, created_at
		FROM credit_transactions
		WHERE farmer_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`

	args := []interface{}{farmerID}
	query := baseQuery

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}

	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query credit transactions for farmer "+farmerID, err)
	}
	defer rows.Close()

	transactions := make([]models.CreditTransaction, 0, fetchLimit)
	for rows.Next() {
		var t models.CreditTransaction
		if err := rows.Scan(
			&t.TransactionID,
			&t.FarmerID,
			&t.Type,
			&t.Amount,
			&t.BalanceAfter,
			&t.Description,
			&t.CreatedBy,
			&t.CreatedAt,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan credit transaction row for farmer "+farmerID, err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating credit transaction rows for farmer "+farmerID, err)
	}

	var nextTokenVal *string
	results := transactions
	if len(transactions) > limit {
		last := transactions[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		results = transactions[:limit]
	}

	return mapping.ToDomainCreditTransactionSlice(results), nextTokenVal, nil
}
