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

// PgxFarmerRepository persists the farmer registry.
type PgxFarmerRepository struct {
	pool *pgxpool.Pool
}

// NewFarmerRepository creates a new repository for farmer data.
func NewFarmerRepository(pool *pgxpool.Pool) portsrepo.FarmerRepositoryFacade {
	return &PgxFarmerRepository{pool: pool}
}

var _ portsrepo.FarmerRepositoryFacade = (*PgxFarmerRepository)(nil)

// SaveFarmer inserts a new farmer.
func (r *PgxFarmerRepository) SaveFarmer(ctx context.Context, farmer domain.Farmer) error {
	m := mapping.ToModelFarmer(farmer)

	query := `
		INSERT INTO farmers (farmer_id, name, phone, route, tier, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		m.FarmerID,
		m.Name,
		m.Phone,
		m.Route,
		m.Tier,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: farmer with ID %s already exists", apperrors.ErrDuplicate, m.FarmerID)
		}
		return apperrors.NewAppError(500, "failed to save farmer "+m.FarmerID, err)
	}
	return nil
}

// FindFarmerByID retrieves a farmer by ID.
func (r *PgxFarmerRepository) FindFarmerByID(ctx context.Context, farmerID string) (*domain.Farmer, error) {
	query := `
		SELECT farmer_id, name, phone, route, tier, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM farmers
		WHERE farmer_id = $1;
	`
	var m models.Farmer
	err := r.pool.QueryRow(ctx, query, farmerID).Scan(
		&m.FarmerID,
		&m.Name,
		&m.Phone,
		&m.Route,
		&m.Tier,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find farmer by ID "+farmerID, err)
	}

	farmer := mapping.ToDomainFarmer(m)
	return &farmer, nil
}

// ListFarmers retrieves registered farmers ordered by name.
func (r *PgxFarmerRepository) ListFarmers(ctx context.Context, limit int, offset int) ([]domain.Farmer, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT farmer_id, name, phone, route, tier, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM farmers
		ORDER BY name
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query farmers", err)
	}
	defer rows.Close()

	farmers := []domain.Farmer{}
	for rows.Next() {
		var m models.Farmer
		if err := rows.Scan(
			&m.FarmerID,
			&m.Name,
			&m.Phone,
			&m.Route,
			&m.Tier,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan farmer row", err)
		}
		farmers = append(farmers, mapping.ToDomainFarmer(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating farmer rows", err)
	}

	return farmers, nil
}
