package repositories

import (
	"context"

	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
)

// FarmerRepositoryFacade defines persistence operations for farmers.
type FarmerRepositoryFacade interface {
	// SaveFarmer inserts a new farmer.
	SaveFarmer(ctx context.Context, farmer domain.Farmer) error

	// FindFarmerByID retrieves a farmer, or apperrors.ErrNotFound.
	FindFarmerByID(ctx context.Context, farmerID string) (*domain.Farmer, error)

	// ListFarmers retrieves registered farmers.
	ListFarmers(ctx context.Context, limit int, offset int) ([]domain.Farmer, error)
}
