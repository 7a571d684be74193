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
)

// farmerService maintains the minimal farmer registry.
type farmerService struct {
	farmerRepo portsrepo.FarmerRepositoryFacade
}

// NewFarmerService creates a new FarmerService.
func NewFarmerService(farmerRepo portsrepo.FarmerRepositoryFacade) portssvc.FarmerSvcFacade {
	return &farmerService{farmerRepo: farmerRepo}
}

var _ portssvc.FarmerSvcFacade = (*farmerService)(nil)

// CreateFarmer registers a new farmer. A farmer without an explicit tier
// starts as NEW.
func (s *farmerService) CreateFarmer(ctx context.Context, req dto.CreateFarmerRequest, creatorUserID string) (*domain.Farmer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tier := domain.FarmerTier(req.Tier)
	if tier == "" {
		tier = domain.TierNew
	}

	now := time.Now().UTC()
	farmer := domain.Farmer{
		FarmerID: uuid.NewString(),
		Name:     req.Name,
		Phone:    req.Phone,
		Route:    req.Route,
		Tier:     tier,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.farmerRepo.SaveFarmer(ctx, farmer); err != nil {
		return nil, err
	}

	logger.Info("Farmer registered", slog.String("farmer_id", farmer.FarmerID), slog.String("tier", string(tier)))
	return &farmer, nil
}

// GetFarmerByID retrieves a farmer.
func (s *farmerService) GetFarmerByID(ctx context.Context, farmerID string) (*domain.Farmer, error) {
	farmer, err := s.farmerRepo.FindFarmerByID(ctx, farmerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("farmer %s not found", farmerID))
		}
		return nil, err
	}
	return farmer, nil
}

// ListFarmers retrieves registered farmers.
func (s *farmerService) ListFarmers(ctx context.Context, limit int, offset int) ([]domain.Farmer, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.farmerRepo.ListFarmers(ctx, limit, offset)
}
