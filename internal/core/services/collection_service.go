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
	"github.com/shopspring/decimal"
)

// collectionService logs milk collections, the source of pending payments.
type collectionService struct {
	collectionRepo portsrepo.CollectionRepositoryFacade
	farmerRepo     portsrepo.FarmerRepositoryFacade
}

// NewCollectionService creates a new CollectionService.
func NewCollectionService(collectionRepo portsrepo.CollectionRepositoryFacade, farmerRepo portsrepo.FarmerRepositoryFacade) portssvc.CollectionSvcFacade {
	return &collectionService{
		collectionRepo: collectionRepo,
		farmerRepo:     farmerRepo,
	}
}

var _ portssvc.CollectionSvcFacade = (*collectionService)(nil)

// LogCollection records one milk delivery. TotalAmount is derived, never
// client-supplied.
func (s *collectionService) LogCollection(ctx context.Context, req dto.CreateCollectionRequest, creatorUserID string) (*domain.Collection, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.QuantityLitres.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if req.RatePerLitre.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: rate per litre must be positive", apperrors.ErrValidation)
	}

	if _, err := s.farmerRepo.FindFarmerByID(ctx, req.FarmerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: farmer %s not found", apperrors.ErrValidation, req.FarmerID)
		}
		return nil, err
	}

	now := time.Now().UTC()
	collectedAt := now
	if req.CollectedAt != nil {
		collectedAt = req.CollectedAt.UTC()
	}

	collection := domain.Collection{
		CollectionID:   uuid.NewString(),
		FarmerID:       req.FarmerID,
		QuantityLitres: req.QuantityLitres,
		RatePerLitre:   req.RatePerLitre,
		TotalAmount:    req.QuantityLitres.Mul(req.RatePerLitre),
		Status:         domain.CollectionUnpaid,
		CollectedAt:    collectedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.collectionRepo.SaveCollection(ctx, collection); err != nil {
		return nil, err
	}

	logger.Info("Collection logged",
		slog.String("collection_id", collection.CollectionID),
		slog.String("farmer_id", collection.FarmerID),
		slog.String("total_amount", collection.TotalAmount.String()),
	)
	return &collection, nil
}

// ListCollectionsByFarmer retrieves a farmer's collections, newest first.
func (s *collectionService) ListCollectionsByFarmer(ctx context.Context, farmerID string, limit int) ([]domain.Collection, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.collectionRepo.ListCollectionsByFarmerID(ctx, farmerID, limit)
}

// MarkCollectionPaid settles a collection, removing it from the pending
// payments total future eligibility reads see.
func (s *collectionService) MarkCollectionPaid(ctx context.Context, collectionID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.collectionRepo.MarkCollectionPaid(ctx, collectionID, userID, time.Now().UTC()); err != nil {
		return err
	}

	logger.Info("Collection marked paid", slog.String("collection_id", collectionID))
	return nil
}
