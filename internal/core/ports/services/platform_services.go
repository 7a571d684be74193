package services

import (
	"context"

	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/maziwaops/dairy_credit_app/internal/dto"
)

// FarmerSvcFacade exposes the minimal farmer registry the credit engine
// depends on.
type FarmerSvcFacade interface {
	CreateFarmer(ctx context.Context, req dto.CreateFarmerRequest, creatorUserID string) (*domain.Farmer, error)
	GetFarmerByID(ctx context.Context, farmerID string) (*domain.Farmer, error)
	ListFarmers(ctx context.Context, limit int, offset int) ([]domain.Farmer, error)
}

// CollectionSvcFacade exposes milk collection logging, the source of the
// pending payments total.
type CollectionSvcFacade interface {
	LogCollection(ctx context.Context, req dto.CreateCollectionRequest, creatorUserID string) (*domain.Collection, error)
	ListCollectionsByFarmer(ctx context.Context, farmerID string, limit int) ([]domain.Collection, error)
	MarkCollectionPaid(ctx context.Context, collectionID string, userID string) error
}

// AuthSvcFacade exposes login and user registration.
type AuthSvcFacade interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest, creatorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
