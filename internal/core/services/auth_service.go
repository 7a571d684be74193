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
	"github.com/maziwaops/dairy_credit_app/internal/platform/config"
	"github.com/maziwaops/dairy_credit_app/internal/utils"
)

// ErrInvalidCredentials is returned on a failed login. The message never says
// whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// authService handles login and user registration.
type authService struct {
	userRepo   portsrepo.UserRepositoryFacade
	farmerRepo portsrepo.FarmerRepositoryFacade
	cfg        *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, farmerRepo portsrepo.FarmerRepositoryFacade, cfg *config.Config) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:   userRepo,
		farmerRepo: farmerRepo,
		cfg:        cfg,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies credentials and issues a JWT.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		logger.Warn("Login attempt for inactive user", slog.String("user_id", user.UserID))
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.UserID, string(user.Role), user.FarmerID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate token", err)
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &dto.LoginResponse{
		Token:    token,
		UserID:   user.UserID,
		Name:     user.Name,
		Role:     string(user.Role),
		FarmerID: user.FarmerID,
	}, nil
}

// RegisterUser creates a platform login. Farmer logins must reference an
// existing farmer.
func (s *authService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest, creatorUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	role := domain.UserRole(req.Role)
	if role == domain.RoleFarmer {
		if req.FarmerID == "" {
			return nil, fmt.Errorf("%w: farmerID is required for farmer logins", apperrors.ErrValidation)
		}
		if _, err := s.farmerRepo.FindFarmerByID(ctx, req.FarmerID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: farmer %s not found", apperrors.ErrValidation, req.FarmerID)
			}
			return nil, err
		}
	} else if req.FarmerID != "" {
		return nil, fmt.Errorf("%w: only farmer logins may carry a farmerID", apperrors.ErrValidation)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to hash password", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		FarmerID:     req.FarmerID,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User registered", slog.String("user_id", user.UserID), slog.String("role", string(role)))
	return &user, nil
}

// GetUserByID retrieves a user.
func (s *authService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
		}
		return nil, err
	}
	return user, nil
}
