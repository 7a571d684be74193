package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maziwaops/dairy_credit_app/internal/apperrors"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/maziwaops/dairy_credit_app/internal/core/services"
	"github.com/maziwaops/dairy_credit_app/internal/dto"
	"github.com/maziwaops/dairy_credit_app/internal/platform/config"
	"github.com/maziwaops/dairy_credit_app/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret-key-for-unit-tests-only",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "dairy-credit-app-test",
	}
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	farmerRepo := new(MockFarmerRepository)
	svc := services.NewAuthService(userRepo, farmerRepo, testConfig())

	hash, err := utils.HashPassword("correct horse battery")
	require.NoError(t, err)

	farmerID := uuid.NewString()
	user := &domain.User{
		UserID:       uuid.NewString(),
		Name:         "Achieng",
		Email:        "achieng@example.com",
		PasswordHash: hash,
		Role:         domain.RoleFarmer,
		FarmerID:     farmerID,
		IsActive:     true,
	}
	userRepo.On("FindUserByEmail", mock.Anything, "achieng@example.com").Return(user, nil)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "achieng@example.com", Password: "correct horse battery"})

	require.NoError(t, err)
	assert.Equal(t, user.UserID, resp.UserID)
	assert.Equal(t, string(domain.RoleFarmer), resp.Role)
	assert.Equal(t, farmerID, resp.FarmerID)

	claims, err := utils.ParseAndValidateJWT(resp.Token, "test-secret-key-for-unit-tests-only")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.Subject)
	assert.Equal(t, string(domain.RoleFarmer), claims.Role)
	assert.Equal(t, farmerID, claims.FarmerID)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	farmerRepo := new(MockFarmerRepository)
	svc := services.NewAuthService(userRepo, farmerRepo, testConfig())

	hash, err := utils.HashPassword("the real password")
	require.NoError(t, err)

	user := &domain.User{
		UserID:       uuid.NewString(),
		Email:        "staff@example.com",
		PasswordHash: hash,
		Role:         domain.RoleStaff,
		IsActive:     true,
	}
	userRepo.On("FindUserByEmail", mock.Anything, "staff@example.com").Return(user, nil)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "staff@example.com", Password: "a guess"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailGivesSameError(t *testing.T) {
	userRepo := new(MockUserRepository)
	farmerRepo := new(MockFarmerRepository)
	svc := services.NewAuthService(userRepo, farmerRepo, testConfig())

	userRepo.On("FindUserByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegisterUser_FarmerRoleRequiresFarmerID(t *testing.T) {
	userRepo := new(MockUserRepository)
	farmerRepo := new(MockFarmerRepository)
	svc := services.NewAuthService(userRepo, farmerRepo, testConfig())

	user, err := svc.RegisterUser(context.Background(), dto.RegisterUserRequest{
		Name:     "Otieno",
		Email:    "otieno@example.com",
		Password: "long enough pw",
		Role:     string(domain.RoleFarmer),
	}, uuid.NewString())

	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegisterUser_StaffMayNotCarryFarmerID(t *testing.T) {
	userRepo := new(MockUserRepository)
	farmerRepo := new(MockFarmerRepository)
	svc := services.NewAuthService(userRepo, farmerRepo, testConfig())

	user, err := svc.RegisterUser(context.Background(), dto.RegisterUserRequest{
		Name:     "Otieno",
		Email:    "otieno@example.com",
		Password: "long enough pw",
		Role:     string(domain.RoleStaff),
		FarmerID: uuid.NewString(),
	}, uuid.NewString())

	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegisterUser_HashesPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	farmerRepo := new(MockFarmerRepository)
	svc := services.NewAuthService(userRepo, farmerRepo, testConfig())

	userRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.PasswordHash != "long enough pw" && utils.CheckPasswordHash("long enough pw", u.PasswordHash)
	})).Return(nil)

	user, err := svc.RegisterUser(context.Background(), dto.RegisterUserRequest{
		Name:     "Nekesa",
		Email:    "nekesa@example.com",
		Password: "long enough pw",
		Role:     string(domain.RoleAdmin),
	}, uuid.NewString())

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.True(t, user.IsActive)
	userRepo.AssertExpectations(t)
}
