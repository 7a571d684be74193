package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portsrepo "github.com/maziwaops/dairy_credit_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeTx satisfies pgx.Tx for tests that never touch the embedded interface.
type fakeTx struct {
	pgx.Tx
}

// --- Mock CreditRepository ---
type MockCreditRepository struct {
	mock.Mock
}

var _ portsrepo.CreditRepositoryFacade = (*MockCreditRepository)(nil)

func (m *MockCreditRepository) FindProfileByFarmerID(ctx context.Context, farmerID string) (*domain.CreditProfile, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditProfile), args.Error(1)
}

func (m *MockCreditRepository) SaveProfile(ctx context.Context, profile domain.CreditProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockCreditRepository) FindProfileByFarmerIDForUpdate(ctx context.Context, tx pgx.Tx, farmerID string) (*domain.CreditProfile, error) {
	args := m.Called(ctx, tx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditProfile), args.Error(1)
}

func (m *MockCreditRepository) UpdateProfileInTx(ctx context.Context, tx pgx.Tx, profile domain.CreditProfile) error {
	args := m.Called(ctx, tx, profile)
	return args.Error(0)
}

func (m *MockCreditRepository) RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.CreditTransaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockCreditRepository) ListTransactionsByFarmerID(ctx context.Context, farmerID string, limit int, nextToken *string) ([]domain.CreditTransaction, *string, error) {
	args := m.Called(ctx, farmerID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.CreditTransaction), returnedNextToken, args.Error(2)
}

func (m *MockCreditRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockCreditRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCreditRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock CreditRequestRepository ---
type MockCreditRequestRepository struct {
	mock.Mock
}

var _ portsrepo.CreditRequestRepositoryFacade = (*MockCreditRequestRepository)(nil)

func (m *MockCreditRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.CreditRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditRequest), args.Error(1)
}

func (m *MockCreditRequestRepository) FindRequestByIDForUpdate(ctx context.Context, tx pgx.Tx, requestID string) (*domain.CreditRequest, error) {
	args := m.Called(ctx, tx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditRequest), args.Error(1)
}

func (m *MockCreditRequestRepository) ListRequestsByFarmerID(ctx context.Context, farmerID string, status domain.CreditRequestStatus, limit int) ([]domain.CreditRequest, error) {
	args := m.Called(ctx, farmerID, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditRequest), args.Error(1)
}

func (m *MockCreditRequestRepository) ListRequestsByStatus(ctx context.Context, status domain.CreditRequestStatus, limit int) ([]domain.CreditRequest, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditRequest), args.Error(1)
}

func (m *MockCreditRequestRepository) SaveRequest(ctx context.Context, request domain.CreditRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockCreditRequestRepository) ResolveRequestInTx(ctx context.Context, tx pgx.Tx, request domain.CreditRequest) error {
	args := m.Called(ctx, tx, request)
	return args.Error(0)
}

func (m *MockCreditRequestRepository) DeletePendingRequest(ctx context.Context, requestID string, farmerID string) error {
	args := m.Called(ctx, requestID, farmerID)
	return args.Error(0)
}

// --- Mock CollectionRepository ---
type MockCollectionRepository struct {
	mock.Mock
}

var _ portsrepo.CollectionRepositoryFacade = (*MockCollectionRepository)(nil)

func (m *MockCollectionRepository) SumUnpaidAmountByFarmerID(ctx context.Context, farmerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCollectionRepository) SumUnpaidAmountByFarmerIDInTx(ctx context.Context, tx pgx.Tx, farmerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, farmerID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCollectionRepository) ListCollectionsByFarmerID(ctx context.Context, farmerID string, limit int) ([]domain.Collection, error) {
	args := m.Called(ctx, farmerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Collection), args.Error(1)
}

func (m *MockCollectionRepository) SaveCollection(ctx context.Context, collection domain.Collection) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) MarkCollectionPaid(ctx context.Context, collectionID string, userID string, now time.Time) error {
	args := m.Called(ctx, collectionID, userID, now)
	return args.Error(0)
}

// --- Mock FarmerRepository ---
type MockFarmerRepository struct {
	mock.Mock
}

var _ portsrepo.FarmerRepositoryFacade = (*MockFarmerRepository)(nil)

func (m *MockFarmerRepository) SaveFarmer(ctx context.Context, farmer domain.Farmer) error {
	args := m.Called(ctx, farmer)
	return args.Error(0)
}

func (m *MockFarmerRepository) FindFarmerByID(ctx context.Context, farmerID string) (*domain.Farmer, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Farmer), args.Error(1)
}

func (m *MockFarmerRepository) ListFarmers(ctx context.Context, limit int, offset int) ([]domain.Farmer, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Farmer), args.Error(1)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
