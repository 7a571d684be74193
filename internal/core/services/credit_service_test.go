package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maziwaops/dairy_credit_app/internal/apperrors"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portssvc "github.com/maziwaops/dairy_credit_app/internal/core/ports/services"
	"github.com/maziwaops/dairy_credit_app/internal/core/services"
	"github.com/maziwaops/dairy_credit_app/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func testPolicy() portssvc.PolicyProvider {
	return services.NewPolicyProvider(config.CreditPolicyConfig{
		NewTierPercentage:         30,
		EstablishedTierPercentage: 50,
		PremiumTierPercentage:     70,
		DefaultMaxCreditAmount:    50000,
		AbsoluteCreditCeiling:     250000,
	})
}

type CreditServiceTestSuite struct {
	suite.Suite
	mockCreditRepo     *MockCreditRepository
	mockCollectionRepo *MockCollectionRepository
	mockFarmerRepo     *MockFarmerRepository
	service            portssvc.CreditSvcFacade
	farmerID           string
	actorID            string
	farmer             domain.Farmer
	tx                 fakeTx
}

func (suite *CreditServiceTestSuite) SetupTest() {
	suite.mockCreditRepo = new(MockCreditRepository)
	suite.mockCollectionRepo = new(MockCollectionRepository)
	suite.mockFarmerRepo = new(MockFarmerRepository)
	suite.service = services.NewCreditService(suite.mockCreditRepo, suite.mockCollectionRepo, suite.mockFarmerRepo, testPolicy())

	suite.farmerID = uuid.NewString()
	suite.actorID = uuid.NewString()
	suite.farmer = domain.Farmer{
		FarmerID: suite.farmerID,
		Name:     "Wanjiku Dairy",
		Tier:     domain.TierNew,
		IsActive: true,
	}
	suite.tx = fakeTx{}
}

func (suite *CreditServiceTestSuite) expectTx() {
	suite.mockCreditRepo.On("Begin", mock.Anything).Return(suite.tx, nil)
	suite.mockCreditRepo.On("Rollback", mock.Anything, suite.tx).Return(nil)
}

func (suite *CreditServiceTestSuite) TestCalculateEligibility_BootstrapWithoutProfile() {
	// No profile yet: the view is synthesized from tier defaults (NEW = 30%).
	suite.mockFarmerRepo.On("FindFarmerByID", mock.Anything, suite.farmerID).Return(&suite.farmer, nil)
	suite.mockCollectionRepo.On("SumUnpaidAmountByFarmerID", mock.Anything, suite.farmerID).Return(decimal.NewFromInt(10000), nil)
	suite.mockCreditRepo.On("FindProfileByFarmerID", mock.Anything, suite.farmerID).Return(nil, apperrors.ErrNotFound)

	result, err := suite.service.CalculateEligibility(context.Background(), suite.farmerID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.IsEligible)
	assert.True(suite.T(), result.CreditLimit.Equal(decimal.NewFromInt(3000)), "creditLimit = 30%% of 10000, got %s", result.CreditLimit)
	assert.True(suite.T(), result.AvailableCredit.IsZero(), "ungranted profile has no available credit")
	assert.True(suite.T(), result.PendingPayments.Equal(decimal.NewFromInt(10000)))
}

func (suite *CreditServiceTestSuite) TestCalculateEligibility_UnknownFarmer() {
	suite.mockFarmerRepo.On("FindFarmerByID", mock.Anything, suite.farmerID).Return(nil, apperrors.ErrNotFound)

	result, err := suite.service.CalculateEligibility(context.Background(), suite.farmerID)

	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *CreditServiceTestSuite) TestCalculateEligibility_FrozenProfile() {
	reason := "Overdue payments"
	profile := &domain.CreditProfile{
		FarmerID:        suite.farmerID,
		Tier:            domain.TierEstablished,
		LimitPercentage: decimal.NewFromInt(50),
		MaxCreditAmount: decimal.NewFromInt(50000),
		CurrentBalance:  decimal.NewFromInt(12000),
		IsFrozen:        true,
		FreezeReason:    &reason,
	}
	suite.mockFarmerRepo.On("FindFarmerByID", mock.Anything, suite.farmerID).Return(&suite.farmer, nil)
	suite.mockCollectionRepo.On("SumUnpaidAmountByFarmerID", mock.Anything, suite.farmerID).Return(decimal.NewFromInt(40000), nil)
	suite.mockCreditRepo.On("FindProfileByFarmerID", mock.Anything, suite.farmerID).Return(profile, nil)

	result, err := suite.service.CalculateEligibility(context.Background(), suite.farmerID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.IsEligible)
	assert.True(suite.T(), result.CreditLimit.IsZero())
	assert.True(suite.T(), result.AvailableCredit.IsZero(), "frozen profile yields zero regardless of balance")
}

func (suite *CreditServiceTestSuite) TestGrantCredit_ActivatesBalanceAtLimit() {
	// pending=30000, pct=60, cap=75000 -> limit 18000
	profile := &domain.CreditProfile{
		FarmerID:        suite.farmerID,
		Tier:            domain.TierPremium,
		LimitPercentage: decimal.NewFromInt(60),
		MaxCreditAmount: decimal.NewFromInt(75000),
		CurrentBalance:  decimal.Zero,
		Version:         2,
	}
	suite.mockCreditRepo.On("FindProfileByFarmerID", mock.Anything, suite.farmerID).Return(profile, nil)
	suite.expectTx()
	suite.mockCreditRepo.On("FindProfileByFarmerIDForUpdate", mock.Anything, suite.tx, suite.farmerID).Return(profile, nil)
	suite.mockCollectionRepo.On("SumUnpaidAmountByFarmerIDInTx", mock.Anything, suite.tx, suite.farmerID).Return(decimal.NewFromInt(30000), nil)
	suite.mockCreditRepo.On("UpdateProfileInTx", mock.Anything, suite.tx, mock.MatchedBy(func(p domain.CreditProfile) bool {
		return p.CurrentBalance.Equal(decimal.NewFromInt(18000))
	})).Return(nil)
	suite.mockCreditRepo.On("RecordTransactionInTx", mock.Anything, suite.tx, mock.MatchedBy(func(txn domain.CreditTransaction) bool {
		return txn.Type == domain.TxnGranted &&
			txn.Amount.Equal(decimal.NewFromInt(18000)) &&
			txn.BalanceAfter.Equal(decimal.NewFromInt(18000)) &&
			txn.CreatedBy == suite.actorID
	})).Return(nil)
	suite.mockCreditRepo.On("Commit", mock.Anything, suite.tx).Return(nil)

	granted, err := suite.service.GrantCredit(context.Background(), suite.farmerID, suite.actorID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), granted.CurrentBalance.Equal(decimal.NewFromInt(18000)))
	suite.mockCreditRepo.AssertExpectations(suite.T())
}

func (suite *CreditServiceTestSuite) TestGrantCredit_AlreadyGranted() {
	profile := &domain.CreditProfile{
		FarmerID:        suite.farmerID,
		LimitPercentage: decimal.NewFromInt(30),
		MaxCreditAmount: decimal.NewFromInt(50000),
		CurrentBalance:  decimal.NewFromInt(5000),
	}
	suite.mockCreditRepo.On("FindProfileByFarmerID", mock.Anything, suite.farmerID).Return(profile, nil)
	suite.expectTx()
	suite.mockCreditRepo.On("FindProfileByFarmerIDForUpdate", mock.Anything, suite.tx, suite.farmerID).Return(profile, nil)

	granted, err := suite.service.GrantCredit(context.Background(), suite.farmerID, suite.actorID)

	assert.Nil(suite.T(), granted)
	assert.ErrorIs(suite.T(), err, apperrors.ErrAlreadyGranted)
	suite.mockCreditRepo.AssertNotCalled(suite.T(), "UpdateProfileInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockCreditRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestGrantCredit_FrozenProfile() {
	reason := "Overdue payments"
	profile := &domain.CreditProfile{
		FarmerID:       suite.farmerID,
		CurrentBalance: decimal.Zero,
		IsFrozen:       true,
		FreezeReason:   &reason,
	}
	suite.mockCreditRepo.On("FindProfileByFarmerID", mock.Anything, suite.farmerID).Return(profile, nil)
	suite.expectTx()
	suite.mockCreditRepo.On("FindProfileByFarmerIDForUpdate", mock.Anything, suite.tx, suite.farmerID).Return(profile, nil)

	granted, err := suite.service.GrantCredit(context.Background(), suite.farmerID, suite.actorID)

	assert.Nil(suite.T(), granted)
	assert.ErrorIs(suite.T(), err, apperrors.ErrFrozen)
}

func (suite *CreditServiceTestSuite) TestGrantCredit_CreatesProfileWhenMissing() {
	created := &domain.CreditProfile{
		FarmerID:        suite.farmerID,
		Tier:            domain.TierNew,
		LimitPercentage: decimal.NewFromInt(30),
		MaxCreditAmount: decimal.NewFromInt(50000),
		CurrentBalance:  decimal.Zero,
	}
	suite.mockCreditRepo.On("FindProfileByFarmerID", mock.Anything, suite.farmerID).Return(nil, apperrors.ErrNotFound)
	suite.mockFarmerRepo.On("FindFarmerByID", mock.Anything, suite.farmerID).Return(&suite.farmer, nil)
	suite.mockCreditRepo.On("SaveProfile", mock.Anything, mock.MatchedBy(func(p domain.CreditProfile) bool {
		return p.FarmerID == suite.farmerID && p.CurrentBalance.IsZero() && p.LimitPercentage.Equal(decimal.NewFromInt(30))
	})).Return(nil)
	suite.expectTx()
	suite.mockCreditRepo.On("FindProfileByFarmerIDForUpdate", mock.Anything, suite.tx, suite.farmerID).Return(created, nil)
	suite.mockCollectionRepo.On("SumUnpaidAmountByFarmerIDInTx", mock.Anything, suite.tx, suite.farmerID).Return(decimal.NewFromInt(10000), nil)
	suite.mockCreditRepo.On("UpdateProfileInTx", mock.Anything, suite.tx, mock.Anything).Return(nil)
	suite.mockCreditRepo.On("RecordTransactionInTx", mock.Anything, suite.tx, mock.Anything).Return(nil)
	suite.mockCreditRepo.On("Commit", mock.Anything, suite.tx).Return(nil)

	granted, err := suite.service.GrantCredit(context.Background(), suite.farmerID, suite.actorID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), granted.CurrentBalance.Equal(decimal.NewFromInt(3000)))
	suite.mockCreditRepo.AssertExpectations(suite.T())
}

func (suite *CreditServiceTestSuite) TestGrantCredit_RetriesOnConflict() {
	profile := domain.CreditProfile{
		FarmerID:        suite.farmerID,
		LimitPercentage: decimal.NewFromInt(30),
		MaxCreditAmount: decimal.NewFromInt(50000),
		CurrentBalance:  decimal.Zero,
	}
	suite.mockCreditRepo.On("FindProfileByFarmerID", mock.Anything, suite.farmerID).Return(&profile, nil)
	suite.expectTx()
	// Each attempt re-reads fresh state, so each lock read gets its own copy.
	firstRead := profile
	secondRead := profile
	suite.mockCreditRepo.On("FindProfileByFarmerIDForUpdate", mock.Anything, suite.tx, suite.farmerID).Return(&firstRead, nil).Once()
	suite.mockCreditRepo.On("FindProfileByFarmerIDForUpdate", mock.Anything, suite.tx, suite.farmerID).Return(&secondRead, nil).Once()
	suite.mockCollectionRepo.On("SumUnpaidAmountByFarmerIDInTx", mock.Anything, suite.tx, suite.farmerID).Return(decimal.NewFromInt(10000), nil)
	suite.mockCreditRepo.On("UpdateProfileInTx", mock.Anything, suite.tx, mock.Anything).Return(apperrors.ErrConflict).Once()
	suite.mockCreditRepo.On("UpdateProfileInTx", mock.Anything, suite.tx, mock.Anything).Return(nil)
	suite.mockCreditRepo.On("RecordTransactionInTx", mock.Anything, suite.tx, mock.Anything).Return(nil)
	suite.mockCreditRepo.On("Commit", mock.Anything, suite.tx).Return(nil)

	granted, err := suite.service.GrantCredit(context.Background(), suite.farmerID, suite.actorID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), granted.CurrentBalance.Equal(decimal.NewFromInt(3000)))
}

func (suite *CreditServiceTestSuite) TestAdjustCreditLimit_RejectsOutOfRangeValues() {
	cases := []struct {
		name       string
		percentage decimal.Decimal
		maxAmount  decimal.Decimal
	}{
		{"percentage above 100", decimal.NewFromInt(150), decimal.NewFromInt(10000)},
		{"negative percentage", decimal.NewFromInt(-1), decimal.NewFromInt(10000)},
		{"negative max amount", decimal.NewFromInt(50), decimal.NewFromInt(-5)},
		{"max amount above ceiling", decimal.NewFromInt(50), decimal.NewFromInt(300000)},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			result, err := suite.service.AdjustCreditLimit(context.Background(), suite.farmerID, tc.percentage, tc.maxAmount, suite.actorID)
			assert.Nil(suite.T(), result)
			assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
		})
	}
	suite.mockCreditRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *CreditServiceTestSuite) TestAdjustCreditLimit_DoesNotTouchBalance() {
	profile := &domain.CreditProfile{
		FarmerID:        suite.farmerID,
		LimitPercentage: decimal.NewFromInt(30),
		MaxCreditAmount: decimal.NewFromInt(50000),
		CurrentBalance:  decimal.NewFromInt(4200),
		TotalUsed:       decimal.NewFromInt(800),
	}
	suite.mockCreditRepo.On("FindProfileByFarmerID", mock.Anything, suite.farmerID).Return(profile, nil)
	suite.expectTx()
	suite.mockCreditRepo.On("FindProfileByFarmerIDForUpdate", mock.Anything, suite.tx, suite.farmerID).Return(profile, nil)
	suite.mockCreditRepo.On("UpdateProfileInTx", mock.Anything, suite.tx, mock.MatchedBy(func(p domain.CreditProfile) bool {
		return p.LimitPercentage.Equal(decimal.NewFromInt(55)) &&
			p.MaxCreditAmount.Equal(decimal.NewFromInt(60000)) &&
			p.CurrentBalance.Equal(decimal.NewFromInt(4200)) &&
			p.TotalUsed.Equal(decimal.NewFromInt(800))
	})).Return(nil)
	suite.mockCreditRepo.On("RecordTransactionInTx", mock.Anything, suite.tx, mock.MatchedBy(func(txn domain.CreditTransaction) bool {
		return txn.Type == domain.TxnAdjusted && txn.Amount.IsZero() && txn.BalanceAfter.Equal(decimal.NewFromInt(4200))
	})).Return(nil)
	suite.mockCreditRepo.On("Commit", mock.Anything, suite.tx).Return(nil)

	adjusted, err := suite.service.AdjustCreditLimit(context.Background(), suite.farmerID, decimal.NewFromInt(55), decimal.NewFromInt(60000), suite.actorID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), adjusted.CurrentBalance.Equal(decimal.NewFromInt(4200)))
	suite.mockCreditRepo.AssertExpectations(suite.T())
}

func (suite *CreditServiceTestSuite) TestFreezeProfile_RequiresReason() {
	result, err := suite.service.FreezeProfile(context.Background(), suite.farmerID, "", suite.actorID)
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *CreditServiceTestSuite) TestFreezeProfile_AlreadyFrozen() {
	reason := "Overdue payments"
	profile := &domain.CreditProfile{
		FarmerID:     suite.farmerID,
		IsFrozen:     true,
		FreezeReason: &reason,
	}
	suite.expectTx()
	suite.mockCreditRepo.On("FindProfileByFarmerIDForUpdate", mock.Anything, suite.tx, suite.farmerID).Return(profile, nil)

	result, err := suite.service.FreezeProfile(context.Background(), suite.farmerID, "fraud suspected", suite.actorID)

	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *CreditServiceTestSuite) TestUnfreezeProfile_AppendsLedgerEntry() {
	reason := "Overdue payments"
	profile := &domain.CreditProfile{
		FarmerID:       suite.farmerID,
		CurrentBalance: decimal.NewFromInt(1500),
		IsFrozen:       true,
		FreezeReason:   &reason,
	}
	suite.expectTx()
	suite.mockCreditRepo.On("FindProfileByFarmerIDForUpdate", mock.Anything, suite.tx, suite.farmerID).Return(profile, nil)
	suite.mockCreditRepo.On("UpdateProfileInTx", mock.Anything, suite.tx, mock.MatchedBy(func(p domain.CreditProfile) bool {
		return !p.IsFrozen && p.FreezeReason == nil
	})).Return(nil)
	suite.mockCreditRepo.On("RecordTransactionInTx", mock.Anything, suite.tx, mock.MatchedBy(func(txn domain.CreditTransaction) bool {
		return txn.Type == domain.TxnAdjusted && txn.Amount.IsZero()
	})).Return(nil)
	suite.mockCreditRepo.On("Commit", mock.Anything, suite.tx).Return(nil)

	result, err := suite.service.UnfreezeProfile(context.Background(), suite.farmerID, suite.actorID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.IsFrozen)
	suite.mockCreditRepo.AssertExpectations(suite.T())
}

func TestCreditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CreditServiceTestSuite))
}

// --- Concurrent grant behaviour against an in-memory store ---

// memoryCreditStore simulates the database's per-farmer row lock: Begin takes
// the row lock and Commit/Rollback releases it exactly once, so two
// transactions on the same farmer serialize the way FOR UPDATE serializes them.
type memoryCreditStore struct {
	rowLock sync.Mutex
	mu      sync.Mutex
	profile domain.CreditProfile
	ledger  []domain.CreditTransaction
}

type memoryStoreTx struct {
	pgx.Tx
	release func()
}

func (s *memoryCreditStore) Begin(ctx context.Context) (pgx.Tx, error) {
	s.rowLock.Lock()
	var once sync.Once
	return &memoryStoreTx{release: func() { once.Do(s.rowLock.Unlock) }}, nil
}

func (s *memoryCreditStore) Commit(ctx context.Context, tx pgx.Tx) error {
	tx.(*memoryStoreTx).release()
	return nil
}

func (s *memoryCreditStore) Rollback(ctx context.Context, tx pgx.Tx) error {
	tx.(*memoryStoreTx).release()
	return nil
}

func (s *memoryCreditStore) FindProfileByFarmerID(ctx context.Context, farmerID string) (*domain.CreditProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile
	return &p, nil
}

func (s *memoryCreditStore) SaveProfile(ctx context.Context, profile domain.CreditProfile) error {
	return apperrors.ErrDuplicate
}

func (s *memoryCreditStore) FindProfileByFarmerIDForUpdate(ctx context.Context, tx pgx.Tx, farmerID string) (*domain.CreditProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile
	return &p, nil
}

func (s *memoryCreditStore) UpdateProfileInTx(ctx context.Context, tx pgx.Tx, profile domain.CreditProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile.Version != s.profile.Version {
		return fmt.Errorf("%w: profile was modified concurrently", apperrors.ErrConflict)
	}
	profile.Version++
	s.profile = profile
	return nil
}

func (s *memoryCreditStore) RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.CreditTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = append(s.ledger, txn)
	return nil
}

func (s *memoryCreditStore) ListTransactionsByFarmerID(ctx context.Context, farmerID string, limit int, nextToken *string) ([]domain.CreditTransaction, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CreditTransaction, len(s.ledger))
	copy(out, s.ledger)
	return out, nil, nil
}

func TestGrantCredit_ConcurrentGrantsExactlyOneSucceeds(t *testing.T) {
	farmerID := uuid.NewString()
	store := &memoryCreditStore{
		profile: domain.CreditProfile{
			FarmerID:        farmerID,
			Tier:            domain.TierNew,
			LimitPercentage: decimal.NewFromInt(30),
			MaxCreditAmount: decimal.NewFromInt(50000),
			CurrentBalance:  decimal.Zero,
		},
	}

	collectionRepo := new(MockCollectionRepository)
	collectionRepo.On("SumUnpaidAmountByFarmerIDInTx", mock.Anything, mock.Anything, farmerID).Return(decimal.NewFromInt(10000), nil)
	farmerRepo := new(MockFarmerRepository)

	svc := services.NewCreditService(store, collectionRepo, farmerRepo, testPolicy())

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GrantCredit(context.Background(), farmerID, uuid.NewString())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, alreadyGranted int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, apperrors.ErrAlreadyGranted):
			alreadyGranted++
		}
	}

	assert.Equal(t, 1, successes, "exactly one concurrent grant must win")
	assert.Equal(t, attempts-1, alreadyGranted)
	assert.True(t, store.profile.CurrentBalance.Equal(decimal.NewFromInt(3000)))

	granted := 0
	for _, txn := range store.ledger {
		if txn.Type == domain.TxnGranted {
			granted++
		}
	}
	assert.Equal(t, 1, granted, "exactly one granted ledger entry")
}
