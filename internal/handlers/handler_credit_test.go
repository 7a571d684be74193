package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maziwaops/dairy_credit_app/internal/apperrors"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portssvc "github.com/maziwaops/dairy_credit_app/internal/core/ports/services"
	"github.com/maziwaops/dairy_credit_app/internal/dto"
	"github.com/maziwaops/dairy_credit_app/internal/handlers"
	"github.com/maziwaops/dairy_credit_app/internal/platform/config"
	"github.com/maziwaops/dairy_credit_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CreditService ---
type MockCreditService struct {
	mock.Mock
}

func (m *MockCreditService) CalculateEligibility(ctx context.Context, farmerID string) (*domain.EligibilityResult, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EligibilityResult), args.Error(1)
}
func (m *MockCreditService) GetProfile(ctx context.Context, farmerID string) (*domain.CreditProfile, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditProfile), args.Error(1)
}
func (m *MockCreditService) GrantCredit(ctx context.Context, farmerID string, actorID string) (*domain.CreditProfile, error) {
	args := m.Called(ctx, farmerID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditProfile), args.Error(1)
}
func (m *MockCreditService) AdjustCreditLimit(ctx context.Context, farmerID string, percentage decimal.Decimal, maxAmount decimal.Decimal, actorID string) (*domain.CreditProfile, error) {
	args := m.Called(ctx, farmerID, percentage, maxAmount, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditProfile), args.Error(1)
}
func (m *MockCreditService) FreezeProfile(ctx context.Context, farmerID string, reason string, actorID string) (*domain.CreditProfile, error) {
	args := m.Called(ctx, farmerID, reason, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditProfile), args.Error(1)
}
func (m *MockCreditService) UnfreezeProfile(ctx context.Context, farmerID string, actorID string) (*domain.CreditProfile, error) {
	args := m.Called(ctx, farmerID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditProfile), args.Error(1)
}
func (m *MockCreditService) ListTransactions(ctx context.Context, farmerID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, farmerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

var _ portssvc.CreditSvcFacade = (*MockCreditService)(nil)

// --- Mock CreditRequestService ---
type MockCreditRequestService struct {
	mock.Mock
}

func (m *MockCreditRequestService) CreateRequest(ctx context.Context, farmerID string, req dto.CreateCreditRequestRequest) (*domain.CreditRequest, error) {
	args := m.Called(ctx, farmerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditRequest), args.Error(1)
}
func (m *MockCreditRequestService) ApproveRequest(ctx context.Context, requestID string, approverID string) (*dto.ApprovalResult, error) {
	args := m.Called(ctx, requestID, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ApprovalResult), args.Error(1)
}
func (m *MockCreditRequestService) RejectRequest(ctx context.Context, requestID string, approverID string, reason string) (*domain.CreditRequest, error) {
	args := m.Called(ctx, requestID, approverID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditRequest), args.Error(1)
}
func (m *MockCreditRequestService) CancelRequest(ctx context.Context, requestID string, actorFarmerID string) error {
	args := m.Called(ctx, requestID, actorFarmerID)
	return args.Error(0)
}
func (m *MockCreditRequestService) GetRequest(ctx context.Context, requestID string) (*domain.CreditRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditRequest), args.Error(1)
}
func (m *MockCreditRequestService) ListRequestsByFarmer(ctx context.Context, farmerID string, params dto.ListCreditRequestsParams) ([]domain.CreditRequest, error) {
	args := m.Called(ctx, farmerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditRequest), args.Error(1)
}
func (m *MockCreditRequestService) ListPendingRequests(ctx context.Context, limit int) ([]domain.CreditRequest, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditRequest), args.Error(1)
}

var _ portssvc.CreditRequestSvcFacade = (*MockCreditRequestService)(nil)

// --- Test Suite ---
type CreditHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockCreditService  *MockCreditService
	mockRequestService *MockCreditRequestService
	jwtSecret          string
}

func (suite *CreditHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockCreditService = new(MockCreditService)
	suite.mockRequestService = new(MockCreditRequestService)

	cfg := &config.Config{
		JWTSecret:    suite.jwtSecret,
		IsProduction: true, // skip swagger registration
	}
	services := &portssvc.ServiceContainer{
		Credit:        suite.mockCreditService,
		CreditRequest: suite.mockRequestService,
	}
	handlers.RegisterRoutes(suite.router, cfg, services)
}

// generateTestToken creates a signed JWT carrying the role and farmer link.
func (suite *CreditHandlerTestSuite) generateTestToken(userID string, role domain.UserRole, farmerID string) string {
	token, err := utils.GenerateJWT(userID, string(role), farmerID, suite.jwtSecret, time.Hour, "dca-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *CreditHandlerTestSuite) doRequest(method, url, token string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, reqBody)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *CreditHandlerTestSuite) TestGetEligibility_Success() {
	farmerID := uuid.NewString()
	userID := uuid.NewString()

	expected := &domain.EligibilityResult{
		IsEligible:      true,
		CreditLimit:     decimal.NewFromInt(3000),
		AvailableCredit: decimal.NewFromInt(3000),
		PendingPayments: decimal.NewFromInt(10000),
	}
	suite.mockCreditService.On("CalculateEligibility", mock.Anything, farmerID).Return(expected, nil).Once()

	token := suite.generateTestToken(userID, domain.RoleStaff, "")
	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/farmers/%s/credit/eligibility", farmerID), token, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.EligibilityResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(farmerID, resp.FarmerID)
	suite.True(resp.IsEligible)
	suite.True(resp.CreditLimit.Equal(decimal.NewFromInt(3000)))
	suite.mockCreditService.AssertExpectations(suite.T())
}

func (suite *CreditHandlerTestSuite) TestGetEligibility_FarmerCannotReadOtherFarmer() {
	farmerID := uuid.NewString()
	otherFarmerID := uuid.NewString()
	userID := uuid.NewString()

	token := suite.generateTestToken(userID, domain.RoleFarmer, otherFarmerID)
	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/farmers/%s/credit/eligibility", farmerID), token, nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockCreditService.AssertNotCalled(suite.T(), "CalculateEligibility", mock.Anything, mock.Anything)
}

func (suite *CreditHandlerTestSuite) TestGetEligibility_Unauthenticated() {
	farmerID := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/farmers/%s/credit/eligibility", farmerID), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *CreditHandlerTestSuite) TestGrantCredit_Success() {
	farmerID := uuid.NewString()
	userID := uuid.NewString()

	profile := &domain.CreditProfile{
		FarmerID:        farmerID,
		Tier:            domain.TierNew,
		LimitPercentage: decimal.NewFromInt(30),
		MaxCreditAmount: decimal.NewFromInt(50000),
		CurrentBalance:  decimal.NewFromInt(3000),
		TotalUsed:       decimal.Zero,
	}
	suite.mockCreditService.On("GrantCredit", mock.Anything, farmerID, userID).Return(profile, nil).Once()

	token := suite.generateTestToken(userID, domain.RoleStaff, "")
	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/farmers/%s/credit/grant", farmerID), token, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CreditProfileResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.CurrentBalance.Equal(decimal.NewFromInt(3000)))
	suite.mockCreditService.AssertExpectations(suite.T())
}

func (suite *CreditHandlerTestSuite) TestGrantCredit_AlreadyGrantedConflict() {
	farmerID := uuid.NewString()
	userID := uuid.NewString()

	grantErr := fmt.Errorf("%w: credit already active for farmer %s", apperrors.ErrAlreadyGranted, farmerID)
	suite.mockCreditService.On("GrantCredit", mock.Anything, farmerID, userID).Return(nil, grantErr).Once()

	token := suite.generateTestToken(userID, domain.RoleAdmin, "")
	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/farmers/%s/credit/grant", farmerID), token, nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockCreditService.AssertExpectations(suite.T())
}

func (suite *CreditHandlerTestSuite) TestGrantCredit_FarmerRoleForbidden() {
	farmerID := uuid.NewString()
	userID := uuid.NewString()

	token := suite.generateTestToken(userID, domain.RoleFarmer, farmerID)
	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/farmers/%s/credit/grant", farmerID), token, nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockCreditService.AssertNotCalled(suite.T(), "GrantCredit", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CreditHandlerTestSuite) TestAdjustLimit_ValidationError() {
	farmerID := uuid.NewString()
	userID := uuid.NewString()

	adjErr := fmt.Errorf("%w: limit percentage must be between 0 and 100", apperrors.ErrValidation)
	suite.mockCreditService.On("AdjustCreditLimit", mock.Anything, farmerID, mock.Anything, mock.Anything, userID).Return(nil, adjErr).Once()

	token := suite.generateTestToken(userID, domain.RoleStaff, "")
	body := dto.AdjustCreditLimitRequest{
		LimitPercentage: decimal.NewFromInt(150),
		MaxCreditAmount: decimal.NewFromInt(50000),
	}
	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/v1/farmers/%s/credit/limit", farmerID), token, body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCreditService.AssertExpectations(suite.T())
}

func (suite *CreditHandlerTestSuite) TestCreateRequest_UsesFarmerFromToken() {
	farmerID := uuid.NewString()
	userID := uuid.NewString()

	request := &domain.CreditRequest{
		RequestID:                uuid.NewString(),
		FarmerID:                 farmerID,
		ProductID:                "prod-1",
		ProductName:              "Dairy Meal 70kg",
		Quantity:                 decimal.NewFromInt(2),
		UnitPrice:                decimal.NewFromInt(3500),
		TotalAmount:              decimal.NewFromInt(7000),
		Status:                   domain.RequestPending,
		AvailableCreditAtRequest: decimal.NewFromInt(3000),
		CreatedAt:                time.Now(),
	}
	suite.mockRequestService.On("CreateRequest", mock.Anything, farmerID, mock.MatchedBy(func(r dto.CreateCreditRequestRequest) bool {
		return r.ProductID == "prod-1" && r.Quantity.Equal(decimal.NewFromInt(2))
	})).Return(request, nil).Once()

	token := suite.generateTestToken(userID, domain.RoleFarmer, farmerID)
	body := dto.CreateCreditRequestRequest{
		ProductID:   "prod-1",
		ProductName: "Dairy Meal 70kg",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromInt(3500),
	}
	w := suite.doRequest(http.MethodPost, "/api/v1/credit-requests", token, body)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.CreditRequestResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(farmerID, resp.FarmerID)
	suite.Equal("PENDING", resp.Status)
	suite.mockRequestService.AssertExpectations(suite.T())
}

func (suite *CreditHandlerTestSuite) TestApproveRequest_RefusalIsStructuredResult() {
	requestID := uuid.NewString()
	userID := uuid.NewString()

	result := &dto.ApprovalResult{
		Success:      false,
		ErrorMessage: "Insufficient available credit",
		EnforcementDetails: &dto.EnforcementDetails{
			AvailableCredit: decimal.NewFromInt(5000),
			RequestedAmount: decimal.NewFromInt(100000),
			Shortfall:       decimal.NewFromInt(95000),
		},
	}
	suite.mockRequestService.On("ApproveRequest", mock.Anything, requestID, userID).Return(result, nil).Once()

	token := suite.generateTestToken(userID, domain.RoleStaff, "")
	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/credit-requests/%s/approve", requestID), token, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ApprovalResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.Success)
	suite.Equal("Insufficient available credit", resp.ErrorMessage)
	suite.Require().NotNil(resp.EnforcementDetails)
	suite.True(resp.EnforcementDetails.Shortfall.Equal(decimal.NewFromInt(95000)))
	suite.mockRequestService.AssertExpectations(suite.T())
}

func (suite *CreditHandlerTestSuite) TestCancelRequest_NotPendingConflict() {
	requestID := uuid.NewString()
	farmerID := uuid.NewString()
	userID := uuid.NewString()

	cancelErr := fmt.Errorf("%w: request is not pending", apperrors.ErrInvalidState)
	suite.mockRequestService.On("CancelRequest", mock.Anything, requestID, farmerID).Return(cancelErr).Once()

	token := suite.generateTestToken(userID, domain.RoleFarmer, farmerID)
	w := suite.doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/credit-requests/%s", requestID), token, nil)

	suite.Equal(http.StatusConflict, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Only pending requests can be cancelled", resp.Error)
	suite.mockRequestService.AssertExpectations(suite.T())
}

func (suite *CreditHandlerTestSuite) TestCancelRequest_SuccessNoContent() {
	requestID := uuid.NewString()
	farmerID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockRequestService.On("CancelRequest", mock.Anything, requestID, farmerID).Return(nil).Once()

	token := suite.generateTestToken(userID, domain.RoleFarmer, farmerID)
	w := suite.doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/credit-requests/%s", requestID), token, nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockRequestService.AssertExpectations(suite.T())
}

func (suite *CreditHandlerTestSuite) TestListPending_StaffOnly() {
	userID := uuid.NewString()
	farmerID := uuid.NewString()

	token := suite.generateTestToken(userID, domain.RoleFarmer, farmerID)
	w := suite.doRequest(http.MethodGet, "/api/v1/credit-requests/pending", token, nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockRequestService.AssertNotCalled(suite.T(), "ListPendingRequests", mock.Anything, mock.Anything)
}

func TestCreditHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CreditHandlerTestSuite))
}
