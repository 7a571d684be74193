package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/maziwaops/dairy_credit_app/internal/apperrors"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portssvc "github.com/maziwaops/dairy_credit_app/internal/core/ports/services"
	"github.com/maziwaops/dairy_credit_app/internal/dto"
	"github.com/maziwaops/dairy_credit_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// creditHandler handles HTTP requests related to credit profiles and the ledger.
type creditHandler struct {
	creditService portssvc.CreditSvcFacade
}

func newCreditHandler(cs portssvc.CreditSvcFacade) *creditHandler {
	return &creditHandler{creditService: cs}
}

// registerCreditRoutes registers the credit engine routes under a farmer.
func registerCreditRoutes(rg *gin.RouterGroup, creditService portssvc.CreditSvcFacade) {
	h := newCreditHandler(creditService)
	staffOnly := middleware.RequireRoles(domain.RoleAdmin, domain.RoleStaff)

	credit := rg.Group("/farmers/:id/credit")
	{
		credit.GET("/eligibility", h.getEligibility)
		credit.GET("/profile", h.getProfile)
		credit.GET("/transactions", h.listTransactions)
		credit.POST("/grant", staffOnly, h.grantCredit)
		credit.PUT("/limit", staffOnly, h.adjustLimit)
		credit.POST("/freeze", staffOnly, h.freezeProfile)
		credit.POST("/unfreeze", staffOnly, h.unfreezeProfile)
	}
}

// getEligibility godoc
// @Summary Compute credit eligibility for a farmer
// @Description Advisory view of the farmer's credit limit and available credit. Not a lock; binding decisions re-check at approval time.
// @Tags credit
// @Produce json
// @Param id path string true "Farmer ID"
// @Success 200 {object} dto.EligibilityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id}/credit/eligibility [get]
func (h *creditHandler) getEligibility(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	if !farmerScopeAllowed(c, farmerID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	result, err := h.creditService.CalculateEligibility(c.Request.Context(), farmerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to calculate eligibility", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to calculate eligibility"})
		return
	}

	c.JSON(http.StatusOK, dto.ToEligibilityResponse(farmerID, *result))
}

// getProfile godoc
// @Summary Get a farmer's credit profile
// @Tags credit
// @Produce json
// @Param id path string true "Farmer ID"
// @Success 200 {object} dto.CreditProfileResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id}/credit/profile [get]
func (h *creditHandler) getProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	if !farmerScopeAllowed(c, farmerID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	profile, err := h.creditService.GetProfile(c.Request.Context(), farmerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Credit profile not found"})
			return
		}
		logger.Error("Failed to get credit profile", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve credit profile"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditProfileResponse(profile))
}

// grantCredit godoc
// @Summary Grant credit to a farmer
// @Description Activates the spendable balance at the current credit limit. Fails if the balance is already non-zero.
// @Tags credit
// @Produce json
// @Param id path string true "Farmer ID"
// @Success 200 {object} dto.CreditProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id}/credit/grant [post]
func (h *creditHandler) grantCredit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	profile, err := h.creditService.GrantCredit(c.Request.Context(), farmerID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadyGranted):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrFrozen):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to grant credit", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to grant credit"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditProfileResponse(profile))
}

// adjustLimit godoc
// @Summary Adjust a farmer's credit policy
// @Description Updates the limit percentage and cap. The balance is never touched.
// @Tags credit
// @Accept json
// @Produce json
// @Param id path string true "Farmer ID"
// @Param adjustment body dto.AdjustCreditLimitRequest true "New policy values"
// @Success 200 {object} dto.CreditProfileResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id}/credit/limit [put]
func (h *creditHandler) adjustLimit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	var req dto.AdjustCreditLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	profile, err := h.creditService.AdjustCreditLimit(c.Request.Context(), farmerID, req.LimitPercentage, req.MaxCreditAmount, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to adjust credit limit", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to adjust credit limit"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditProfileResponse(profile))
}

// freezeProfile godoc
// @Summary Freeze a farmer's credit profile
// @Tags credit
// @Accept json
// @Produce json
// @Param id path string true "Farmer ID"
// @Param freeze body dto.FreezeProfileRequest true "Freeze reason"
// @Success 200 {object} dto.CreditProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id}/credit/freeze [post]
func (h *creditHandler) freezeProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	var req dto.FreezeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	profile, err := h.creditService.FreezeProfile(c.Request.Context(), farmerID, req.Reason, actorID)
	if err != nil {
		h.writeFreezeError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditProfileResponse(profile))
}

// unfreezeProfile godoc
// @Summary Unfreeze a farmer's credit profile
// @Tags credit
// @Produce json
// @Param id path string true "Farmer ID"
// @Success 200 {object} dto.CreditProfileResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id}/credit/unfreeze [post]
func (h *creditHandler) unfreezeProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	profile, err := h.creditService.UnfreezeProfile(c.Request.Context(), farmerID, actorID)
	if err != nil {
		h.writeFreezeError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditProfileResponse(profile))
}

func (h *creditHandler) writeFreezeError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Credit profile not found"})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("Failed to change freeze state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to change freeze state"})
	}
}

// listTransactions godoc
// @Summary List a farmer's credit ledger
// @Description Returns ledger entries newest first with cursor pagination.
// @Tags credit
// @Produce json
// @Param id path string true "Farmer ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Cursor from a previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id}/credit/transactions [get]
func (h *creditHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	if !farmerScopeAllowed(c, farmerID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.creditService.ListTransactions(c.Request.Context(), farmerID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, page)
}
