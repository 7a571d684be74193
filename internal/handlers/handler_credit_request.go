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

// creditRequestHandler handles HTTP requests for the purchase request workflow.
type creditRequestHandler struct {
	requestService portssvc.CreditRequestSvcFacade
}

func newCreditRequestHandler(rs portssvc.CreditRequestSvcFacade) *creditRequestHandler {
	return &creditRequestHandler{requestService: rs}
}

// registerCreditRequestRoutes registers the credit request workflow routes.
func registerCreditRequestRoutes(rg *gin.RouterGroup, requestService portssvc.CreditRequestSvcFacade) {
	h := newCreditRequestHandler(requestService)
	staffOnly := middleware.RequireRoles(domain.RoleAdmin, domain.RoleStaff)
	farmerOnly := middleware.RequireRoles(domain.RoleFarmer)

	requests := rg.Group("/credit-requests")
	{
		requests.POST("", farmerOnly, h.createRequest)
		requests.GET("/pending", staffOnly, h.listPending)
		requests.GET("/:id", h.getRequest)
		requests.POST("/:id/approve", staffOnly, h.approveRequest)
		requests.POST("/:id/reject", staffOnly, h.rejectRequest)
		requests.DELETE("/:id", farmerOnly, h.cancelRequest)
	}

	rg.GET("/farmers/:id/credit-requests", h.listByFarmer)
}

// createRequest godoc
// @Summary Submit a purchase request
// @Description Queues an agrovet purchase against the farmer's credit. The request may exceed available credit; enforcement happens at approval.
// @Tags credit-requests
// @Accept json
// @Produce json
// @Param request body dto.CreateCreditRequestRequest true "Requested product and quantity"
// @Success 201 {object} dto.CreditRequestResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /credit-requests [post]
func (h *creditRequestHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	farmerID, ok := middleware.GetFarmerIDFromContext(c)
	if !ok || farmerID == "" {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "No farmer is linked to this account"})
		return
	}

	var req dto.CreateCreditRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	created, err := h.requestService.CreateRequest(c.Request.Context(), farmerID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to create credit request", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create credit request"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreditRequestResponse(created))
}

// getRequest godoc
// @Summary Get a credit request
// @Tags credit-requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.CreditRequestResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /credit-requests/{id} [get]
func (h *creditRequestHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID := c.Param("id")

	request, err := h.requestService.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Credit request not found"})
			return
		}
		logger.Error("Failed to get credit request", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve credit request"})
		return
	}

	if !farmerScopeAllowed(c, request.FarmerID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditRequestResponse(request))
}

// approveRequest godoc
// @Summary Approve a pending credit request
// @Description Re-validates eligibility against current state. A refusal returns 200 with success=false and enforcement details; the request stays pending.
// @Tags credit-requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.ApprovalResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /credit-requests/{id}/approve [post]
func (h *creditRequestHandler) approveRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID := c.Param("id")

	approverID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.requestService.ApproveRequest(c.Request.Context(), requestID, approverID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Credit request not found"})
		case errors.Is(err, apperrors.ErrInvalidState):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to approve credit request", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to approve credit request"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// rejectRequest godoc
// @Summary Reject a pending credit request
// @Tags credit-requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param rejection body dto.RejectCreditRequestRequest true "Rejection reason"
// @Success 200 {object} dto.CreditRequestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /credit-requests/{id}/reject [post]
func (h *creditRequestHandler) rejectRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID := c.Param("id")

	var req dto.RejectCreditRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	approverID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	rejected, err := h.requestService.RejectRequest(c.Request.Context(), requestID, approverID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Credit request not found"})
		case errors.Is(err, apperrors.ErrInvalidState):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to reject credit request", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to reject credit request"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditRequestResponse(rejected))
}

// cancelRequest godoc
// @Summary Cancel a pending credit request
// @Description Only the owning farmer may cancel, and only while the request is still pending.
// @Tags credit-requests
// @Param id path string true "Request ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /credit-requests/{id} [delete]
func (h *creditRequestHandler) cancelRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID := c.Param("id")

	farmerID, ok := middleware.GetFarmerIDFromContext(c)
	if !ok || farmerID == "" {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "No farmer is linked to this account"})
		return
	}

	if err := h.requestService.CancelRequest(c.Request.Context(), requestID, farmerID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Credit request not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only the requesting farmer can cancel this request"})
		case errors.Is(err, apperrors.ErrInvalidState):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Only pending requests can be cancelled"})
		default:
			logger.Error("Failed to cancel credit request", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to cancel credit request"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// listPending godoc
// @Summary List pending credit requests
// @Description Approver queue, oldest first.
// @Tags credit-requests
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Success 200 {array} dto.CreditRequestResponse
// @Security BearerAuth
// @Router /credit-requests/pending [get]
func (h *creditRequestHandler) listPending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListCreditRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	requests, err := h.requestService.ListPendingRequests(c.Request.Context(), params.Limit)
	if err != nil {
		logger.Error("Failed to list pending credit requests", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list pending credit requests"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditRequestResponses(requests))
}

// listByFarmer godoc
// @Summary List a farmer's credit requests
// @Tags credit-requests
// @Produce json
// @Param id path string true "Farmer ID"
// @Param status query string false "Filter by status" Enums(PENDING, APPROVED, REJECTED)
// @Param limit query int false "Page size" default(20)
// @Success 200 {array} dto.CreditRequestResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id}/credit-requests [get]
func (h *creditRequestHandler) listByFarmer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	if !farmerScopeAllowed(c, farmerID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	var params dto.ListCreditRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	requests, err := h.requestService.ListRequestsByFarmer(c.Request.Context(), farmerID, params)
	if err != nil {
		logger.Error("Failed to list credit requests", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list credit requests"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCreditRequestResponses(requests))
}
