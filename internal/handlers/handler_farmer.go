package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/maziwaops/dairy_credit_app/internal/apperrors"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portssvc "github.com/maziwaops/dairy_credit_app/internal/core/ports/services"
	"github.com/maziwaops/dairy_credit_app/internal/dto"
	"github.com/maziwaops/dairy_credit_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// farmerScopeAllowed reports whether the caller may act on the given farmer's
// data. Staff and admins may act on any farmer; farmer logins only on their own.
func farmerScopeAllowed(c *gin.Context, farmerID string) bool {
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		return false
	}
	if role != string(domain.RoleFarmer) {
		return true
	}
	ownFarmerID, ok := middleware.GetFarmerIDFromContext(c)
	return ok && ownFarmerID == farmerID
}

// farmerHandler handles HTTP requests related to the farmer registry.
type farmerHandler struct {
	farmerService portssvc.FarmerSvcFacade
}

func newFarmerHandler(fs portssvc.FarmerSvcFacade) *farmerHandler {
	return &farmerHandler{farmerService: fs}
}

// registerFarmerRoutes registers routes related to farmers.
func registerFarmerRoutes(rg *gin.RouterGroup, farmerService portssvc.FarmerSvcFacade) {
	h := newFarmerHandler(farmerService)

	farmers := rg.Group("/farmers")
	{
		staffOnly := middleware.RequireRoles(domain.RoleAdmin, domain.RoleStaff)
		farmers.POST("", staffOnly, h.createFarmer)
		farmers.GET("", staffOnly, h.listFarmers)
		farmers.GET("/:id", h.getFarmer)
	}
}

// createFarmer godoc
// @Summary Register a new farmer
// @Tags farmers
// @Accept json
// @Produce json
// @Param farmer body dto.CreateFarmerRequest true "Farmer details"
// @Success 201 {object} dto.FarmerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers [post]
func (h *farmerHandler) createFarmer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	farmer, err := h.farmerService.CreateFarmer(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to create farmer", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create farmer"})
		return
	}

	logger.Info("Farmer created", slog.String("farmer_id", farmer.FarmerID))
	c.JSON(http.StatusCreated, dto.ToFarmerResponse(farmer))
}

// getFarmer godoc
// @Summary Get a farmer by ID
// @Tags farmers
// @Produce json
// @Param id path string true "Farmer ID"
// @Success 200 {object} dto.FarmerResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id} [get]
func (h *farmerHandler) getFarmer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	if !farmerScopeAllowed(c, farmerID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	farmer, err := h.farmerService.GetFarmerByID(c.Request.Context(), farmerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Farmer not found"})
			return
		}
		logger.Error("Failed to get farmer", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve farmer"})
		return
	}

	c.JSON(http.StatusOK, dto.ToFarmerResponse(farmer))
}

// listFarmers godoc
// @Summary List registered farmers
// @Tags farmers
// @Produce json
// @Param limit query int false "Limit number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.FarmerResponse
// @Security BearerAuth
// @Router /farmers [get]
func (h *farmerHandler) listFarmers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	farmers, err := h.farmerService.ListFarmers(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list farmers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list farmers"})
		return
	}

	responses := make([]dto.FarmerResponse, len(farmers))
	for i := range farmers {
		responses[i] = dto.ToFarmerResponse(&farmers[i])
	}
	c.JSON(http.StatusOK, responses)
}
