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

// collectionHandler handles HTTP requests related to milk collections.
type collectionHandler struct {
	collectionService portssvc.CollectionSvcFacade
}

func newCollectionHandler(cs portssvc.CollectionSvcFacade) *collectionHandler {
	return &collectionHandler{collectionService: cs}
}

// registerCollectionRoutes registers routes related to collections.
func registerCollectionRoutes(rg *gin.RouterGroup, collectionService portssvc.CollectionSvcFacade) {
	h := newCollectionHandler(collectionService)
	staffOnly := middleware.RequireRoles(domain.RoleAdmin, domain.RoleStaff)

	collections := rg.Group("/collections")
	{
		collections.POST("", staffOnly, h.logCollection)
		collections.POST("/:id/pay", staffOnly, h.markPaid)
	}

	rg.GET("/farmers/:id/collections", h.listByFarmer)
}

// logCollection godoc
// @Summary Log a milk collection
// @Description Records a milk delivery; its value feeds the farmer's pending payments total.
// @Tags collections
// @Accept json
// @Produce json
// @Param collection body dto.CreateCollectionRequest true "Collection details"
// @Success 201 {object} dto.CollectionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /collections [post]
func (h *collectionHandler) logCollection(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	collection, err := h.collectionService.LogCollection(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to log collection", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to log collection"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToCollectionResponse(collection))
}

// markPaid godoc
// @Summary Mark a collection as paid
// @Description Settles a collection so it no longer counts toward pending payments.
// @Tags collections
// @Produce json
// @Param id path string true "Collection ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /collections/{id}/pay [post]
func (h *collectionHandler) markPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	collectionID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.collectionService.MarkCollectionPaid(c.Request.Context(), collectionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Collection not found"})
		case errors.Is(err, apperrors.ErrInvalidState):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to mark collection paid", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to mark collection paid"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// listByFarmer godoc
// @Summary List a farmer's collections
// @Tags collections
// @Produce json
// @Param id path string true "Farmer ID"
// @Param limit query int false "Limit number of results" default(20)
// @Success 200 {array} dto.CollectionResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /farmers/{id}/collections [get]
func (h *collectionHandler) listByFarmer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID := c.Param("id")

	if !farmerScopeAllowed(c, farmerID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	collections, err := h.collectionService.ListCollectionsByFarmer(c.Request.Context(), farmerID, limit)
	if err != nil {
		logger.Error("Failed to list collections", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list collections"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCollectionResponses(collections))
}
