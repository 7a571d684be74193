package dto

import (
	"time"

	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCollectionRequest defines the data needed to log a milk collection.
type CreateCollectionRequest struct {
	FarmerID       string          `json:"farmerID" binding:"required"`
	QuantityLitres decimal.Decimal `json:"quantityLitres" binding:"required"`
	RatePerLitre   decimal.Decimal `json:"ratePerLitre" binding:"required"`
	CollectedAt    *time.Time      `json:"collectedAt"` // defaults to now
}

// CollectionResponse defines the data returned for a collection.
type CollectionResponse struct {
	CollectionID   string          `json:"collectionID"`
	FarmerID       string          `json:"farmerID"`
	QuantityLitres decimal.Decimal `json:"quantityLitres"`
	RatePerLitre   decimal.Decimal `json:"ratePerLitre"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Status         string          `json:"status"`
	CollectedAt    time.Time       `json:"collectedAt"`
}

// ToCollectionResponse converts a domain.Collection to its DTO.
func ToCollectionResponse(c *domain.Collection) CollectionResponse {
	return CollectionResponse{
		CollectionID:   c.CollectionID,
		FarmerID:       c.FarmerID,
		QuantityLitres: c.QuantityLitres,
		RatePerLitre:   c.RatePerLitre,
		TotalAmount:    c.TotalAmount,
		Status:         string(c.Status),
		CollectedAt:    c.CollectedAt,
	}
}

// ToCollectionResponses converts a slice of collections.
func ToCollectionResponses(cs []domain.Collection) []CollectionResponse {
	responses := make([]CollectionResponse, len(cs))
	for i, c := range cs {
		responses[i] = ToCollectionResponse(&c)
	}
	return responses
}
