package dto

import (
	"time"

	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
)

// CreateFarmerRequest defines the data needed to register a farmer.
type CreateFarmerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Route string `json:"route"`
	Tier  string `json:"tier" binding:"omitempty,oneof=NEW ESTABLISHED PREMIUM"`
}

// FarmerResponse defines the data returned for a farmer.
type FarmerResponse struct {
	FarmerID  string    `json:"farmerID"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Route     string    `json:"route"`
	Tier      string    `json:"tier"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToFarmerResponse converts a domain.Farmer to its DTO.
func ToFarmerResponse(f *domain.Farmer) FarmerResponse {
	return FarmerResponse{
		FarmerID:  f.FarmerID,
		Name:      f.Name,
		Phone:     f.Phone,
		Route:     f.Route,
		Tier:      string(f.Tier),
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
	}
}
