package dto

import (
	"time"

	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCreditRequestRequest defines a farmer's agrovet purchase request.
// The request may exceed available credit; the binding check happens at
// approval time.
type CreateCreditRequestRequest struct {
	ProductID   string          `json:"productID" binding:"required"`
	ProductName string          `json:"productName" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
}

// RejectCreditRequestRequest carries the reason a request is rejected.
type RejectCreditRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreditRequestResponse defines the data returned for a credit request.
type CreditRequestResponse struct {
	RequestID                string          `json:"requestID"`
	FarmerID                 string          `json:"farmerID"`
	ProductID                string          `json:"productID"`
	ProductName              string          `json:"productName"`
	Quantity                 decimal.Decimal `json:"quantity"`
	UnitPrice                decimal.Decimal `json:"unitPrice"`
	TotalAmount              decimal.Decimal `json:"totalAmount"`
	Status                   string          `json:"status"`
	AvailableCreditAtRequest decimal.Decimal `json:"availableCreditAtRequest"`
	ApprovedBy               *string         `json:"approvedBy,omitempty"`
	ApprovedAt               *time.Time      `json:"approvedAt,omitempty"`
	RejectionReason          *string         `json:"rejectionReason,omitempty"`
	CreatedAt                time.Time       `json:"createdAt"`
}

// ToCreditRequestResponse converts a domain.CreditRequest to its DTO.
func ToCreditRequestResponse(r *domain.CreditRequest) CreditRequestResponse {
	return CreditRequestResponse{
		RequestID:                r.RequestID,
		FarmerID:                 r.FarmerID,
		ProductID:                r.ProductID,
		ProductName:              r.ProductName,
		Quantity:                 r.Quantity,
		UnitPrice:                r.UnitPrice,
		TotalAmount:              r.TotalAmount,
		Status:                   string(r.Status),
		AvailableCreditAtRequest: r.AvailableCreditAtRequest,
		ApprovedBy:               r.ApprovedBy,
		ApprovedAt:               r.ApprovedAt,
		RejectionReason:          r.RejectionReason,
		CreatedAt:                r.CreatedAt,
	}
}

// ToCreditRequestResponses converts a slice of credit requests.
func ToCreditRequestResponses(reqs []domain.CreditRequest) []CreditRequestResponse {
	responses := make([]CreditRequestResponse, len(reqs))
	for i, req := range reqs {
		responses[i] = ToCreditRequestResponse(&req)
	}
	return responses
}

// EnforcementDetails explains why an approval was refused, for UI display.
type EnforcementDetails struct {
	AvailableCredit decimal.Decimal `json:"availableCredit"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
	Shortfall       decimal.Decimal `json:"shortfall"`
	ProfileFrozen   bool            `json:"profileFrozen"`
}

// ApprovalResult is the structured outcome of an approval attempt. A refused
// approval is an expected business outcome, not an error: Success is false and
// ErrorMessage/EnforcementDetails tell the caller why.
type ApprovalResult struct {
	Success            bool                   `json:"success"`
	ErrorMessage       string                 `json:"errorMessage,omitempty"`
	EnforcementDetails *EnforcementDetails    `json:"enforcementDetails,omitempty"`
	Request            *CreditRequestResponse `json:"request,omitempty"`
}

// ListCreditRequestsParams defines query parameters for listing requests.
type ListCreditRequestsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Limit  int    `form:"limit,default=20"`
}
