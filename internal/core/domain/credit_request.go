package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditRequestStatus indicates the state of an agrovet purchase request.
type CreditRequestStatus string

const (
	RequestPending  CreditRequestStatus = "PENDING"
	RequestApproved CreditRequestStatus = "APPROVED"
	RequestRejected CreditRequestStatus = "REJECTED"
)

// CreditRequest is a farmer-initiated purchase request against the credit line.
// Lifecycle: created PENDING, transitions exactly once to APPROVED or REJECTED
// by a staff action; a PENDING request may be deleted (cancelled) by its owner.
type CreditRequest struct {
	RequestID   string              `json:"requestID"`
	FarmerID    string              `json:"farmerID"`
	ProductID   string              `json:"productID"` // opaque catalog reference
	ProductName string              `json:"productName"`
	Quantity    decimal.Decimal     `json:"quantity"`
	UnitPrice   decimal.Decimal     `json:"unitPrice"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	Status      CreditRequestStatus `json:"status"`

	// AvailableCreditAtRequest is an audit snapshot taken at creation time.
	// It is non-binding: approval re-validates against current state.
	AvailableCreditAtRequest decimal.Decimal `json:"availableCreditAtRequest"`

	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
