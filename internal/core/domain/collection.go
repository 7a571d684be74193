package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionStatus is the settlement state of a milk collection.
type CollectionStatus string

const (
	CollectionUnpaid CollectionStatus = "UNPAID"
	CollectionPaid   CollectionStatus = "PAID"
)

// Collection records one milk delivery by a farmer. The sum of TotalAmount
// over a farmer's unpaid collections is the base from which the credit limit
// is derived.
type Collection struct {
	CollectionID   string           `json:"collectionID"`
	FarmerID       string           `json:"farmerID"`
	QuantityLitres decimal.Decimal  `json:"quantityLitres"`
	RatePerLitre   decimal.Decimal  `json:"ratePerLitre"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	Status         CollectionStatus `json:"status"`
	CollectedAt    time.Time        `json:"collectedAt"`
	AuditFields
}
