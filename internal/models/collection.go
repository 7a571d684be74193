package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collection mirrors the collections table.
type Collection struct {
	CollectionID   string          `db:"collection_id"`
	FarmerID       string          `db:"farmer_id"`
	QuantityLitres decimal.Decimal `db:"quantity_litres"`
	RatePerLitre   decimal.Decimal `db:"rate_per_litre"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	Status         string          `db:"status"`
	CollectedAt    time.Time       `db:"collected_at"`
	AuditFields
}
