package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CollectionReader defines read operations for milk collection data.
type CollectionReader interface {
	// SumUnpaidAmountByFarmerID returns the total value of a farmer's
	// collections whose settlement status is not PAID.
	SumUnpaidAmountByFarmerID(ctx context.Context, farmerID string) (decimal.Decimal, error)

	// SumUnpaidAmountByFarmerIDInTx is the same read executed inside an open
	// transaction, for approval-time re-validation under the profile lock.
	SumUnpaidAmountByFarmerIDInTx(ctx context.Context, tx pgx.Tx, farmerID string) (decimal.Decimal, error)

	// ListCollectionsByFarmerID retrieves a farmer's collections, newest first.
	ListCollectionsByFarmerID(ctx context.Context, farmerID string, limit int) ([]domain.Collection, error)
}

// CollectionWriter defines write operations for milk collection data.
type CollectionWriter interface {
	// SaveCollection inserts a new collection record.
	SaveCollection(ctx context.Context, collection domain.Collection) error

	// MarkCollectionPaid flips a collection's settlement status to PAID.
	MarkCollectionPaid(ctx context.Context, collectionID string, userID string, now time.Time) error
}

// CollectionRepositoryFacade combines all collection operations.
type CollectionRepositoryFacade interface {
	CollectionReader
	CollectionWriter
}
