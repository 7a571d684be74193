package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
)

// CreditProfileReader defines read operations for credit profile data.
type CreditProfileReader interface {
	// FindProfileByFarmerID retrieves the profile for a farmer, or
	// apperrors.ErrNotFound if none exists yet.
	FindProfileByFarmerID(ctx context.Context, farmerID string) (*domain.CreditProfile, error)
}

// CreditProfileWriter defines write operations for credit profile data.
// The read-check-write on CurrentBalance is the concurrency-critical path:
// callers lock the row with FindProfileByFarmerIDForUpdate inside a
// transaction, and UpdateProfileInTx additionally checks the row version.
type CreditProfileWriter interface {
	// SaveProfile inserts a new profile. Returns apperrors.ErrDuplicate if
	// the farmer already has one.
	SaveProfile(ctx context.Context, profile domain.CreditProfile) error

	// FindProfileByFarmerIDForUpdate retrieves the profile row with a
	// per-farmer exclusive lock. Must be called within a transaction.
	FindProfileByFarmerIDForUpdate(ctx context.Context, tx pgx.Tx, farmerID string) (*domain.CreditProfile, error)

	// UpdateProfileInTx writes all mutable profile columns. The update only
	// applies when profile.Version matches the stored row; the stored version
	// is incremented. Returns apperrors.ErrConflict on a version mismatch.
	UpdateProfileInTx(ctx context.Context, tx pgx.Tx, profile domain.CreditProfile) error
}

// CreditLedgerWriter defines the append-only ledger contract. Rows are never
// updated or deleted.
type CreditLedgerWriter interface {
	// RecordTransactionInTx appends a ledger entry within the same database
	// transaction as the profile mutation it evidences.
	RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.CreditTransaction) error
}

// CreditLedgerReader defines read operations for the ledger.
type CreditLedgerReader interface {
	// ListTransactionsByFarmerID retrieves a page of ledger entries for a
	// farmer, newest first, with keyset pagination.
	ListTransactionsByFarmerID(ctx context.Context, farmerID string, limit int, nextToken *string) ([]domain.CreditTransaction, *string, error)
}

// CreditRepositoryFacade combines all credit profile and ledger operations.
type CreditRepositoryFacade interface {
	CreditProfileReader
	CreditProfileWriter
	CreditLedgerWriter
	CreditLedgerReader
	TransactionManager
}
