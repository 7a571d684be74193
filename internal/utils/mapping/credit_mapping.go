package mapping

import (
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/maziwaops/dairy_credit_app/internal/models"
)

// ToModelCreditProfile converts a domain credit profile for DB storage.
func ToModelCreditProfile(d domain.CreditProfile) models.CreditProfile {
	return models.CreditProfile{
		FarmerID:          d.FarmerID,
		Tier:              string(d.Tier),
		LimitPercentage:   d.LimitPercentage,
		MaxCreditAmount:   d.MaxCreditAmount,
		CurrentBalance:    d.CurrentBalance,
		TotalUsed:         d.TotalUsed,
		PendingDeductions: d.PendingDeductions,
		IsFrozen:          d.IsFrozen,
		FreezeReason:      d.FreezeReason,
		Version:           d.Version,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCreditProfile converts a DB credit profile row to its domain form.
func ToDomainCreditProfile(m models.CreditProfile) domain.CreditProfile {
	return domain.CreditProfile{
		FarmerID:          m.FarmerID,
		Tier:              domain.FarmerTier(m.Tier),
		LimitPercentage:   m.LimitPercentage,
		MaxCreditAmount:   m.MaxCreditAmount,
		CurrentBalance:    m.CurrentBalance,
		TotalUsed:         m.TotalUsed,
		PendingDeductions: m.PendingDeductions,
		IsFrozen:          m.IsFrozen,
		FreezeReason:      m.FreezeReason,
		Version:           m.Version,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelCreditTransaction converts a domain ledger entry for DB storage.
func ToModelCreditTransaction(d domain.CreditTransaction) models.CreditTransaction {
	return models.CreditTransaction{
		TransactionID: d.TransactionID,
		FarmerID:      d.FarmerID,
		Type:          string(d.Type),
		Amount:        d.Amount,
		BalanceAfter:  d.BalanceAfter,
		Description:   d.Description,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainCreditTransaction converts a DB ledger row to its domain form.
func ToDomainCreditTransaction(m models.CreditTransaction) domain.CreditTransaction {
	return domain.CreditTransaction{
		TransactionID: m.TransactionID,
		FarmerID:      m.FarmerID,
		Type:          domain.CreditTransactionType(m.Type),
		Amount:        m.Amount,
		BalanceAfter:  m.BalanceAfter,
		Description:   m.Description,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// ToDomainCreditTransactionSlice converts a slice of ledger rows.
func ToDomainCreditTransactionSlice(ms []models.CreditTransaction) []domain.CreditTransaction {
	ds := make([]domain.CreditTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCreditTransaction(m)
	}
	return ds
}

// ToModelCreditRequest converts a domain credit request for DB storage.
func ToModelCreditRequest(d domain.CreditRequest) models.CreditRequest {
	return models.CreditRequest{
		RequestID:                d.RequestID,
		FarmerID:                 d.FarmerID,
		ProductID:                d.ProductID,
		ProductName:              d.ProductName,
		Quantity:                 d.Quantity,
		UnitPrice:                d.UnitPrice,
		TotalAmount:              d.TotalAmount,
		Status:                   string(d.Status),
		AvailableCreditAtRequest: d.AvailableCreditAtRequest,
		ApprovedBy:               d.ApprovedBy,
		ApprovedAt:               d.ApprovedAt,
		RejectionReason:          d.RejectionReason,
		CreatedAt:                d.CreatedAt,
	}
}

// ToDomainCreditRequest converts a DB credit request row to its domain form.
func ToDomainCreditRequest(m models.CreditRequest) domain.CreditRequest {
	return domain.CreditRequest{
		RequestID:                m.RequestID,
		FarmerID:                 m.FarmerID,
		ProductID:                m.ProductID,
		ProductName:              m.ProductName,
		Quantity:                 m.Quantity,
		UnitPrice:                m.UnitPrice,
		TotalAmount:              m.TotalAmount,
		Status:                   domain.CreditRequestStatus(m.Status),
		AvailableCreditAtRequest: m.AvailableCreditAtRequest,
		ApprovedBy:               m.ApprovedBy,
		ApprovedAt:               m.ApprovedAt,
		RejectionReason:          m.RejectionReason,
		CreatedAt:                m.CreatedAt,
	}
}

// ToDomainCreditRequestSlice converts a slice of credit request rows.
func ToDomainCreditRequestSlice(ms []models.CreditRequest) []domain.CreditRequest {
	ds := make([]domain.CreditRequest, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCreditRequest(m)
	}
	return ds
}
