package mapping

import (
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	"github.com/maziwaops/dairy_credit_app/internal/models"
)

// ToModelFarmer converts a domain farmer for DB storage.
func ToModelFarmer(d domain.Farmer) models.Farmer {
	return models.Farmer{
		FarmerID:    d.FarmerID,
		Name:        d.Name,
		Phone:       d.Phone,
		Route:       d.Route,
		Tier:        string(d.Tier),
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFarmer converts a DB farmer row to its domain form.
func ToDomainFarmer(m models.Farmer) domain.Farmer {
	return domain.Farmer{
		FarmerID:    m.FarmerID,
		Name:        m.Name,
		Phone:       m.Phone,
		Route:       m.Route,
		Tier:        domain.FarmerTier(m.Tier),
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelCollection converts a domain collection for DB storage.
func ToModelCollection(d domain.Collection) models.Collection {
	return models.Collection{
		CollectionID:   d.CollectionID,
		FarmerID:       d.FarmerID,
		QuantityLitres: d.QuantityLitres,
		RatePerLitre:   d.RatePerLitre,
		TotalAmount:    d.TotalAmount,
		Status:         string(d.Status),
		CollectedAt:    d.CollectedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCollection converts a DB collection row to its domain form.
func ToDomainCollection(m models.Collection) domain.Collection {
	return domain.Collection{
		CollectionID:   m.CollectionID,
		FarmerID:       m.FarmerID,
		QuantityLitres: m.QuantityLitres,
		RatePerLitre:   m.RatePerLitre,
		TotalAmount:    m.TotalAmount,
		Status:         domain.CollectionStatus(m.Status),
		CollectedAt:    m.CollectedAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
