package domain

// Farmer is the registry entry a CreditProfile belongs to.
// Full farmer CRUD lives outside this subsystem; the engine only needs
// enough to validate farmer IDs and classify tiers.
type Farmer struct {
	FarmerID string     `json:"farmerID"`
	Name     string     `json:"name"`
	Phone    string     `json:"phone"`
	Route    string     `json:"route"` // collection route, informational
	Tier     FarmerTier `json:"tier"`
	IsActive bool       `json:"isActive"`
	AuditFields
}
