package models

// Farmer mirrors the farmers table.
type Farmer struct {
	FarmerID string `db:"farmer_id"`
	Name     string `db:"name"`
	Phone    string `db:"phone"`
	Route    string `db:"route"`
	Tier     string `db:"tier"`
	IsActive bool   `db:"is_active"`
	AuditFields
}
