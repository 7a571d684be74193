package models

// User mirrors the users table (staff, admin and farmer logins).
type User struct {
	UserID       string `db:"user_id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	FarmerID     string `db:"farmer_id"`
	IsActive     bool   `db:"is_active"`
	AuditFields
}
