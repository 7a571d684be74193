package domain

// UserRole scopes what an authenticated actor may do.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleStaff  UserRole = "STAFF"
	RoleFarmer UserRole = "FARMER"
)

// User is a platform login (staff, admin or farmer). Farmer users carry the
// FarmerID they act for; staff users leave it empty.
type User struct {
	UserID       string   `json:"userID"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	FarmerID     string   `json:"farmerID,omitempty"`
	IsActive     bool     `json:"isActive"`
	AuditFields
}

// CanApprove reports whether the user may grant credit or act on requests.
func (u *User) CanApprove() bool {
	return u.Role == RoleAdmin || u.Role == RoleStaff
}
