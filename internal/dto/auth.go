package dto

// LoginRequest defines the credentials for a login attempt.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated identity.
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userID"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	FarmerID string `json:"farmerID,omitempty"`
}

// RegisterUserRequest defines the data needed to create a platform login.
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=ADMIN STAFF FARMER"`
	FarmerID string `json:"farmerID"` // required when role is FARMER
}
