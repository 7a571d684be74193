package middleware

import "github.com/gin-gonic/gin"

// Keys used to store the authenticated user's identity in the request context.
const (
	userIDKey   = contextKey("userID")
	userRoleKey = contextKey("userRole")
	farmerIDKey = contextKey("farmerID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	val := c.Request.Context().Value(userIDKey)
	if val == nil {
		return "", false
	}
	userID, ok := val.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetUserRoleFromContext retrieves the authenticated user's role from the Gin context.
func GetUserRoleFromContext(c *gin.Context) (string, bool) {
	val := c.Request.Context().Value(userRoleKey)
	if val == nil {
		return "", false
	}
	role, ok := val.(string)
	if !ok || role == "" {
		return "", false
	}
	return role, true
}

// GetFarmerIDFromContext retrieves the farmer ID bound to the authenticated
// user, if any. Staff and admin users have none.
func GetFarmerIDFromContext(c *gin.Context) (string, bool) {
	val := c.Request.Context().Value(farmerIDKey)
	if val == nil {
		return "", false
	}
	farmerID, ok := val.(string)
	if !ok || farmerID == "" {
		return "", false
	}
	return farmerID, true
}
