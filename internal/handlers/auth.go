package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
)

// Context keys set by the auth middlewares
const (
	contextUserID    = "user_id"
	contextUser      = "user"
	contextUserRole  = "user_role"
	contextUserEmail = "user_email"
)

// AuthProvider authenticates requests. Casdoor and local JWT both implement it.
type AuthProvider interface {
	AuthMiddleware() gin.HandlerFunc
}

// RequireRoleMiddleware checks if user has one of the required roles. Admins always pass.
func RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return requireRoles(true, requiredRoles)
}

// RequireExactRoleMiddleware is RequireRoleMiddleware without the admin bypass. It
// guards routes that act on the caller's own submissions.
func RequireExactRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return requireRoles(false, requiredRoles)
}

func requireRoles(adminPasses bool, requiredRoles []models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "User role not found",
			})
			return
		}

		if adminPasses && role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
			Details: map[string]interface{}{"required_roles": requiredRoles},
		})
	}
}

// setUser stores the authenticated user in the gin context
func setUser(c *gin.Context, user *models.User) {
	c.Set(contextUserID, user.ID)
	c.Set(contextUser, user)
	c.Set(contextUserRole, user.Role)
	c.Set(contextUserEmail, user.Email)
}

// bearerToken extracts the token of a "Bearer <token>" Authorization header
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header missing")
	}

	tokenParts := strings.Fields(authHeader)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "bearer") {
		return "", fmt.Errorf("invalid authorization header format")
	}
	return tokenParts[1], nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Message: message,
	})
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get(contextUser)
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get(contextUserRole)
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
