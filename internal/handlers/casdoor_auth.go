package handlers

import (
	"context"
	"fmt"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-quiz-service/internal/config"
	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/lms-quiz-service/internal/utils"
)

// tokenParser is the part of the Casdoor client used to verify tokens
type tokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthMiddleware provides authentication using Casdoor SDK
type CasdoorAuthMiddleware struct {
	parser   tokenParser
	userRepo repositories.UserRepository
	logger   utils.Logger
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, userRepo repositories.UserRepository, logger utils.Logger) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorAuthMiddleware{
		parser:   client,
		userRepo: userRepo,
		logger:   logger,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		claims, err := cam.parser.ParseJwtToken(token)
		if err != nil {
			utils.FromContext(c.Request.Context(), cam.logger).Debug("Rejected Casdoor token", "error", err)
			abortUnauthorized(c, "invalid token")
			return
		}

		user, err := cam.extractUserFromClaims(c.Request.Context(), claims)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// extractUserFromClaims prefers the user repository and falls back to the token claims
func (cam *CasdoorAuthMiddleware) extractUserFromClaims(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	userID := claims.Id
	if userID == "" {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	user, err := cam.userRepo.GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		utils.FromContext(ctx, cam.logger).Warn("User lookup failed, using token claims", "user_id", userID, "error", err)
	}

	return createUserFromClaims(claims), nil
}

// createUserFromClaims creates a user model from JWT claims
func createUserFromClaims(claims *casdoorsdk.Claims) *models.User {
	user := &models.User{
		ID:            claims.Id,
		FullName:      claims.User.DisplayName,
		Email:         claims.User.Email,
		Role:          casdoor.MapCasdoorRoles(&claims.User),
		EmailVerified: claims.User.EmailVerified,
	}
	if claims.User.Avatar != "" {
		avatar := claims.User.Avatar
		user.AvatarURL = &avatar
	}
	return user
}
