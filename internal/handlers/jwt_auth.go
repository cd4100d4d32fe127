package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/SAP-F-2025/lms-quiz-service/internal/config"
	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/lms-quiz-service/internal/utils"
)

// TokenClaims are the claims of a locally signed HS256 token
type TokenClaims struct {
	Role  models.UserRole `json:"role"`
	Email string          `json:"email,omitempty"`
	Name  string          `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthMiddleware authenticates HS256 tokens signed with a shared secret
type JWTAuthMiddleware struct {
	secret   []byte
	issuer   string
	userRepo repositories.UserRepository
	logger   utils.Logger
}

func NewJWTAuthMiddleware(cfg config.JWTConfig, userRepo repositories.UserRepository, logger utils.Logger) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (jm *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		claims, err := jm.parse(token)
		if err != nil {
			utils.FromContext(c.Request.Context(), jm.logger).Debug("Rejected token", "error", err)
			abortUnauthorized(c, "invalid token")
			return
		}

		user, err := jm.userRepo.GetByID(c.Request.Context(), claims.Subject)
		switch {
		case err == nil:
		case repositories.IsNotFoundError(err):
			user = userFromClaims(claims)
			if err := jm.userRepo.Upsert(c.Request.Context(), user); err != nil {
				utils.FromContext(c.Request.Context(), jm.logger).Error("User registration failed", "user_id", claims.Subject, "error", err)
				abortUnauthorized(c, "unable to resolve user")
				return
			}
		default:
			utils.FromContext(c.Request.Context(), jm.logger).Error("User lookup failed", "user_id", claims.Subject, "error", err)
			abortUnauthorized(c, "unable to resolve user")
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// userFromClaims builds the local record for a first-time subject. Email is unique,
// so a token without one falls back to the subject.
func userFromClaims(claims *TokenClaims) *models.User {
	user := &models.User{ID: claims.Subject, Email: claims.Email, FullName: claims.Name, Role: claims.Role}
	if user.Email == "" {
		user.Email = claims.Subject
	}
	if user.FullName == "" {
		user.FullName = claims.Subject
	}
	return user
}

func (jm *JWTAuthMiddleware) parse(token string) (*TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if jm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(jm.issuer))
	}

	claims := &TokenClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return jm.secret, nil
	}, opts...); err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	switch claims.Role {
	case models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
	case "":
		claims.Role = models.RoleStudent
	default:
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return claims, nil
}
