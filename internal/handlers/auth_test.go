package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-quiz-service/internal/config"
	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type whoami struct {
	ID   string          `json:"id"`
	Role models.UserRole `json:"role"`
}

// authRouter serves GET /me behind the given middleware chain
func authRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	chain := append(middleware, func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, whoami{ID: user.ID, Role: user.Role})
	})
	router.GET("/me", chain...)
	return router
}

func getMe(t *testing.T, router http.Handler, token string) (*httptest.ResponseRecorder, whoami) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var me whoami
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	}
	return w, me
}

func signToken(t *testing.T, method jwt.SigningMethod, claims TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func claimsFor(subject string, role models.UserRole) TokenClaims {
	return TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "lms-quiz-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestRequireRoleMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		role       models.UserRole
		allowed    []models.UserRole
		exact      bool
		wantStatus int
	}{
		{"instructor allowed", models.RoleInstructor, []models.UserRole{models.RoleInstructor}, false, http.StatusOK},
		{"student rejected", models.RoleStudent, []models.UserRole{models.RoleInstructor}, false, http.StatusForbidden},
		{"admin always passes", models.RoleAdmin, []models.UserRole{models.RoleStudent}, false, http.StatusOK},
		{"missing role", "", []models.UserRole{models.RoleStudent}, false, http.StatusForbidden},
		{"exact role admits student", models.RoleStudent, []models.UserRole{models.RoleStudent}, true, http.StatusOK},
		{"exact role rejects admin", models.RoleAdmin, []models.UserRole{models.RoleStudent}, true, http.StatusForbidden},
		{"exact role lists admin", models.RoleAdmin, []models.UserRole{models.RoleAdmin}, true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRole := func(c *gin.Context) {
				c.Set(contextUser, &models.User{ID: "u1", Role: tt.role})
				if tt.role != "" {
					c.Set(contextUserRole, tt.role)
				}
			}
			guard := RequireRoleMiddleware(tt.allowed...)
			if tt.exact {
				guard = RequireExactRoleMiddleware(tt.allowed...)
			}
			router := authRouter(setRole, guard)

			w, _ := getMe(t, router, "")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	stored := &models.User{ID: "teacher-1", FullName: "Grace", Role: models.RoleInstructor}
	repo := newFakeUserRepo(stored)
	mw := NewJWTAuthMiddleware(config.JWTConfig{Secret: testSecret, Issuer: "lms-quiz-service"}, repo, discardLogger())
	router := authRouter(mw.AuthMiddleware())

	t.Run("stored user wins over claims", func(t *testing.T) {
		w, me := getMe(t, router, signToken(t, jwt.SigningMethodHS256, claimsFor("teacher-1", models.RoleStudent)))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.RoleInstructor, me.Role)
	})

	t.Run("unknown user registered from claims", func(t *testing.T) {
		claims := claimsFor("student-9", models.RoleStudent)
		claims.Email = "nine@example.com"
		claims.Name = "Nine"
		w, me := getMe(t, router, signToken(t, jwt.SigningMethodHS256, claims))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, whoami{ID: "student-9", Role: models.RoleStudent}, me)

		registered, ok := repo.users["student-9"]
		require.True(t, ok)
		assert.Equal(t, "nine@example.com", registered.Email)
		assert.Equal(t, "Nine", registered.FullName)
		assert.Equal(t, models.RoleStudent, registered.Role)

		exists, err := repo.ExistsByID(context.Background(), "student-9")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("claims without profile fall back to subject", func(t *testing.T) {
		w, _ := getMe(t, router, signToken(t, jwt.SigningMethodHS256, claimsFor("student-11", models.RoleStudent)))
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, repo.users, "student-11")
		assert.Equal(t, "student-11", repo.users["student-11"].Email)
	})

	t.Run("empty role defaults to student", func(t *testing.T) {
		w, me := getMe(t, router, signToken(t, jwt.SigningMethodHS256, claimsFor("student-10", "")))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.RoleStudent, me.Role)
	})

	rejected := map[string]func(t *testing.T) string{
		"missing header": func(t *testing.T) string { return "" },
		"garbage":        func(t *testing.T) string { return "not-a-token" },
		"unknown role": func(t *testing.T) string {
			return signToken(t, jwt.SigningMethodHS256, claimsFor("x", "superuser"))
		},
		"wrong algorithm": func(t *testing.T) string {
			return signToken(t, jwt.SigningMethodHS512, claimsFor("x", models.RoleStudent))
		},
		"expired": func(t *testing.T) string {
			claims := claimsFor("x", models.RoleStudent)
			claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return signToken(t, jwt.SigningMethodHS256, claims)
		},
		"no expiry": func(t *testing.T) string {
			claims := claimsFor("x", models.RoleStudent)
			claims.ExpiresAt = nil
			return signToken(t, jwt.SigningMethodHS256, claims)
		},
		"wrong issuer": func(t *testing.T) string {
			claims := claimsFor("x", models.RoleStudent)
			claims.Issuer = "someone-else"
			return signToken(t, jwt.SigningMethodHS256, claims)
		},
		"no subject": func(t *testing.T) string {
			return signToken(t, jwt.SigningMethodHS256, claimsFor("", models.RoleStudent))
		},
	}
	for name, token := range rejected {
		t.Run(name, func(t *testing.T) {
			w, _ := getMe(t, router, token(t))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	t.Run("repository failure", func(t *testing.T) {
		failing := newFakeUserRepo()
		failing.err = errors.New("database down")
		mw := NewJWTAuthMiddleware(config.JWTConfig{Secret: testSecret}, failing, discardLogger())

		w, _ := getMe(t, authRouter(mw.AuthMiddleware()), signToken(t, jwt.SigningMethodHS256, claimsFor("u1", models.RoleStudent)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("registration failure", func(t *testing.T) {
		failing := newFakeUserRepo()
		failing.upsertErr = errors.New("duplicate email")
		mw := NewJWTAuthMiddleware(config.JWTConfig{Secret: testSecret}, failing, discardLogger())

		w, _ := getMe(t, authRouter(mw.AuthMiddleware()), signToken(t, jwt.SigningMethodHS256, claimsFor("u2", models.RoleStudent)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, failing.users)
	})
}

type fakeTokenParser struct {
	claims *casdoorsdk.Claims
	err    error
}

func (p *fakeTokenParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.claims, nil
}

func TestCasdoorAuthMiddleware(t *testing.T) {
	claims := &casdoorsdk.Claims{
		User: casdoorsdk.User{
			Id:          "casdoor-42",
			DisplayName: "Ada",
			Email:       "ada@example.com",
			Roles:       []*casdoorsdk.Role{{Name: "teacher"}},
		},
	}

	t.Run("user from claims", func(t *testing.T) {
		mw := &CasdoorAuthMiddleware{parser: &fakeTokenParser{claims: claims}, userRepo: newFakeUserRepo(), logger: discardLogger()}
		w, me := getMe(t, authRouter(mw.AuthMiddleware()), "opaque")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, whoami{ID: "casdoor-42", Role: models.RoleInstructor}, me)
	})

	t.Run("user from repository", func(t *testing.T) {
		repo := newFakeUserRepo(&models.User{ID: "casdoor-42", Role: models.RoleAdmin})
		mw := &CasdoorAuthMiddleware{parser: &fakeTokenParser{claims: claims}, userRepo: repo, logger: discardLogger()}
		w, me := getMe(t, authRouter(mw.AuthMiddleware()), "opaque")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.RoleAdmin, me.Role)
	})

	t.Run("parser rejects token", func(t *testing.T) {
		mw := &CasdoorAuthMiddleware{parser: &fakeTokenParser{err: errors.New("bad signature")}, userRepo: newFakeUserRepo(), logger: discardLogger()}
		w, _ := getMe(t, authRouter(mw.AuthMiddleware()), "opaque")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("claims without id", func(t *testing.T) {
		mw := &CasdoorAuthMiddleware{parser: &fakeTokenParser{claims: &casdoorsdk.Claims{}}, userRepo: newFakeUserRepo(), logger: discardLogger()}
		w, _ := getMe(t, authRouter(mw.AuthMiddleware()), "opaque")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBearerToken(t *testing.T) {
	tests := map[string]struct {
		header  string
		want    string
		wantErr bool
	}{
		"valid":        {header: "Bearer abc", want: "abc"},
		"lower case":   {header: "bearer abc", want: "abc"},
		"missing":      {wantErr: true},
		"basic scheme": {header: "Basic abc", wantErr: true},
		"extra parts":  {header: "Bearer a b", wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			got, err := bearerToken(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
