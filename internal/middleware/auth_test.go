package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"supercrm/internal/domain"
	"supercrm/internal/middleware"
	"supercrm/internal/service"
	"supercrm/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)

	userID := uuid.New()
	claims := &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{},
		UserID:           userID,
		Email:            "accounts@example.in",
		Role:             domain.RoleAccountant,
	}
	mockAuth.On("ValidateToken", "valid-token").Return(claims, nil)

	r := gin.New()
	r.Use(middleware.Authenticate(mockAuth))
	r.GET("/test", func(c *gin.Context) {
		actor, _ := middleware.CurrentActor(c)
		uid, _ := middleware.GetUserID(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": uid,
			"email":   actor.Email,
			"role":    actor.Role,
		})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer valid-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, userID.String(), resp["user_id"])
	assert.Equal(t, "accounts@example.in", resp["email"])
	assert.Equal(t, "accountant", resp["role"])
	mockAuth.AssertExpectations(t)
}

func TestAuthenticate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic some-token"},
		{"empty bearer", "Bearer "},
		{"expired token", "Bearer expired-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := new(mocks.MockAuthService)
			mockAuth.On("ValidateToken", "expired-token").Return(nil, domain.ErrUnauthorized).Maybe()

			r := gin.New()
			r.Use(middleware.Authenticate(mockAuth))
			r.GET("/test", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"UNAUTHORIZED"`)
		})
	}
}

func withRole(role domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetActor(c, middleware.Actor{UserID: uuid.New(), Role: role})
		c.Next()
	}
}

func TestRequireRole_Hierarchy(t *testing.T) {
	tests := []struct {
		name string
		role domain.UserRole
		min  domain.UserRole
		want int
	}{
		{"admin over accountant", domain.RoleAdmin, domain.RoleAccountant, http.StatusOK},
		{"accountant meets accountant", domain.RoleAccountant, domain.RoleAccountant, http.StatusOK},
		{"viewer below accountant", domain.RoleViewer, domain.RoleAccountant, http.StatusForbidden},
		{"accountant below admin", domain.RoleAccountant, domain.RoleAdmin, http.StatusForbidden},
		{"admin meets admin", domain.RoleAdmin, domain.RoleAdmin, http.StatusOK},
		{"viewer meets viewer", domain.RoleViewer, domain.RoleViewer, http.StatusOK},
		{"unknown role", domain.UserRole("auditor"), domain.RoleViewer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(withRole(tt.role))
			r.POST("/invoices", middleware.RequireRole(tt.min), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/invoices", http.NoBody)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole_NoActor(t *testing.T) {
	r := gin.New()
	r.GET("/admin", middleware.RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"FORBIDDEN"`)
}

func TestGetUserID_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := middleware.GetUserID(c)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
