package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"supercrm/internal/domain"
	"supercrm/internal/service"
)

// ContextKeyActor holds the authenticated Actor for the request.
const ContextKeyActor = "actor"

const bearerPrefix = "Bearer "

// Actor is the caller behind an authenticated request.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   domain.UserRole
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// Authenticate validates the bearer token issued by the CRM identity service
// and stores the caller as an Actor. Tokens with an unknown role never get
// this far; the auth service rejects them.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || token == "" {
			abortAuth(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		SetActor(c, Actor{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
		c.Next()
	}
}

// RequireRole lets the request through when the actor's role is min or
// above in the admin > accountant > viewer ladder.
func RequireRole(min domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			abortAuth(c, http.StatusForbidden, "FORBIDDEN", "no authenticated actor")
			return
		}
		if !actor.Role.AtLeast(min) {
			abortAuth(c, http.StatusForbidden, "FORBIDDEN", "requires "+string(min)+" role or above")
			return
		}
		c.Next()
	}
}

// SetActor stores the actor on the context.
func SetActor(c *gin.Context, a Actor) {
	c.Set(ContextKeyActor, a)
}

// CurrentActor returns the actor stored by Authenticate.
func CurrentActor(c *gin.Context) (Actor, bool) {
	val, exists := c.Get(ContextKeyActor)
	if !exists {
		return Actor{}, false
	}
	a, ok := val.(Actor)
	return a, ok
}

// GetUserID returns the actor's user ID, or ErrUnauthorized when the
// request was not authenticated.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	a, ok := CurrentActor(c)
	if !ok || a.UserID == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return a.UserID, nil
}
