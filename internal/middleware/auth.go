package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/memory-api/pkg/auth"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/httputil"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// Authenticator verifies access tokens
type Authenticator interface {
	Authenticate(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	authenticator Authenticator
}

func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// Required rejects requests without a valid bearer token
func (m *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized("missing or malformed authorization header"))
			return
		}

		claims, err := m.authenticator.Authenticate(token)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// Optional sets the user when a valid token is present and lets the request through otherwise
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := m.authenticator.Authenticate(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user, if any
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
