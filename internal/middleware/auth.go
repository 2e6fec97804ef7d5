package middleware

import (
	"net/http"
	"strings"

	"shop_service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const identityKey = "identity"

// TokenParser verifies a bearer token and returns the caller it names.
type TokenParser interface {
	Parse(raw string) (domain.Identity, error)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// Auth rejects requests without a valid bearer token and stores the caller's
// identity in the gin context.
func Auth(tokens TokenParser, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			abort(c, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			log.Warn("Middleware: Invalid Authorization header format")
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		identity, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Warnf("Middleware: Token rejected: %v", err)
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(role domain.Role, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if identity.Role != role {
			log.Warnf("Middleware: User %s with role %s denied %s %s", identity.UserID, identity.Role, c.Request.Method, c.FullPath())
			abort(c, http.StatusForbidden, "Access denied. Insufficient permissions.")
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}
