package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reportsvc/internal/domain"
	"reportsvc/internal/port"
)

const ContextKeyUser = "user"

func abortWithError(c *gin.Context, status int, key, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"errors": []gin.H{{"error_key": key, "error_message": message}},
	})
}

// Auth returns middleware that resolves the bearer token through the
// identity provider and injects the user into the request context.
func Auth(identity port.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, http.StatusUnauthorized,
				"authorization", "missing or invalid authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		user, err := identity.GetUser(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				abortWithError(c, http.StatusUnauthorized,
					"authorization", "invalid or expired token")
			} else {
				abortWithError(c, http.StatusInternalServerError,
					"internal_error", "identity provider unavailable")
			}
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireServiceRole rejects callers that are not internal services.
// Used on the parse-result ingestion endpoint.
func RequireServiceRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUser(c)
		if err != nil || user.Role != domain.RoleService {
			abortWithError(c, http.StatusForbidden,
				"forbidden", "service role required")
			return
		}
		c.Next()
	}
}

// GetUser extracts the authenticated user from the Gin context.
func GetUser(c *gin.Context) (*domain.User, error) {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, domain.ErrUnauthorized
	}
	return val.(*domain.User), nil
}
