package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"provider-registration/backend/internal/security"
)

const bearerPrefix = "bearer "

// ClaimsExtractor verifies a token and returns its claims.
type ClaimsExtractor interface {
	ExtractClaims(token string) (*security.ProviderClaims, error)
}

// RequireBearer rejects requests without a valid Bearer token with 401 and
// stores the verified claims in the request context otherwise.
func RequireBearer(tokens ClaimsExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c)
			return
		}
		claims, err := tokens.ExtractClaims(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="provider-registration"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "missing or invalid authorization",
	})
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
