package middleware

import (
	"strings"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate
const (
	ContextUserID     = "userID"
	ContextRole       = "role"
	ContextPropertyID = "propertyID"
	ContextClaims     = "claims"
)

// extractToken strips the "Bearer " prefix
func extractToken(authHeader string) (string, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Authenticate validates the bearer token and, when roles are given, requires one of them.
// Browsers cannot set headers on websocket upgrades, so a token query parameter is also accepted.
func Authenticate(jwtService services.InterfaceJWTService, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if header := c.GetHeader("Authorization"); header != "" {
			t, ok := extractToken(header)
			if !ok {
				response.Unauthorized(c, "Authorization header format must be Bearer {token}")
				c.Abort()
				return
			}
			tokenString = t
		} else {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			response.Fail(c, code.ErrForbidden, nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		if claims.PropertyID != nil {
			c.Set(ContextPropertyID, *claims.PropertyID)
		}
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRoles checks the role stored by Authenticate
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRole)
		r, ok := role.(models.UserRole)
		if !ok || !hasRole(r, roles) {
			response.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func hasRole(role models.UserRole, allowed []models.UserRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
