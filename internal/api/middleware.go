package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
	"github.com/zanledger/server/internal/service"
)

// AuthCookieName is the HTTP-only cookie carrying the session token
const AuthCookieName = "auth-token"

const sessionKey = "session"

// tokenFromRequest reads the session cookie, falling back to a Bearer header
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}

	// Check if the Authorization header starts with "Bearer "
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AuthMiddleware returns a Gin middleware for authentication
func AuthMiddleware(svc service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			respondError(c, apperrors.ErrUnauthenticated)
			return
		}

		session := svc.ParseToken(tokenString)
		if session == nil {
			respondError(c, apperrors.ErrInvalidToken)
			return
		}

		// Set the identity in the context
		c.Set(sessionKey, *session)
		c.Set("userId", session.UserID)
		c.Set("role", session.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose session carries a different role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c).Role != role {
			if role == models.RoleAdmin {
				respondError(c, apperrors.ErrAdminOnly)
			} else {
				respondError(c, apperrors.ErrCustomerOnly)
			}
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) models.SessionUser {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(models.SessionUser); ok {
			return session
		}
	}
	return models.SessionUser{}
}
