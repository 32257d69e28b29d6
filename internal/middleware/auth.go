package middleware

import (
	"net/http"

	"ferretcontrol/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAuth rejects anonymous and inactive callers with 401.
func RequireAuth(tokens *auth.Manager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := resolveUserID(c, tokens)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}

		user, err := users.FindByID(c.Request.Context(), uid)
		if err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "User not found or inactive."})
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

// RequireStaff must run after RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}
