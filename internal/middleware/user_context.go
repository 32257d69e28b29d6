package middleware

import (
	"context"
	"strings"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey     = "user"
	SessionUserKey = "user_id"
)

// UserLoader fetches the account behind a token or session.
type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// CurrentUser returns the account resolved by RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

func SetCurrentUser(c *gin.Context, u *models.User) {
	c.Set(ctxUserKey, u)
}

// resolveUserID looks at the bearer token first and the session cookie second.
// A malformed bearer token is not retried against the cookie.
func resolveUserID(c *gin.Context, tokens *auth.Manager) (uint, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return 0, false
		}
		claims, err := tokens.Parse(strings.TrimSpace(raw), auth.TokenAccess)
		if err != nil {
			return 0, false
		}
		return claims.UserID, true
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get(SessionUserKey).(uint); ok && uid > 0 {
		return uid, true
	}
	return 0, false
}
