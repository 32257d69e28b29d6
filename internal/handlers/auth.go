package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/middleware"
	"ferretcontrol/internal/models"
	"ferretcontrol/internal/security"
	"ferretcontrol/internal/telemetry"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const badCredentials = "No active account found with the given credentials"

type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// LoginGuard is implemented by *security.Guard.
type LoginGuard interface {
	OnLogin(ctx context.Context, username, ip string) error
	OnLogout(ctx context.Context, user *models.User) error
}

type AuthHandler struct {
	accounts AccountStore
	tokens   *auth.Manager
	guard    LoginGuard
	lockout  security.Lockout
	now      func() time.Time
}

func NewAuthHandler(accounts AccountStore, tokens *auth.Manager, guard LoginGuard, lockout security.Lockout) *AuthHandler {
	if lockout == nil {
		lockout = security.NoopLockout{}
	}
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
		guard:    guard,
		lockout:  lockout,
		now:      time.Now,
	}
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Token authenticates username/password and returns an access/refresh pair.
// Session tracking runs afterwards and never changes the outcome.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	locked, err := h.lockout.Locked(ctx, req.Username)
	if err != nil {
		slog.Warn("lockout check failed", "username", req.Username, "error", err)
	}
	if locked {
		telemetry.LoginsTotal.WithLabelValues("locked").Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Too many failed login attempts. Try again later."})
		return
	}

	user, err := h.accounts.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondDBError(c, err)
		return
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.recordFailure(ctx, req.Username)
		telemetry.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": badCredentials})
		return
	}
	if !user.IsActive {
		telemetry.LoginsTotal.WithLabelValues("inactive").Inc()
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": badCredentials})
		return
	}

	if err := h.lockout.Clear(ctx, user.Username); err != nil {
		slog.Warn("lockout clear failed", "username", user.Username, "error", err)
	}

	pair, err := h.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		slog.Error("issue tokens", "user_id", user.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.accounts.TouchLastLogin(ctx, user.ID, h.now()); err != nil {
		slog.Warn("update last_login failed", "user_id", user.ID, "error", err)
	}
	if err := h.guard.OnLogin(ctx, user.Username, security.ClientIP(c.Request)); err != nil {
		slog.Error("session guard login failed", "user_id", user.ID, "error", err)
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		slog.Warn("save session cookie", "user_id", user.ID, "error", err)
	}

	telemetry.LoginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) recordFailure(ctx context.Context, username string) {
	if err := h.lockout.RecordFailure(ctx, username); err != nil {
		slog.Warn("lockout record failed", "username", username, "error", err)
	}
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	access, err := h.tokens.Refresh(req.Refresh)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout marks the caller logged out. Repeating it is harmless.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if err := h.guard.OnLogout(c.Request.Context(), user); err != nil {
		if errors.Is(err, security.ErrUnauthenticated) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		slog.Error("session guard logout failed", "error", err)
		respondError(c, http.StatusInternalServerError, "logout failed")
		return
	}

	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
