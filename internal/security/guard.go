// Package security holds the login-side business rules: concurrent login
// detection, brute-force lockout and password reset codes.
package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ferretcontrol/internal/models"
	"ferretcontrol/internal/telemetry"

	"gorm.io/gorm"
)

var ErrUnauthenticated = errors.New("authentication required")

// SessionMutator changes a locked session row and returns the notifications
// to insert in the same transaction.
type SessionMutator func(st *models.UserSessionStatus) []models.SecurityNotification

type SessionStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	// UpdateSession loads (or creates, logged out) the user's session row under
	// a row lock, applies fn, and persists the row and fn's notifications atomically.
	UpdateSession(ctx context.Context, userID uint, fn SessionMutator) error
}

// Guard tracks the logged-in flag per account and raises notifications when a
// login arrives while the account is already marked as logged in. It never
// blocks a login.
type Guard struct {
	store SessionStore
	now   func() time.Time
}

func NewGuard(store SessionStore) *Guard {
	return &Guard{store: store, now: time.Now}
}

// OnLogin runs after a successful primary authentication. Unknown usernames
// are ignored.
func (g *Guard) OnLogin(ctx context.Context, username, ip string) error {
	user, err := g.store.FindUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup %q: %w", username, err)
	}

	now := g.now()
	var emitted []models.SecurityNotification
	err = g.store.UpdateSession(ctx, user.ID, func(st *models.UserSessionStatus) []models.SecurityNotification {
		emitted = loginTransition(st, user.ID, ip, now)
		return emitted
	})
	if err != nil {
		return fmt.Errorf("update session for user %d: %w", user.ID, err)
	}

	for _, n := range emitted {
		telemetry.NotificationsCreated.WithLabelValues(string(n.AlertType)).Inc()
		if n.AlertType == models.AlertConcurrentLogin {
			slog.Warn("concurrent login detected",
				"user_id", user.ID,
				"ip", ip,
			)
		}
	}
	return nil
}

// OnLogout marks the account logged out. Repeating it is a no-op.
func (g *Guard) OnLogout(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == 0 {
		return ErrUnauthenticated
	}
	now := g.now()
	return g.store.UpdateSession(ctx, user.ID, func(st *models.UserSessionStatus) []models.SecurityNotification {
		st.IsLoggedIn = false
		st.LastActivityAt = now
		return nil
	})
}

// loginTransition moves st to LOGGED_IN. A CONCURRENT_LOGIN notification is
// produced first whenever st was already LOGGED_IN, even from the same IP.
func loginTransition(st *models.UserSessionStatus, userID uint, ip string, now time.Time) []models.SecurityNotification {
	var out []models.SecurityNotification
	uid := userID

	if st.IsLoggedIn {
		out = append(out, models.SecurityNotification{
			UserID:    &uid,
			Title:     "Concurrent login attempt",
			Message:   fmt.Sprintf("A login from IP %s was detected while a session was still active (last IP: %s).", ip, displayIP(st.LastIP)),
			AlertType: models.AlertConcurrentLogin,
			IPAddress: ip,
			CreatedAt: now,
		})
	}

	st.IsLoggedIn = true
	st.LastIP = ip
	st.LastActivityAt = now

	out = append(out, models.SecurityNotification{
		UserID:    &uid,
		Title:     "Successful login",
		Message:   fmt.Sprintf("Signed in successfully from IP %s.", ip),
		AlertType: models.AlertLoginSuccess,
		IPAddress: ip,
		CreatedAt: now.Add(time.Microsecond), // sorts after the concurrent alert
	})
	return out
}

func displayIP(ip string) string {
	if ip == "" {
		return "unknown"
	}
	return ip
}
