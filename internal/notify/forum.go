// Package notify builds broadcast notifications.
package notify

import (
	"context"
	"fmt"
	"unicode/utf8"

	"ferretcontrol/internal/models"
	"ferretcontrol/internal/telemetry"
)

const excerptLen = 50

type Store interface {
	ListUserIDsExcept(ctx context.Context, userID uint) ([]uint, error)
	CreateNotifications(ctx context.Context, batch []models.SecurityNotification) error
}

// ForumPost sends one FORUM_POST notification to every account except the
// author, as a single bulk insert. It returns the number created.
func ForumPost(ctx context.Context, store Store, author *models.User, post *models.ForumPost) (int, error) {
	ids, err := store.ListUserIDsExcept(ctx, author.ID)
	if err != nil {
		return 0, fmt.Errorf("list recipients: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	msg := fmt.Sprintf("%s published a new message: %s", author.Username, Excerpt(post.Content))
	batch := make([]models.SecurityNotification, 0, len(ids))
	for _, id := range ids {
		uid := id
		batch = append(batch, models.SecurityNotification{
			UserID:    &uid,
			Title:     "New forum message",
			Message:   msg,
			AlertType: models.AlertForumPost,
		})
	}
	if err := store.CreateNotifications(ctx, batch); err != nil {
		return 0, fmt.Errorf("create notifications: %w", err)
	}

	telemetry.NotificationsCreated.WithLabelValues(string(models.AlertForumPost)).Add(float64(len(batch)))
	return len(batch), nil
}

// Excerpt returns at most 50 characters of s, with "..." appended when cut.
func Excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	return string([]rune(s)[:excerptLen]) + "..."
}
