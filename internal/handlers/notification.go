package handlers

import (
	"context"
	"net/http"
	"time"

	"ferretcontrol/internal/models"

	"github.com/gin-gonic/gin"
)

// NotificationStore is implemented by database.NotificationRepository.
type NotificationStore interface {
	ListForUser(ctx context.Context, userID uint) ([]models.SecurityNotification, error)
	GetForUser(ctx context.Context, userID, id uint) (*models.SecurityNotification, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type NotificationHandler struct {
	store NotificationStore
}

func NewNotificationHandler(store NotificationStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

type notificationResponse struct {
	ID        uint      `json:"id"`
	User      *uint     `json:"user"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	AlertType string    `json:"alert_type"`
	IsRead    bool      `json:"is_read"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponse(n *models.SecurityNotification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		User:      n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		AlertType: string(n.AlertType),
		IsRead:    n.IsRead,
		IPAddress: n.IPAddress,
		CreatedAt: n.CreatedAt,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := currentUser(c)
	items, err := h.store.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondDBError(c, err)
		return
	}
	out := make([]notificationResponse, len(items))
	for i := range items {
		out[i] = toNotificationResponse(&items[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	n, err := h.store.GetForUser(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, toNotificationResponse(n))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.store.UnreadCount(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if _, err := h.store.MarkAllRead(c.Request.Context(), currentUser(c).ID); err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "marked as read"})
}

// MarkRead answers 404 for notifications of other users.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.MarkRead(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "marked as read"})
}
