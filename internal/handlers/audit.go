package handlers

import (
	"net/http"
	"strconv"
	"time"

	"ferretcontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 200
	maxAuditLimit     = 1000
)

var auditOrdering = map[string]string{
	"timestamp": "audit_logs.timestamp",
	"action":    "audit_logs.action",
	"entity":    "audit_logs.entity",
}

type AuditHandler struct {
	db *gorm.DB
}

func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{db: db}
}

type auditResponse struct {
	ID        uint           `json:"id"`
	User      *uint          `json:"user"`
	Username  string         `json:"username,omitempty"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Path      string         `json:"path"`
	Method    string         `json:"method"`
	IP        string         `json:"ip"`
	UserAgent string         `json:"user_agent"`
	Success   bool           `json:"success"`
	Meta      map[string]any `json:"meta"`
	Timestamp time.Time      `json:"timestamp"`
}

func toAuditResponse(l *models.AuditLog) auditResponse {
	out := auditResponse{
		ID:        l.ID,
		User:      l.UserID,
		Action:    string(l.Action),
		Entity:    l.Entity,
		EntityID:  l.EntityID,
		Path:      l.Path,
		Method:    l.Method,
		IP:        l.IP,
		UserAgent: l.UserAgent,
		Success:   l.Success,
		Meta:      l.Meta,
		Timestamp: l.Timestamp,
	}
	if l.User != nil {
		out.Username = l.User.Username
	}
	return out
}

// List returns the newest audit records first, 200 by default.
func (h *AuditHandler) List(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	q := h.db.WithContext(c.Request.Context()).Joins("User")
	q = applySearch(q, c.Query("search"),
		"audit_logs.action", "audit_logs.entity", "audit_logs.entity_id",
		"audit_logs.path", `"User"."username"`)
	q = q.Order(orderClause(c.Query("ordering"), auditOrdering, "audit_logs.timestamp desc"))

	var logs []models.AuditLog
	if err := q.Limit(limit).Find(&logs).Error; err != nil {
		respondDBError(c, err)
		return
	}
	out := make([]auditResponse, len(logs))
	for i := range logs {
		out[i] = toAuditResponse(&logs[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *AuditHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var l models.AuditLog
	if err := h.db.WithContext(c.Request.Context()).Joins("User").First(&l, "audit_logs.id = ?", id).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuditResponse(&l))
}
