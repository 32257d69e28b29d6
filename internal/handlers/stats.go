package handlers

import (
	"net/http"
	"time"

	"ferretcontrol/internal/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatsHandler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db, now: time.Now}
}

func (h *StatsHandler) AccessControl(c *gin.Context) {
	stats, err := database.LoadAccessStats(c.Request.Context(), h.db, h.now())
	if err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
