package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"ferretcontrol/internal/middleware"
	"ferretcontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respondDBError maps translated gorm errors onto HTTP statuses.
func respondDBError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		respondError(c, http.StatusBadRequest, "already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		respondError(c, http.StatusBadRequest, "referenced record does not exist")
	default:
		slog.Error("database error", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusNotFound, "not found")
		return 0, false
	}
	return uint(id), true
}

// currentUser is only called behind RequireAuth.
func currentUser(c *gin.Context) *models.User {
	u, _ := middleware.CurrentUser(c)
	return u
}
