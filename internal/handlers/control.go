package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"ferretcontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ControlHandler struct {
	db *gorm.DB
}

func NewControlHandler(db *gorm.DB) *ControlHandler {
	return &ControlHandler{db: db}
}

type controlResponse struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

func toControlResponse(ct *models.Control) controlResponse {
	return controlResponse{
		ID:          ct.ID,
		Code:        ct.Code,
		Name:        ct.Name,
		Domain:      ct.Domain,
		Description: ct.Description,
	}
}

type controlInput struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Domain      *string `json:"domain"`
	Description *string `json:"description"`
}

func (in controlInput) apply(ct *models.Control, full bool) error {
	if full && (in.Code == nil || in.Name == nil) {
		return fmt.Errorf("code and name are required")
	}
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		if code == "" {
			return fmt.Errorf("code may not be blank")
		}
		ct.Code = code
	}
	if in.Name != nil {
		ct.Name = strings.TrimSpace(*in.Name)
	}
	if in.Domain != nil {
		ct.Domain = *in.Domain
	}
	if in.Description != nil {
		ct.Description = *in.Description
	}
	return nil
}

func (h *ControlHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context())
	q = applySearch(q, c.Query("search"), "code", "name", "domain", "description")

	var controls []models.Control
	if err := q.Order("code asc").Find(&controls).Error; err != nil {
		respondDBError(c, err)
		return
	}
	out := make([]controlResponse, len(controls))
	for i := range controls {
		out[i] = toControlResponse(&controls[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *ControlHandler) load(c *gin.Context) (*models.Control, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	var ct models.Control
	if err := h.db.WithContext(c.Request.Context()).First(&ct, id).Error; err != nil {
		respondDBError(c, err)
		return nil, false
	}
	return &ct, true
}

func (h *ControlHandler) Get(c *gin.Context) {
	ct, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toControlResponse(ct))
}

func (h *ControlHandler) Create(c *gin.Context) {
	var in controlInput
	if !bindJSON(c, &in) {
		return
	}
	var ct models.Control
	if err := in.apply(&ct, true); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&ct).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toControlResponse(&ct))
}

func (h *ControlHandler) Update(c *gin.Context) {
	ct, ok := h.load(c)
	if !ok {
		return
	}
	var in controlInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.apply(ct, c.Request.Method == http.MethodPut); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Save(ct).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, toControlResponse(ct))
}

func (h *ControlHandler) Delete(c *gin.Context) {
	ct, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(ct).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
