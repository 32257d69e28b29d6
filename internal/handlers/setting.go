package handlers

import (
	"net/http"
	"strings"

	"ferretcontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SettingHandler struct {
	db *gorm.DB
}

func NewSettingHandler(db *gorm.DB) *SettingHandler {
	return &SettingHandler{db: db}
}

type settingResponse struct {
	ID          uint   `json:"id"`
	Key         string `json:"key"`
	Value       bool   `json:"value"`
	Description string `json:"description"`
}

func toSettingResponse(s *models.SystemSetting) settingResponse {
	return settingResponse{ID: s.ID, Key: s.Key, Value: s.Value, Description: s.Description}
}

type settingInput struct {
	Key         *string `json:"key"`
	Value       *bool   `json:"value"`
	Description *string `json:"description"`
}

func (h *SettingHandler) List(c *gin.Context) {
	var settings []models.SystemSetting
	if err := h.db.WithContext(c.Request.Context()).Order("key asc").Find(&settings).Error; err != nil {
		respondDBError(c, err)
		return
	}
	out := make([]settingResponse, len(settings))
	for i := range settings {
		out[i] = toSettingResponse(&settings[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *SettingHandler) load(c *gin.Context) (*models.SystemSetting, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	var s models.SystemSetting
	if err := h.db.WithContext(c.Request.Context()).First(&s, id).Error; err != nil {
		respondDBError(c, err)
		return nil, false
	}
	return &s, true
}

func (h *SettingHandler) Get(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toSettingResponse(s))
}

func (h *SettingHandler) Create(c *gin.Context) {
	var in settingInput
	if !bindJSON(c, &in) {
		return
	}
	if in.Key == nil || strings.TrimSpace(*in.Key) == "" {
		respondError(c, http.StatusBadRequest, "key is required")
		return
	}
	s := models.SystemSetting{Key: strings.TrimSpace(*in.Key)}
	if in.Value != nil {
		s.Value = *in.Value
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&s).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSettingResponse(&s))
}

func (h *SettingHandler) Update(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	var in settingInput
	if !bindJSON(c, &in) {
		return
	}
	if c.Request.Method == http.MethodPut && (in.Key == nil || in.Value == nil) {
		respondError(c, http.StatusBadRequest, "key and value are required")
		return
	}
	if in.Key != nil {
		key := strings.TrimSpace(*in.Key)
		if key == "" {
			respondError(c, http.StatusBadRequest, "key may not be blank")
			return
		}
		s.Key = key
	}
	if in.Value != nil {
		s.Value = *in.Value
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if err := h.db.WithContext(c.Request.Context()).Save(s).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettingResponse(s))
}

func (h *SettingHandler) Delete(c *gin.Context) {
	s, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(s).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
