package handlers

import (
	"errors"
	"net/http"

	"ferretcontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RiskControlHandler struct {
	db *gorm.DB
}

func NewRiskControlHandler(db *gorm.DB) *RiskControlHandler {
	return &RiskControlHandler{db: db}
}

type riskControlResponse struct {
	ID          uint   `json:"id"`
	Risk        uint   `json:"risk"`
	Control     uint   `json:"control"`
	ControlCode string `json:"control_code"`
	ControlName string `json:"control_name"`
	Applied     bool   `json:"applied"`
	Evidence    string `json:"evidence"`
	Notes       string `json:"notes"`
}

func toRiskControlResponse(rc *models.RiskControl) riskControlResponse {
	out := riskControlResponse{
		ID:       rc.ID,
		Risk:     rc.RiskID,
		Control:  rc.ControlID,
		Applied:  rc.Applied,
		Evidence: rc.Evidence,
		Notes:    rc.Notes,
	}
	if rc.Control != nil {
		out.ControlCode = rc.Control.Code
		out.ControlName = rc.Control.Name
	}
	return out
}

type riskControlInput struct {
	Risk     *uint   `json:"risk"`
	Control  *uint   `json:"control"`
	Applied  *bool   `json:"applied"`
	Evidence *string `json:"evidence"`
	Notes    *string `json:"notes"`
}

func (in riskControlInput) apply(rc *models.RiskControl, full bool) error {
	if full && (in.Risk == nil || in.Control == nil) {
		return errors.New("risk and control are required")
	}
	if in.Risk != nil {
		rc.RiskID = *in.Risk
	}
	if in.Control != nil {
		rc.ControlID = *in.Control
	}
	if in.Applied != nil {
		rc.Applied = *in.Applied
	}
	if in.Evidence != nil {
		rc.Evidence = *in.Evidence
	}
	if in.Notes != nil {
		rc.Notes = *in.Notes
	}
	return nil
}

// respondLinkError reports a duplicate (risk, control) pair as a validation error.
func respondLinkError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		respondError(c, http.StatusBadRequest, "this control is already linked to the risk")
		return
	}
	respondDBError(c, err)
}

func (h *RiskControlHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Joins("Risk").Joins("Control")
	q = applySearch(q, c.Query("search"), `"Risk"."title"`, `"Control"."code"`, `"Control"."name"`)

	var links []models.RiskControl
	if err := q.Order("risk_controls.id asc").Find(&links).Error; err != nil {
		respondDBError(c, err)
		return
	}
	out := make([]riskControlResponse, len(links))
	for i := range links {
		out[i] = toRiskControlResponse(&links[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *RiskControlHandler) load(c *gin.Context) (*models.RiskControl, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	var rc models.RiskControl
	if err := h.db.WithContext(c.Request.Context()).Joins("Control").First(&rc, "risk_controls.id = ?", id).Error; err != nil {
		respondDBError(c, err)
		return nil, false
	}
	return &rc, true
}

func (h *RiskControlHandler) Get(c *gin.Context) {
	rc, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toRiskControlResponse(rc))
}

func (h *RiskControlHandler) Create(c *gin.Context) {
	var in riskControlInput
	if !bindJSON(c, &in) {
		return
	}
	var rc models.RiskControl
	if err := in.apply(&rc, true); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	db := h.db.WithContext(c.Request.Context())
	if err := db.Omit("Risk", "Control").Create(&rc).Error; err != nil {
		respondLinkError(c, err)
		return
	}
	h.attachControl(db, &rc)
	c.JSON(http.StatusCreated, toRiskControlResponse(&rc))
}

func (h *RiskControlHandler) Update(c *gin.Context) {
	rc, ok := h.load(c)
	if !ok {
		return
	}
	var in riskControlInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.apply(rc, c.Request.Method == http.MethodPut); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	db := h.db.WithContext(c.Request.Context())
	if err := db.Omit("Risk", "Control").Save(rc).Error; err != nil {
		respondLinkError(c, err)
		return
	}
	h.attachControl(db, rc)
	c.JSON(http.StatusOK, toRiskControlResponse(rc))
}

func (h *RiskControlHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.RiskControl{}, id)
	if res.Error != nil {
		respondDBError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RiskControlHandler) attachControl(db *gorm.DB, rc *models.RiskControl) {
	var ct models.Control
	if err := db.First(&ct, rc.ControlID).Error; err == nil {
		rc.Control = &ct
	}
}
