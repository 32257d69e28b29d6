package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"ferretcontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var riskOrdering = map[string]string{
	"created_at": "risks.created_at",
	"score":      "risks.score",
	"level":      "risks.level",
	"status":     "risks.status",
}

type RiskHandler struct {
	db *gorm.DB
}

func NewRiskHandler(db *gorm.DB) *RiskHandler {
	return &RiskHandler{db: db}
}

type riskResponse struct {
	ID          uint      `json:"id"`
	Asset       uint      `json:"asset"`
	AssetName   string    `json:"asset_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Likelihood  int       `json:"likelihood"`
	Impact      int       `json:"impact"`
	Score       int       `json:"score"`
	Level       string    `json:"level"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRiskResponse(r *models.Risk) riskResponse {
	out := riskResponse{
		ID:          r.ID,
		Asset:       r.AssetID,
		Title:       r.Title,
		Description: r.Description,
		Likelihood:  r.Likelihood,
		Impact:      r.Impact,
		Score:       r.Score,
		Level:       string(r.Level),
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
	if r.Asset != nil {
		out.AssetName = r.Asset.Name
	}
	return out
}

// score and level are derived and never read from input
type riskInput struct {
	Asset       *uint   `json:"asset"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Likelihood  *int    `json:"likelihood"`
	Impact      *int    `json:"impact"`
	Status      *string `json:"status"`
}

func (in riskInput) apply(r *models.Risk, full bool) error {
	if full && (in.Asset == nil || in.Title == nil) {
		return fmt.Errorf("asset and title are required")
	}
	if in.Asset != nil {
		r.AssetID = *in.Asset
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return fmt.Errorf("title may not be blank")
		}
		r.Title = title
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Likelihood != nil {
		r.Likelihood = *in.Likelihood
	}
	if in.Impact != nil {
		r.Impact = *in.Impact
	}
	if in.Status != nil {
		st := models.RiskStatus(*in.Status)
		if !st.Valid() {
			return fmt.Errorf("%q is not a valid status", *in.Status)
		}
		r.Status = st
	}
	return nil
}

func (h *RiskHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Joins("Asset")
	q = applySearch(q, c.Query("search"), "risks.title", "risks.description", `"Asset"."name"`)
	q = q.Order(orderClause(c.Query("ordering"), riskOrdering, "risks.created_at desc"))

	var risks []models.Risk
	if err := q.Find(&risks).Error; err != nil {
		respondDBError(c, err)
		return
	}
	out := make([]riskResponse, len(risks))
	for i := range risks {
		out[i] = toRiskResponse(&risks[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *RiskHandler) load(c *gin.Context) (*models.Risk, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	var r models.Risk
	if err := h.db.WithContext(c.Request.Context()).Joins("Asset").First(&r, "risks.id = ?", id).Error; err != nil {
		respondDBError(c, err)
		return nil, false
	}
	return &r, true
}

func (h *RiskHandler) Get(c *gin.Context) {
	r, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toRiskResponse(r))
}

func (h *RiskHandler) Create(c *gin.Context) {
	var in riskInput
	if !bindJSON(c, &in) {
		return
	}
	r := models.Risk{Likelihood: 1, Impact: 1, Status: models.RiskOpen}
	if err := in.apply(&r, true); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	db := h.db.WithContext(c.Request.Context())
	if err := db.Omit("Asset").Create(&r).Error; err != nil {
		respondDBError(c, err)
		return
	}
	h.attachAsset(db, &r)
	c.JSON(http.StatusCreated, toRiskResponse(&r))
}

// Update uses a full Save so the BeforeSave hook recomputes score and level.
func (h *RiskHandler) Update(c *gin.Context) {
	r, ok := h.load(c)
	if !ok {
		return
	}
	var in riskInput
	if !bindJSON(c, &in) {
		return
	}
	prevAsset := r.AssetID
	if err := in.apply(r, c.Request.Method == http.MethodPut); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	db := h.db.WithContext(c.Request.Context())
	if err := db.Omit("Asset").Save(r).Error; err != nil {
		respondDBError(c, err)
		return
	}
	if r.AssetID != prevAsset {
		h.attachAsset(db, r)
	}
	c.JSON(http.StatusOK, toRiskResponse(r))
}

func (h *RiskHandler) attachAsset(db *gorm.DB, r *models.Risk) {
	var a models.InformationAsset
	if err := db.Select("id", "name").First(&a, r.AssetID).Error; err == nil {
		r.Asset = &a
	} else {
		r.Asset = nil
	}
}
