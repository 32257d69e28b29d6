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

var assetOrdering = map[string]string{
	"created_at":     "information_assets.created_at",
	"criticality":    "information_assets.criticality",
	"classification": "information_assets.classification",
}

type AssetHandler struct {
	db *gorm.DB
}

func NewAssetHandler(db *gorm.DB) *AssetHandler {
	return &AssetHandler{db: db}
}

type assetResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	AssetType        string    `json:"asset_type"`
	Source           string    `json:"source"`
	Classification   string    `json:"classification"`
	Criticality      int       `json:"criticality"`
	CriticalityLabel string    `json:"criticality_display"`
	Tags             string    `json:"tags"`
	Description      string    `json:"description"`
	Owner            *uint     `json:"owner"`
	OwnerUsername    string    `json:"owner_username,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toAssetResponse(a *models.InformationAsset) assetResponse {
	out := assetResponse{
		ID:               a.ID,
		Name:             a.Name,
		AssetType:        string(a.AssetType),
		Source:           a.Source,
		Classification:   string(a.Classification),
		Criticality:      a.Criticality,
		CriticalityLabel: models.CriticalityLabel(a.Criticality),
		Tags:             a.Tags,
		Description:      a.Description,
		Owner:            a.OwnerID,
		CreatedAt:        a.CreatedAt,
	}
	if a.Owner != nil {
		out.OwnerUsername = a.Owner.Username
	}
	return out
}

type assetInput struct {
	Name           *string `json:"name"`
	AssetType      *string `json:"asset_type"`
	Source         *string `json:"source"`
	Classification *string `json:"classification"`
	Criticality    *int    `json:"criticality"`
	Tags           *string `json:"tags"`
	Description    *string `json:"description"`
}

// apply copies the provided fields onto a. full requires every mandatory field.
func (in assetInput) apply(a *models.InformationAsset, full bool) error {
	if full && (in.Name == nil || in.AssetType == nil || in.Classification == nil) {
		return fmt.Errorf("name, asset_type and classification are required")
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return fmt.Errorf("name may not be blank")
		}
		a.Name = name
	}
	if in.AssetType != nil {
		t := models.AssetType(*in.AssetType)
		if !t.Valid() {
			return fmt.Errorf("%q is not a valid asset_type", *in.AssetType)
		}
		a.AssetType = t
	}
	if in.Classification != nil {
		cl := models.Classification(*in.Classification)
		if !cl.Valid() {
			return fmt.Errorf("%q is not a valid classification", *in.Classification)
		}
		a.Classification = cl
	}
	if in.Criticality != nil {
		if *in.Criticality < 1 || *in.Criticality > 5 {
			return fmt.Errorf("criticality must be between 1 and 5")
		}
		a.Criticality = *in.Criticality
	}
	if in.Source != nil {
		a.Source = *in.Source
	}
	if in.Tags != nil {
		a.Tags = *in.Tags
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	return nil
}

func (h *AssetHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Preload("Owner")
	q = applySearch(q, c.Query("search"),
		"information_assets.name", "information_assets.source",
		"information_assets.tags", "information_assets.description")
	q = q.Order(orderClause(c.Query("ordering"), assetOrdering, "information_assets.created_at desc"))

	var assets []models.InformationAsset
	if err := q.Find(&assets).Error; err != nil {
		respondDBError(c, err)
		return
	}
	out := make([]assetResponse, len(assets))
	for i := range assets {
		out[i] = toAssetResponse(&assets[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *AssetHandler) load(c *gin.Context) (*models.InformationAsset, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	var a models.InformationAsset
	if err := h.db.WithContext(c.Request.Context()).Preload("Owner").First(&a, id).Error; err != nil {
		respondDBError(c, err)
		return nil, false
	}
	return &a, true
}

func (h *AssetHandler) Get(c *gin.Context) {
	a, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toAssetResponse(a))
}

func (h *AssetHandler) Create(c *gin.Context) {
	var in assetInput
	if !bindJSON(c, &in) {
		return
	}
	user := currentUser(c)
	a := models.InformationAsset{Criticality: models.DefaultCriticality, OwnerID: &user.ID}
	if err := in.apply(&a, true); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Omit("Owner").Create(&a).Error; err != nil {
		respondDBError(c, err)
		return
	}
	a.Owner = user
	c.JSON(http.StatusCreated, toAssetResponse(&a))
}

// Update serves PUT (all mandatory fields) and PATCH (any subset).
func (h *AssetHandler) Update(c *gin.Context) {
	a, ok := h.load(c)
	if !ok {
		return
	}
	var in assetInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.apply(a, c.Request.Method == http.MethodPut); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Omit("Owner").Save(a).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAssetResponse(a))
}

// DownloadAuthorship returns a plain-text certificate for the asset.
func (h *AssetHandler) DownloadAuthorship(c *gin.Context) {
	a, ok := h.load(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="authorship_%d.txt"`, a.ID))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(authorshipCertificate(a)))
}

func authorshipCertificate(a *models.InformationAsset) string {
	owner := "Unknown"
	if a.Owner != nil {
		owner = a.Owner.Username
	}

	var b strings.Builder
	b.WriteString("=== INFORMATION ASSET AUTHORSHIP CERTIFICATE ===\n\n")
	fmt.Fprintf(&b, "ID: %d\n", a.ID)
	fmt.Fprintf(&b, "Name: %s\n", a.Name)
	fmt.Fprintf(&b, "Type: %s\n", a.AssetType)
	fmt.Fprintf(&b, "Classification: %s\n", a.Classification)
	fmt.Fprintf(&b, "Criticality: %s\n\n", models.CriticalityLabel(a.Criticality))
	fmt.Fprintf(&b, "Owner (Author): %s\n", owner)
	fmt.Fprintf(&b, "Registered: %s\n\n", a.CreatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("Description:\n")
	b.WriteString(a.Description)
	b.WriteString("\n\nGenerated by FerretControl\n")
	return b.String()
}
