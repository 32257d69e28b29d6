package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type userResponse struct {
	ID          uint           `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	IsStaff     bool           `json:"is_staff"`
	IsActive    bool           `json:"is_active"`
	LastLogin   *time.Time     `json:"last_login"`
	DateJoined  time.Time      `json:"date_joined"`
	DisplayName string         `json:"display_name"`
	Avatar      string         `json:"avatar"`
	Bio         string         `json:"bio"`
	SocialLinks map[string]any `json:"social_links"`
}

func toUserResponse(u *models.User) userResponse {
	out := userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsStaff:     u.IsStaff,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		DateJoined:  u.CreatedAt,
		SocialLinks: map[string]any{},
	}
	if p := u.Profile; p != nil {
		out.DisplayName = p.DisplayName
		out.Avatar = p.Avatar
		out.Bio = p.Bio
		if p.SocialLinks != nil {
			out.SocialLinks = p.SocialLinks
		}
	}
	return out
}

// userInput carries account fields and the flattened profile fields.
// The password is write-only.
type userInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsStaff  *bool   `json:"is_staff"`
	IsActive *bool   `json:"is_active"`

	profileInput
}

type profileInput struct {
	DisplayName *string        `json:"display_name"`
	Avatar      *string        `json:"avatar"`
	Bio         *string        `json:"bio"`
	SocialLinks map[string]any `json:"social_links"`
}

// applyProfile copies the profile fields that were sent onto p.
func applyProfile(p *models.UserProfile, in profileInput) {
	if in.DisplayName != nil {
		p.DisplayName = *in.DisplayName
	}
	if in.Avatar != nil {
		p.Avatar = *in.Avatar
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.SocialLinks != nil {
		p.SocialLinks = datatypes.JSONMap(in.SocialLinks)
	}
}

// applyAccount copies account fields. privileged gates is_staff/is_active.
func applyAccount(u *models.User, in userInput, privileged bool) error {
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return fmt.Errorf("username may not be blank")
		}
		u.Username = name
	}
	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.Password != nil {
		if *in.Password == "" {
			return fmt.Errorf("password may not be blank")
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	if in.IsStaff != nil || in.IsActive != nil {
		if !privileged {
			return errForbiddenField
		}
		if in.IsStaff != nil {
			u.IsStaff = *in.IsStaff
		}
		if in.IsActive != nil {
			u.IsActive = *in.IsActive
		}
	}
	return nil
}

var errForbiddenField = fmt.Errorf("only staff may change is_staff or is_active")

func (h *UserHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Preload("Profile")
	q = applySearch(q, c.Query("search"), "username", "email")

	var users []models.User
	if err := q.Order("created_at desc, id desc").Find(&users).Error; err != nil {
		respondDBError(c, err)
		return
	}
	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) load(c *gin.Context) (*models.User, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	var u models.User
	if err := h.db.WithContext(c.Request.Context()).Preload("Profile").First(&u, id).Error; err != nil {
		respondDBError(c, err)
		return nil, false
	}
	return &u, true
}

func (h *UserHandler) Get(c *gin.Context) {
	u, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// Create is staff only. New accounts are active and non-staff unless the
// request says otherwise.
func (h *UserHandler) Create(c *gin.Context) {
	var in userInput
	if !bindJSON(c, &in) {
		return
	}
	if in.Username == nil || in.Password == nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	u := models.User{IsActive: true, Profile: &models.UserProfile{}}
	if err := applyAccount(&u, in, true); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	applyProfile(u.Profile, in.profileInput)

	if err := h.db.WithContext(c.Request.Context()).Create(&u).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(&u))
}

// Update lets staff edit any account and everyone else edit their own.
func (h *UserHandler) Update(c *gin.Context) {
	caller := currentUser(c)
	u, ok := h.load(c)
	if !ok {
		return
	}
	if !caller.IsStaff && caller.ID != u.ID {
		respondError(c, http.StatusForbidden, "you may only edit your own account")
		return
	}

	var in userInput
	if !bindJSON(c, &in) {
		return
	}
	if c.Request.Method == http.MethodPut && in.Username == nil {
		respondError(c, http.StatusBadRequest, "username is required")
		return
	}
	if err := applyAccount(u, in, caller.IsStaff); err != nil {
		status := http.StatusBadRequest
		if err == errForbiddenField {
			status = http.StatusForbidden
		}
		respondError(c, status, err.Error())
		return
	}
	if u.Profile == nil {
		u.Profile = &models.UserProfile{UserID: u.ID}
	}
	applyProfile(u.Profile, in.profileInput)

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Save(u).Error; err != nil {
			return err
		}
		u.Profile.UserID = u.ID
		return tx.Save(u.Profile).Error
	})
	if err != nil {
		respondDBError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}
