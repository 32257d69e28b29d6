package handlers

import (
	"testing"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sptr(s string) *string { return &s }
func bptr(b bool) *bool     { return &b }

func TestApplyProfileCopiesOnlySentFields(t *testing.T) {
	p := &models.UserProfile{DisplayName: "Old", Bio: "keep me"}
	applyProfile(p, profileInput{
		DisplayName: sptr("New"),
		SocialLinks: map[string]any{"github": "https://github.com/new"},
	})

	assert.Equal(t, "New", p.DisplayName)
	assert.Equal(t, "keep me", p.Bio)
	assert.Equal(t, "https://github.com/new", p.SocialLinks["github"])
}

func TestApplyAccountHashesPassword(t *testing.T) {
	u := &models.User{}
	require.NoError(t, applyAccount(u, userInput{Username: sptr(" dave "), Password: sptr("pw")}, false))
	assert.Equal(t, "dave", u.Username)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "pw"))
}

func TestApplyAccountPrivilegedFields(t *testing.T) {
	u := &models.User{}
	err := applyAccount(u, userInput{IsStaff: bptr(true)}, false)
	assert.ErrorIs(t, err, errForbiddenField)
	assert.False(t, u.IsStaff)

	require.NoError(t, applyAccount(u, userInput{IsStaff: bptr(true), IsActive: bptr(true)}, true))
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsActive)
}

func TestToUserResponseWithoutProfile(t *testing.T) {
	out := toUserResponse(&models.User{ID: 3, Username: "erin"})
	assert.Equal(t, "erin", out.Username)
	assert.NotNil(t, out.SocialLinks)
}
