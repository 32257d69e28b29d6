package handlers

import (
	"net/http"
	"testing"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/middleware"
	"ferretcontrol/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	accounts *fakeAccounts
	guard    *fakeGuard
	lockout  *fakeLockout
	handler  *AuthHandler
	engine   http.Handler
}

func newAuthFixture(t *testing.T, users ...*models.User) *authFixture {
	t.Helper()
	f := &authFixture{
		accounts: newFakeAccounts(t, users...),
		guard:    &fakeGuard{},
		lockout:  &fakeLockout{},
	}
	f.handler = NewAuthHandler(f.accounts, testTokens, f.guard, f.lockout)

	r := newEngine()
	r.POST("/api/auth/token", f.handler.Token)
	r.POST("/api/auth/refresh", f.handler.Refresh)
	r.POST("/api/auth/logout", middleware.RequireAuth(testTokens, f.accounts), f.handler.Logout)
	f.engine = r
	return f
}

func alice(t *testing.T) *models.User {
	return &models.User{ID: 1, Username: "alice", PasswordHash: mustHash(t, "s3cret!"), IsActive: true}
}

func TestTokenSuccess(t *testing.T) {
	f := newAuthFixture(t, alice(t))

	w := doJSON(f.engine, http.MethodPost, "/api/auth/token",
		map[string]string{"username": "alice", "password": "s3cret!"},
		http.Header{"X-Forwarded-For": {"203.0.113.9, 10.0.0.1"}})
	require.Equal(t, http.StatusOK, w.Code)

	var pair auth.TokenPair
	decode(t, w, &pair)
	claims, err := testTokens.Parse(pair.Access, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)

	require.Len(t, f.guard.logins, 1)
	assert.Equal(t, loginCall{"alice", "203.0.113.9"}, f.guard.logins[0])
	assert.Equal(t, []uint{1}, f.accounts.touched)
	assert.Equal(t, []string{"alice"}, f.lockout.cleared)
	assert.NotEmpty(t, w.Result().Cookies(), "session cookie is set")
}

func TestTokenWrongPassword(t *testing.T) {
	f := newAuthFixture(t, alice(t))

	w := doJSON(f.engine, http.MethodPost, "/api/auth/token",
		map[string]string{"username": "alice", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.guard.logins)
	assert.Equal(t, 1, f.lockout.failures["alice"])
}

func TestTokenUnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	w := doJSON(f.engine, http.MethodPost, "/api/auth/token",
		map[string]string{"username": "ghost", "password": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.guard.logins)
}

func TestTokenInactiveUser(t *testing.T) {
	u := alice(t)
	u.IsActive = false
	f := newAuthFixture(t, u)

	w := doJSON(f.engine, http.MethodPost, "/api/auth/token",
		map[string]string{"username": "alice", "password": "s3cret!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.guard.logins)
}

func TestTokenLockedOut(t *testing.T) {
	f := newAuthFixture(t, alice(t))
	f.lockout.locked = true

	w := doJSON(f.engine, http.MethodPost, "/api/auth/token",
		map[string]string{"username": "alice", "password": "s3cret!"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Empty(t, f.guard.logins)
}

func TestTokenGuardFailureStillReturnsTokens(t *testing.T) {
	f := newAuthFixture(t, alice(t))
	f.guard.loginErr = assert.AnError

	w := doJSON(f.engine, http.MethodPost, "/api/auth/token",
		map[string]string{"username": "alice", "password": "s3cret!"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokenMissingFields(t *testing.T) {
	f := newAuthFixture(t)
	w := doJSON(f.engine, http.MethodPost, "/api/auth/token", map[string]string{"username": "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(t)
	pair, err := testTokens.IssuePair(1, "alice")
	require.NoError(t, err)

	w := doJSON(f.engine, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh": pair.Refresh}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(f.engine, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh": pair.Access}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutTwice(t *testing.T) {
	f := newAuthFixture(t, alice(t))
	pair, err := testTokens.IssuePair(1, "alice")
	require.NoError(t, err)
	h := http.Header{"Authorization": {"Bearer " + pair.Access}}

	for i := 0; i < 2; i++ {
		w := doJSON(f.engine, http.MethodPost, "/api/auth/logout", nil, h)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Logout successful"}`, w.Body.String())
	}
	assert.Equal(t, []uint{1, 1}, f.guard.logouts)
}

func TestLogoutAnonymous(t *testing.T) {
	f := newAuthFixture(t)
	w := doJSON(f.engine, http.MethodPost, "/api/auth/logout", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
