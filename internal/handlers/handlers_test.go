package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/middleware"
	"ferretcontrol/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts struct {
	mu      sync.Mutex
	users   map[string]*models.User
	touched []uint
}

func newFakeAccounts(t *testing.T, users ...*models.User) *fakeAccounts {
	t.Helper()
	f := &fakeAccounts{users: map[string]*models.User{}}
	for _, u := range users {
		f.users[u.Username] = u
	}
	return f
}

func (f *fakeAccounts) FindByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccounts) FindByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccounts) TouchLastLogin(_ context.Context, id uint, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
	return nil
}

type loginCall struct {
	username string
	ip       string
}

type fakeGuard struct {
	mu       sync.Mutex
	logins   []loginCall
	logouts  []uint
	loginErr error
}

func (g *fakeGuard) OnLogin(_ context.Context, username, ip string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.logins = append(g.logins, loginCall{username, ip})
	return g.loginErr
}

func (g *fakeGuard) OnLogout(_ context.Context, user *models.User) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.logouts = append(g.logouts, user.ID)
	return nil
}

type fakeLockout struct {
	locked   bool
	failures map[string]int
	cleared  []string
}

func (l *fakeLockout) Locked(context.Context, string) (bool, error) { return l.locked, nil }

func (l *fakeLockout) RecordFailure(_ context.Context, key string) error {
	if l.failures == nil {
		l.failures = map[string]int{}
	}
	l.failures[key]++
	return nil
}

func (l *fakeLockout) Clear(_ context.Context, key string) error {
	l.cleared = append(l.cleared, key)
	return nil
}

type fakeResetStore struct {
	users    map[string]*models.User
	codes    []models.PasswordResetCode
	replaced map[uint]string
}

func (f *fakeResetStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeResetStore) CreateResetCode(_ context.Context, code *models.PasswordResetCode) error {
	f.codes = append(f.codes, *code)
	return nil
}

func (f *fakeResetStore) LatestResetCode(_ context.Context, userID uint, codeHash string, now time.Time) (*models.PasswordResetCode, error) {
	for i := len(f.codes) - 1; i >= 0; i-- {
		c := f.codes[i]
		if c.UserID == userID && c.CodeHash == codeHash && c.ExpiresAt.After(now) {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeResetStore) ReplacePassword(_ context.Context, userID uint, hash string) error {
	if f.replaced == nil {
		f.replaced = map[uint]string{}
	}
	f.replaced[userID] = hash
	f.codes = nil
	return nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

var errMailDown = errors.New("relay unavailable")

var testTokens = auth.NewManager("handlers-test-secret", time.Minute, time.Hour)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("ferret_session", cookie.NewStore([]byte("session-secret"))))
	return r
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password)
	require.NoError(t, err)
	return h
}

func doJSON(r http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

// withUser authenticates every request as u.
func withUser(u *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCurrentUser(c, u)
		c.Next()
	}
}
