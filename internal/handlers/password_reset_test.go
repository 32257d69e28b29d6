package handlers

import (
	"net/http"
	"testing"

	"ferretcontrol/internal/models"
	"ferretcontrol/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResetEngine(store *fakeResetStore, mailer *fakeMailer) http.Handler {
	h := NewPasswordResetHandler(security.NewPasswordResets(store, mailer))
	r := newEngine()
	r.POST("/api/auth/password_reset/request", h.Request)
	r.POST("/api/auth/password_reset/confirm", h.Confirm)
	return r
}

func TestResetRequestSameAnswerForUnknownEmail(t *testing.T) {
	store := &fakeResetStore{users: map[string]*models.User{"bob@example.com": {ID: 2}}}
	mailer := &fakeMailer{}
	r := newResetEngine(store, mailer)

	known := doJSON(r, http.MethodPost, "/api/auth/password_reset/request", map[string]string{"email": "bob@example.com"}, nil)
	unknown := doJSON(r, http.MethodPost, "/api/auth/password_reset/request", map[string]string{"email": "nobody@example.com"}, nil)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Equal(t, []string{"bob@example.com"}, mailer.sent)
	assert.Len(t, store.codes, 1)
}

func TestResetRequestMissingEmail(t *testing.T) {
	r := newResetEngine(&fakeResetStore{}, &fakeMailer{})
	w := doJSON(r, http.MethodPost, "/api/auth/password_reset/request", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetRequestMailFailure(t *testing.T) {
	store := &fakeResetStore{users: map[string]*models.User{"bob@example.com": {ID: 2}}}
	r := newResetEngine(store, &fakeMailer{err: errMailDown})

	w := doJSON(r, http.MethodPost, "/api/auth/password_reset/request", map[string]string{"email": "bob@example.com"}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestResetConfirmWrongCode(t *testing.T) {
	store := &fakeResetStore{users: map[string]*models.User{"bob@example.com": {ID: 2}}}
	r := newResetEngine(store, &fakeMailer{})

	w := doJSON(r, http.MethodPost, "/api/auth/password_reset/confirm", map[string]string{
		"email": "bob@example.com", "code": "000000", "new_password": "n3w",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "Invalid or expired code", body["error"])
	assert.Empty(t, store.replaced)
}

func TestResetConfirmMissingFields(t *testing.T) {
	r := newResetEngine(&fakeResetStore{}, &fakeMailer{})
	w := doJSON(r, http.MethodPost, "/api/auth/password_reset/confirm", map[string]string{"email": "a@b"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
