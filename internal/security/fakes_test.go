package security

import (
	"context"
	"errors"
	"sync"
	"time"

	"ferretcontrol/internal/models"

	"gorm.io/gorm"
)

type fakeSessionStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	sessions      map[uint]*models.UserSessionStatus
	notifications []models.SecurityNotification
	updateErr     error
}

func newFakeSessionStore(users ...*models.User) *fakeSessionStore {
	f := &fakeSessionStore{
		users:    map[string]*models.User{},
		sessions: map[uint]*models.UserSessionStatus{},
	}
	for _, u := range users {
		f.users[u.Username] = u
	}
	return f
}

func (f *fakeSessionStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessionStore) UpdateSession(_ context.Context, userID uint, fn SessionMutator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	st, ok := f.sessions[userID]
	if !ok {
		uid := userID
		st = &models.UserSessionStatus{UserID: &uid}
	}
	next := *st
	notes := fn(&next)
	f.sessions[userID] = &next
	f.notifications = append(f.notifications, notes...)
	return nil
}

func (f *fakeSessionStore) session(userID uint) models.UserSessionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.sessions[userID]; ok {
		return *st
	}
	return models.UserSessionStatus{}
}

func (f *fakeSessionStore) alerts(t models.AlertType) []models.SecurityNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SecurityNotification
	for _, n := range f.notifications {
		if n.AlertType == t {
			out = append(out, n)
		}
	}
	return out
}

type fakeResetStore struct {
	users     map[string]*models.User
	codes     []models.PasswordResetCode
	passwords map[uint]string
	createErr error
	nextID    uint
}

func newFakeResetStore(users ...*models.User) *fakeResetStore {
	f := &fakeResetStore{
		users:     map[string]*models.User{},
		passwords: map[uint]string{},
	}
	for _, u := range users {
		f.users[u.Email] = u
		f.passwords[u.ID] = u.PasswordHash
	}
	return f
}

func (f *fakeResetStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeResetStore) CreateResetCode(_ context.Context, code *models.PasswordResetCode) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	code.ID = f.nextID
	f.codes = append(f.codes, *code)
	return nil
}

func (f *fakeResetStore) LatestResetCode(_ context.Context, userID uint, codeHash string, now time.Time) (*models.PasswordResetCode, error) {
	var best *models.PasswordResetCode
	for i := range f.codes {
		c := &f.codes[i]
		if c.UserID != userID || c.CodeHash != codeHash || !c.ExpiresAt.After(now) {
			continue
		}
		if best == nil || c.CreatedAt.After(best.CreatedAt) {
			best = c
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (f *fakeResetStore) ReplacePassword(_ context.Context, userID uint, passwordHash string) error {
	f.passwords[userID] = passwordHash
	kept := f.codes[:0]
	for _, c := range f.codes {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	f.codes = kept
	return nil
}

func (f *fakeResetStore) codesFor(userID uint) int {
	n := 0
	for _, c := range f.codes {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

var errStore = errors.New("store unavailable")
