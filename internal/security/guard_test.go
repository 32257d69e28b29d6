package security

import (
	"context"
	"sync"
	"testing"
	"time"

	"ferretcontrol/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(users ...*models.User) (*Guard, *fakeSessionStore) {
	store := newFakeSessionStore(users...)
	g := NewGuard(store)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }
	return g, store
}

func TestGuardFirstLogin(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	g, store := newTestGuard(alice)

	require.NoError(t, g.OnLogin(context.Background(), "alice", "10.0.0.1"))

	assert.Len(t, store.alerts(models.AlertLoginSuccess), 1)
	assert.Empty(t, store.alerts(models.AlertConcurrentLogin))

	st := store.session(1)
	assert.Equal(t, models.SessionLoggedIn, st.State())
	assert.Equal(t, "10.0.0.1", st.LastIP)
}

func TestGuardSecondLoginWhileActive(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	g, store := newTestGuard(alice)
	ctx := context.Background()

	require.NoError(t, g.OnLogin(ctx, "alice", "10.0.0.1"))
	require.NoError(t, g.OnLogin(ctx, "alice", "192.168.1.7"))

	concurrent := store.alerts(models.AlertConcurrentLogin)
	require.Len(t, concurrent, 1)
	assert.Equal(t, "192.168.1.7", concurrent[0].IPAddress)
	assert.Contains(t, concurrent[0].Message, "192.168.1.7")
	assert.Contains(t, concurrent[0].Message, "10.0.0.1")
	require.NotNil(t, concurrent[0].UserID)
	assert.Equal(t, uint(1), *concurrent[0].UserID)

	assert.Len(t, store.alerts(models.AlertLoginSuccess), 2)

	// concurrent alert comes before the success alert of the same login
	n := store.notifications
	require.Len(t, n, 3)
	assert.Equal(t, models.AlertConcurrentLogin, n[1].AlertType)
	assert.Equal(t, models.AlertLoginSuccess, n[2].AlertType)
	assert.True(t, n[2].CreatedAt.After(n[1].CreatedAt))

	assert.Equal(t, "192.168.1.7", store.session(1).LastIP)
}

func TestGuardSameIPStillFlagsConcurrent(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	g, store := newTestGuard(alice)
	ctx := context.Background()

	require.NoError(t, g.OnLogin(ctx, "alice", "10.0.0.1"))
	require.NoError(t, g.OnLogin(ctx, "alice", "10.0.0.1"))

	assert.Len(t, store.alerts(models.AlertConcurrentLogin), 1)
}

func TestGuardUnknownUserIgnored(t *testing.T) {
	g, store := newTestGuard()

	require.NoError(t, g.OnLogin(context.Background(), "ghost", "10.0.0.1"))
	assert.Empty(t, store.notifications)
	assert.Empty(t, store.sessions)
}

func TestGuardStoreErrorPropagates(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	g, store := newTestGuard(alice)
	store.updateErr = errStore

	err := g.OnLogin(context.Background(), "alice", "10.0.0.1")
	assert.ErrorIs(t, err, errStore)
}

func TestGuardLogoutIdempotent(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	g, store := newTestGuard(alice)
	ctx := context.Background()

	require.NoError(t, g.OnLogin(ctx, "alice", "10.0.0.1"))
	require.NoError(t, g.OnLogout(ctx, alice))
	require.NoError(t, g.OnLogout(ctx, alice))
	assert.Equal(t, models.SessionLoggedOut, store.session(1).State())

	// a login after logout is not concurrent
	require.NoError(t, g.OnLogin(ctx, "alice", "10.0.0.2"))
	assert.Empty(t, store.alerts(models.AlertConcurrentLogin))
}

func TestGuardLogoutWithoutSessionRow(t *testing.T) {
	bob := &models.User{ID: 2, Username: "bob"}
	g, store := newTestGuard(bob)

	require.NoError(t, g.OnLogout(context.Background(), bob))
	assert.Equal(t, models.SessionLoggedOut, store.session(2).State())
}

func TestGuardLogoutRequiresUser(t *testing.T) {
	g, _ := newTestGuard()
	assert.ErrorIs(t, g.OnLogout(context.Background(), nil), ErrUnauthenticated)
	assert.ErrorIs(t, g.OnLogout(context.Background(), &models.User{}), ErrUnauthenticated)
}

func TestGuardParallelLoginsSerialize(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	g, store := newTestGuard(alice)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.OnLogin(context.Background(), "alice", "10.0.0.1"))
		}()
	}
	wg.Wait()

	assert.Len(t, store.alerts(models.AlertLoginSuccess), n)
	assert.Len(t, store.alerts(models.AlertConcurrentLogin), n-1)
}
