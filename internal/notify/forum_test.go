package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ferretcontrol/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users   []uint
	created []models.SecurityNotification
	calls   int
	err     error
}

func (f *fakeStore) ListUserIDsExcept(_ context.Context, userID uint) ([]uint, error) {
	var out []uint
	for _, id := range f.users {
		if id != userID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateNotifications(_ context.Context, batch []models.SecurityNotification) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, batch...)
	return nil
}

func TestForumPostFansOutToEveryoneButAuthor(t *testing.T) {
	store := &fakeStore{users: []uint{1, 2, 3, 4, 5}}
	author := &models.User{ID: 3, Username: "carol"}
	post := &models.ForumPost{ID: 10, AuthorID: 3, Content: "patch the VPN gateway tonight"}

	n, err := ForumPost(context.Background(), store, author, post)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 1, store.calls, "single bulk insert")

	require.Len(t, store.created, 4)
	for _, note := range store.created {
		require.NotNil(t, note.UserID)
		assert.NotEqual(t, author.ID, *note.UserID)
		assert.Equal(t, models.AlertForumPost, note.AlertType)
		assert.Contains(t, note.Message, "carol")
		assert.Contains(t, note.Message, post.Content)
	}
}

func TestForumPostNoOtherUsers(t *testing.T) {
	store := &fakeStore{users: []uint{1}}
	n, err := ForumPost(context.Background(), store, &models.User{ID: 1}, &models.ForumPost{Content: "hi"})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, store.calls)
}

func TestForumPostStoreError(t *testing.T) {
	store := &fakeStore{users: []uint{1, 2}, err: errors.New("insert failed")}
	_, err := ForumPost(context.Background(), store, &models.User{ID: 1}, &models.ForumPost{Content: "hi"})
	assert.Error(t, err)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short"))

	exact := strings.Repeat("x", 50)
	assert.Equal(t, exact, Excerpt(exact))

	long := strings.Repeat("y", 80)
	got := Excerpt(long)
	assert.Equal(t, strings.Repeat("y", 50)+"...", got)

	accents := strings.Repeat("ñ", 60)
	assert.Equal(t, strings.Repeat("ñ", 50)+"...", Excerpt(accents))
}
