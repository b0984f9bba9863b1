package user

import (
	"context"
	"testing"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) UserRepository {
	t.Helper()
	return NewUserRepository(storetest.Open(t, &User{}), 3)
}

func mustCreate(t *testing.T, repo UserRepository, name, email string) *User {
	t.Helper()
	u := &User{FullName: name, Email: email, PasswordHash: "x", NotificationsEnabled: true}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	require.NotEmpty(t, u.ID)
	return u
}

func TestCreateAndGetUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := mustCreate(t, repo, "Ada", "ada@example.com")

	got, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleMember, got.Role)
	assert.Empty(t, got.JoinedEventIDs)

	byEmail, err := repo.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.GetUserByID(ctx, "")
	assert.ErrorIs(t, err, common.ErrValidation)

	err = repo.CreateUser(ctx, &User{FullName: "Dup", Email: "ada@example.com", PasswordHash: "x"})
	assert.Error(t, err, "email is unique")
}

func TestUpdateUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := mustCreate(t, repo, "Ada", "ada@example.com")

	updated, err := repo.UpdateUser(ctx, u.ID, func(u *User) (map[string]interface{}, error) {
		u.SportPreferences = []string{"tennis", "yoga"}
		return map[string]interface{}{"sport_preferences": u.SportPreferences}, nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated.Version)

	got, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tennis", "yoga"}, []string(got.SportPreferences))

	_, err = repo.UpdateUser(ctx, u.ID, func(u *User) (map[string]interface{}, error) {
		return nil, common.ErrValidation
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestFollowUnfollow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	ada := mustCreate(t, repo, "Ada", "ada@example.com")
	bob := mustCreate(t, repo, "Bob", "bob@example.com")

	require.NoError(t, repo.Follow(ctx, ada.ID, bob.ID))
	require.NoError(t, repo.Follow(ctx, ada.ID, bob.ID), "following twice is a no-op")

	gotAda, err := repo.GetUserByID(ctx, ada.ID)
	require.NoError(t, err)
	gotBob, err := repo.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, []string(gotAda.Following))
	assert.Equal(t, []string{ada.ID}, []string(gotBob.Followers))

	require.NoError(t, repo.Unfollow(ctx, ada.ID, bob.ID))
	gotAda, err = repo.GetUserByID(ctx, ada.ID)
	require.NoError(t, err)
	gotBob, err = repo.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, gotAda.Following)
	assert.Empty(t, gotBob.Followers)

	assert.ErrorIs(t, repo.Follow(ctx, ada.ID, ada.ID), common.ErrValidation)
	assert.ErrorIs(t, repo.Follow(ctx, ada.ID, "ghost"), common.ErrNotFound)
}

func TestGetUsersByIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	bob := mustCreate(t, repo, "Bob", "bob@example.com")
	ada := mustCreate(t, repo, "Ada", "ada@example.com")

	users, err := repo.GetUsersByIDs(ctx, []string{bob.ID, ada.ID, "ghost"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ada", users[0].FullName)

	none, err := repo.GetUsersByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// writtenUserIDs returns the id bound in each recorded users UPDATE, in write order.
func writtenUserIDs(log *storetest.WriteLog, ids ...string) []string {
	known := map[string]bool{}
	for _, id := range ids {
		known[id] = true
	}
	var out []string
	for _, w := range log.Writes() {
		if w.Op != "UPDATE" || w.Table != "users" {
			continue
		}
		for _, v := range w.Vars {
			if s, ok := v.(string); ok && known[s] {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func TestFollow_WritesUsersInIDOrder(t *testing.T) {
	db := storetest.Open(t, &User{})
	repo := NewUserRepository(db, 3)
	ctx := context.Background()

	for _, id := range []string{"a-user", "b-user"} {
		u := &User{FullName: id, Email: id + "@example.com", PasswordHash: "x"}
		u.ID = id
		require.NoError(t, repo.CreateUser(ctx, u))
	}
	writes := storetest.RecordWrites(t, db)

	require.NoError(t, repo.Follow(ctx, "b-user", "a-user"))
	assert.Equal(t, []string{"a-user", "b-user"}, writtenUserIDs(writes, "a-user", "b-user"))

	writes.Reset()
	require.NoError(t, repo.Follow(ctx, "a-user", "b-user"))
	assert.Equal(t, []string{"a-user", "b-user"}, writtenUserIDs(writes, "a-user", "b-user"))

	writes.Reset()
	require.NoError(t, repo.Unfollow(ctx, "b-user", "a-user"))
	assert.Equal(t, []string{"a-user", "b-user"}, writtenUserIDs(writes, "a-user", "b-user"))

	a, err := repo.GetUserByID(ctx, "a-user")
	require.NoError(t, err)
	assert.Equal(t, []string{"b-user"}, []string(a.Following))
	assert.Empty(t, a.Followers)
}
