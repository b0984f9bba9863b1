package event

import (
	"context"
	"testing"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/chat"
	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/models"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/DhavalSuthar-24/huddle/internal/store/storetest"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	all := append([]interface{}{&user.User{}, &Event{}}, chat.Models()...)
	return storetest.Open(t, all...)
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	u := &user.User{FullName: id, Email: id + "@example.com", PasswordHash: "x", Role: user.RoleMember}
	u.ID = id
	require.NoError(t, db.Create(u).Error)
}

func loadUser(t *testing.T, db *gorm.DB, id string) *user.User {
	t.Helper()
	u, err := user.Load(db, id)
	require.NoError(t, err)
	return u
}

func newEvent(host string, cat sport.Category, date time.Time) *Event {
	return &Event{
		Title:           string(cat) + " meetup",
		HostID:          host,
		Sport:           cat,
		Date:            date,
		MaxParticipants: 4,
		Location:        Location{Name: "Park", Latitude: 40.7, Longitude: -74},
	}
}

func TestCreate_DefaultsAndLinks(t *testing.T) {
	db := openDB(t)
	seedUser(t, db, "host")
	repo := NewEventRepository(db, 3, 24*time.Hour)
	ctx := context.Background()

	date := time.Now().UTC().Add(48 * time.Hour)
	e := newEvent("host", sport.Tennis, date)
	id, err := repo.Create(ctx, e)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.ExpiryDate)
	assert.WithinDuration(t, date.Add(24*time.Hour), *got.ExpiryDate, time.Second)
	assert.Empty(t, got.Participants, "host is not auto-joined")
	assert.NotEmpty(t, got.ChatRoomID)

	var room chat.CommunityChat
	require.NoError(t, db.First(&room, "id = ?", got.ChatRoomID).Error)
	require.NotNil(t, room.EventID)
	assert.Equal(t, id, *room.EventID)

	host := loadUser(t, db, "host")
	assert.Equal(t, []string{id}, []string(host.HostedEventIDs))

	_, err = repo.Create(ctx, newEvent("ghost", sport.Tennis, date))
	assert.ErrorIs(t, err, common.ErrValidation)

	bad := newEvent("host", sport.Category("curling"), date)
	_, err = repo.Create(ctx, bad)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestFetchUpcoming_OrderAndCategory(t *testing.T) {
	db := openDB(t)
	seedUser(t, db, "host")
	repo := NewEventRepository(db, 3, 24*time.Hour)
	ctx := context.Background()
	now := time.Now().UTC()

	later := newEvent("host", sport.Soccer, now.Add(10*time.Hour))
	sooner := newEvent("host", sport.Tennis, now.Add(5*time.Hour))
	past := newEvent("host", sport.Soccer, now.Add(-10*time.Hour))
	pastExpiry := now.Add(-2 * time.Hour)
	past.ExpiryDate = &pastExpiry

	for _, e := range []*Event{later, sooner, past} {
		_, err := repo.Create(ctx, e)
		require.NoError(t, err)
	}

	all, err := repo.FetchUpcoming(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, sooner.ID, all[0].ID)
	assert.Equal(t, later.ID, all[1].ID)

	soccer := sport.Soccer
	filtered, err := repo.FetchUpcoming(ctx, &soccer)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, later.ID, filtered[0].ID)

	hosted, err := repo.FetchByHost(ctx, "host", nil)
	require.NoError(t, err)
	require.Len(t, hosted, 3)
	assert.Equal(t, past.ID, hosted[0].ID, "ordered by date ascending")

	byIDs, err := repo.FetchByIDs(ctx, []string{later.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
}

func TestUpdate_HostOnlyAndCapacityFloor(t *testing.T) {
	db := openDB(t)
	seedUser(t, db, "host")
	repo := NewEventRepository(db, 3, 24*time.Hour)
	ctx := context.Background()

	e := newEvent("host", sport.Yoga, time.Now().UTC().Add(time.Hour))
	id, err := repo.Create(ctx, e)
	require.NoError(t, err)
	require.NoError(t, db.Model(&Event{}).Where("id = ?", id).
		Update("participants", models.StringSlice{"a", "b", "c"}).Error)

	_, err = repo.Update(ctx, "intruder", id, func(e *Event) (map[string]interface{}, error) {
		e.Title = "mine now"
		return map[string]interface{}{"title": e.Title}, nil
	})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = repo.Update(ctx, "host", id, func(e *Event) (map[string]interface{}, error) {
		e.MaxParticipants = 2
		return map[string]interface{}{"max_participants": 2}, nil
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	updated, err := repo.Update(ctx, "host", id, func(e *Event) (map[string]interface{}, error) {
		e.Title = "Sunrise yoga"
		e.MaxParticipants = 3
		return map[string]interface{}{"title": e.Title, "max_participants": 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Sunrise yoga", updated.Title)
	assert.True(t, updated.IsFull())
}

func TestDelete_UnlinksUsersAndChat(t *testing.T) {
	db := openDB(t)
	seedUser(t, db, "host")
	seedUser(t, db, "p1")
	repo := NewEventRepository(db, 3, 24*time.Hour)
	ctx := context.Background()

	e := newEvent("host", sport.Running, time.Now().UTC().Add(time.Hour))
	id, err := repo.Create(ctx, e)
	require.NoError(t, err)

	require.NoError(t, db.Model(&Event{}).Where("id = ?", id).Update("participants", models.StringSlice{"p1"}).Error)
	require.NoError(t, db.Model(&user.User{}).Where("id = ?", "p1").Update("joined_event_ids", models.StringSlice{id}).Error)

	members, err := repo.Members(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "p1"}, members)

	assert.ErrorIs(t, repo.Delete(ctx, "p1", id), common.ErrForbidden)
	require.NoError(t, repo.Delete(ctx, "host", id))

	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, loadUser(t, db, "host").HostedEventIDs)
	assert.Empty(t, loadUser(t, db, "p1").JoinedEventIDs)

	var rooms int64
	require.NoError(t, db.Model(&chat.CommunityChat{}).Count(&rooms).Error)
	assert.Zero(t, rooms)

	assert.ErrorIs(t, repo.Delete(ctx, "host", id), common.ErrNotFound)
}

func TestSweepExpired_RemovesOnlyExpired(t *testing.T) {
	db := openDB(t)
	seedUser(t, db, "host")
	repo := NewEventRepository(db, 3, 24*time.Hour)
	ctx := context.Background()
	now := time.Now().UTC()

	ids := make([]string, 0, 3)
	for i, offset := range []time.Duration{-48 * time.Hour, 2 * time.Hour, 4 * time.Hour} {
		e := newEvent("host", sport.Hiking, now.Add(offset))
		expiry := now.Add(offset + time.Hour)
		e.ExpiryDate = &expiry
		e.Title = []string{"old", "soon", "later"}[i]
		id, err := repo.Create(ctx, e)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	removed, err := repo.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = repo.GetByID(ctx, ids[0])
	assert.ErrorIs(t, err, common.ErrNotFound)
	for _, id := range ids[1:] {
		_, err := repo.GetByID(ctx, id)
		assert.NoError(t, err)
	}
	assert.ElementsMatch(t, ids[1:], []string(loadUser(t, db, "host").HostedEventIDs))

	removed, err = repo.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

// assertEventsWrittenFirst checks that every event row is written before any user row
// and that the event rows are deleted last.
func assertEventsWrittenFirst(t *testing.T, stmts []string, events int) {
	t.Helper()
	require.GreaterOrEqual(t, len(stmts), events+1, stmts)
	for i := 0; i < events; i++ {
		assert.Equal(t, "UPDATE events", stmts[i], stmts)
	}
	for _, s := range stmts[events:] {
		assert.NotEqual(t, "UPDATE events", s, stmts)
	}
	assert.Contains(t, stmts, "UPDATE users")
	assert.Equal(t, "DELETE events", stmts[len(stmts)-1], stmts)
}

func TestRemove_WritesEventsBeforeUsers(t *testing.T) {
	db := openDB(t)
	for _, id := range []string{"host", "p1", "p2"} {
		seedUser(t, db, id)
	}
	repo := NewEventRepository(db, 3, 24*time.Hour)
	ctx := context.Background()
	now := time.Now().UTC()

	join := func(eventID string, userIDs ...string) {
		require.NoError(t, db.Model(&Event{}).Where("id = ?", eventID).Update("participants", models.StringSlice(userIDs)).Error)
		for _, uid := range userIDs {
			u := loadUser(t, db, uid)
			joined, _ := u.JoinedEventIDs.Add(eventID)
			require.NoError(t, db.Model(&user.User{}).Where("id = ?", uid).Update("joined_event_ids", joined).Error)
		}
	}

	writes := storetest.RecordWrites(t, db)

	t.Run("delete", func(t *testing.T) {
		id, err := repo.Create(ctx, newEvent("host", sport.Running, now.Add(time.Hour)))
		require.NoError(t, err)
		join(id, "p1")

		writes.Reset()
		require.NoError(t, repo.Delete(ctx, "host", id))
		assertEventsWrittenFirst(t, writes.Statements(), 1)
	})

	t.Run("sweep", func(t *testing.T) {
		ids := make([]string, 0, 2)
		for i := 0; i < 2; i++ {
			e := newEvent("host", sport.Hiking, now.Add(-48*time.Hour))
			expiry := now.Add(-47 * time.Hour)
			e.ExpiryDate = &expiry
			id, err := repo.Create(ctx, e)
			require.NoError(t, err)
			ids = append(ids, id)
		}
		join(ids[0], "p1", "p2")
		join(ids[1], "p2")

		writes.Reset()
		removed, err := repo.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		assertEventsWrittenFirst(t, writes.Statements(), 2)

		for _, uid := range []string{"host", "p1", "p2"} {
			u := loadUser(t, db, uid)
			assert.Empty(t, u.JoinedEventIDs, uid)
			assert.Empty(t, u.HostedEventIDs, uid)
		}
	})
}
