package participation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/chat"
	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/models"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/DhavalSuthar-24/huddle/internal/store/storetest"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[string][]string
}

func (n *recordingNotifier) MembershipChanged(_ context.Context, userID string, joined []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.calls == nil {
		n.calls = map[string][]string{}
	}
	n.calls[userID] = append([]string(nil), joined...)
}

type fixture struct {
	db       *gorm.DB
	events   event.EventRepository
	engine   *Engine
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	all := append([]interface{}{&user.User{}, &event.Event{}}, chat.Models()...)
	db := storetest.Open(t, all...)
	n := &recordingNotifier{}
	return &fixture{
		db:       db,
		events:   event.NewEventRepository(db, 5, 24*time.Hour),
		engine:   NewEngine(NewGormStore(db, 5), n, zap.NewNop()),
		notifier: n,
	}
}

func (f *fixture) user(t *testing.T, id string) {
	t.Helper()
	u := &user.User{FullName: id, Email: id + "@example.com", PasswordHash: "x", Role: user.RoleMember}
	u.ID = id
	require.NoError(t, f.db.Create(u).Error)
}

func (f *fixture) event(t *testing.T, max int) string {
	t.Helper()
	id, err := f.events.Create(context.Background(), &event.Event{
		Title:           "Pickup",
		HostID:          "host",
		Sport:           sport.Basketball,
		Date:            time.Now().UTC().Add(2 * time.Hour),
		MaxParticipants: max,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) load(t *testing.T, eventID, userID string) (*event.Event, *user.User) {
	t.Helper()
	ev, err := event.Load(f.db, eventID)
	require.NoError(t, err)
	u, err := user.Load(f.db, userID)
	require.NoError(t, err)
	return ev, u
}

func TestJoin_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.user(t, "host")
	f.user(t, "u1")
	eventID := f.event(t, 4)
	ctx := context.Background()

	out, err := f.engine.Join(ctx, eventID, "u1")
	require.NoError(t, err)
	assert.True(t, out.Changed)

	out, err = f.engine.Join(ctx, eventID, "u1")
	require.NoError(t, err)
	assert.False(t, out.Changed)

	ev, u := f.load(t, eventID, "u1")
	assert.Equal(t, []string{"u1"}, []string(ev.Participants))
	assert.Equal(t, []string{eventID}, []string(u.JoinedEventIDs))
	assert.Equal(t, []string{eventID}, f.notifier.calls["u1"])
}

func TestLeave(t *testing.T) {
	f := newFixture(t)
	f.user(t, "host")
	f.user(t, "u1")
	f.user(t, "u2")
	eventID := f.event(t, 4)
	ctx := context.Background()

	_, err := f.engine.Join(ctx, eventID, "u1")
	require.NoError(t, err)

	out, err := f.engine.Leave(ctx, eventID, "u1")
	require.NoError(t, err)
	assert.True(t, out.Changed)
	ev, u := f.load(t, eventID, "u1")
	assert.Empty(t, ev.Participants)
	assert.Empty(t, u.JoinedEventIDs)
	assert.Empty(t, f.notifier.calls["u1"])

	out, err = f.engine.Leave(ctx, eventID, "u2")
	require.NoError(t, err)
	assert.False(t, out.Changed, "leaving without being a participant is a no-op")
	_, ok := f.notifier.calls["u2"]
	assert.False(t, ok)
}

func TestJoin_Errors(t *testing.T) {
	f := newFixture(t)
	f.user(t, "host")
	f.user(t, "u1")
	f.user(t, "u2")
	ctx := context.Background()

	_, err := f.engine.Join(ctx, "", "u1")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = f.engine.Join(ctx, "missing", "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	full := f.event(t, 1)
	_, err = f.engine.Join(ctx, full, "u1")
	require.NoError(t, err)
	_, err = f.engine.Join(ctx, full, "u2")
	assert.ErrorIs(t, err, common.ErrEventFull)
	_, err = f.engine.Join(ctx, full, "u1")
	assert.NoError(t, err, "a member re-joining a full event is still a no-op success")

	expired := f.event(t, 4)
	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.db.Model(&event.Event{}).Where("id = ?", expired).
		Updates(map[string]interface{}{"date": past.Add(-time.Hour), "expiry_date": past}).Error)
	_, err = f.engine.Join(ctx, expired, "u1")
	assert.ErrorIs(t, err, common.ErrEventExpired)

	ev, u := f.load(t, expired, "u1")
	assert.Empty(t, ev.Participants)
	assert.NotContains(t, []string(u.JoinedEventIDs), expired)
}

func TestConcurrentJoins(t *testing.T) {
	run := func(t *testing.T, max int) (successes int, fullErrs int, participants []string) {
		f := newFixture(t)
		f.user(t, "host")
		f.user(t, "u1")
		f.user(t, "u2")
		eventID := f.event(t, max)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, uid := range []string{"u1", "u2"} {
			wg.Add(1)
			go func(i int, uid string) {
				defer wg.Done()
				_, errs[i] = f.engine.Join(context.Background(), eventID, uid)
			}(i, uid)
		}
		wg.Wait()

		for _, err := range errs {
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, common.ErrEventFull):
				fullErrs++
			}
		}
		ev, err := event.Load(f.db, eventID)
		require.NoError(t, err)
		return successes, fullErrs, ev.Participants
	}

	t.Run("room for both", func(t *testing.T) {
		ok, full, participants := run(t, 2)
		assert.Equal(t, 2, ok)
		assert.Zero(t, full)
		assert.ElementsMatch(t, []string{"u1", "u2"}, participants)
	})

	t.Run("cap enforced inside the transaction", func(t *testing.T) {
		ok, full, participants := run(t, 1)
		assert.Equal(t, 1, ok)
		assert.Equal(t, 1, full)
		assert.Len(t, participants, 1)
	})
}

// rivalJoinedAfterRead commits a join from "rival" and then rewinds the engine's first
// read of the event to the row as it was before, so the engine writes against a stale
// version exactly as it would had the rival committed between its read and its write.
// It returns the number of event reads the engine made.
func rivalJoinedAfterRead(t *testing.T, db *gorm.DB, eventID string) *int {
	t.Helper()
	before, err := event.Load(db, eventID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&event.Event{}).Where("id = ?", eventID).Updates(map[string]interface{}{
		"participants": models.StringSlice{"rival"},
		"version":      gorm.Expr("version + 1"),
	}).Error)

	reads := 0
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:stale_event_read", func(tx *gorm.DB) {
		ev, ok := tx.Statement.Dest.(*event.Event)
		if !ok || ev.ID != eventID {
			return
		}
		reads++
		if reads == 1 {
			ev.Participants = append(models.StringSlice(nil), before.Participants...)
			ev.Version = before.Version
		}
	}))
	return &reads
}

func TestJoin_RetriesAfterLosingVersionCheck(t *testing.T) {
	t.Run("room left after the rival", func(t *testing.T) {
		f := newFixture(t)
		f.user(t, "host")
		f.user(t, "u1")
		eventID := f.event(t, 2)
		reads := rivalJoinedAfterRead(t, f.db, eventID)

		out, err := f.engine.Join(context.Background(), eventID, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, *reads, "the stale write loses and the join is re-run")
		assert.ElementsMatch(t, []string{"rival", "u1"}, []string(out.Event.Participants))

		ev, u := f.load(t, eventID, "u1")
		assert.ElementsMatch(t, []string{"rival", "u1"}, []string(ev.Participants))
		assert.Equal(t, []string{eventID}, []string(u.JoinedEventIDs))
	})

	t.Run("rival took the last spot", func(t *testing.T) {
		f := newFixture(t)
		f.user(t, "host")
		f.user(t, "u1")
		eventID := f.event(t, 1)
		reads := rivalJoinedAfterRead(t, f.db, eventID)

		_, err := f.engine.Join(context.Background(), eventID, "u1")
		assert.ErrorIs(t, err, common.ErrEventFull)
		assert.Equal(t, 2, *reads)

		ev, u := f.load(t, eventID, "u1")
		assert.Equal(t, []string{"rival"}, []string(ev.Participants))
		assert.Empty(t, u.JoinedEventIDs)
	})
}

func TestReconcile_RepairsDrift(t *testing.T) {
	f := newFixture(t)
	f.user(t, "host")
	f.user(t, "u1")
	f.user(t, "u2")
	a := f.event(t, 4)
	b := f.event(t, 4)

	// u1 is listed on a but its joined list is empty; u2 claims b and a deleted event
	// without being listed anywhere; a also lists a user that no longer exists.
	require.NoError(t, f.db.Model(&event.Event{}).Where("id = ?", a).
		Update("participants", models.StringSlice{"u1", "ghost"}).Error)
	require.NoError(t, f.db.Model(&user.User{}).Where("id = ?", "u2").
		Update("joined_event_ids", models.StringSlice{b, "gone"}).Error)

	report, err := f.engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.EventsScanned)
	assert.Equal(t, 2, report.UsersRepaired)
	assert.Equal(t, 1, report.LinksAdded)
	assert.Equal(t, 2, report.LinksRemoved)
	assert.Equal(t, 1, report.ParticipantsDropped)

	evA, u1 := f.load(t, a, "u1")
	assert.Equal(t, []string{"u1"}, []string(evA.Participants))
	assert.Equal(t, []string{a}, []string(u1.JoinedEventIDs))
	_, u2 := f.load(t, b, "u2")
	assert.Empty(t, u2.JoinedEventIDs)

	again, err := f.engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again.UsersRepaired)
	assert.Zero(t, again.ParticipantsDropped)
}
