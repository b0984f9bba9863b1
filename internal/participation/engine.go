// Package participation maintains event membership: a user appears in an event's
// participant list at most once, and the event's participant list and the user's
// joined-event list always change together.
package participation

import (
	"context"
	"fmt"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"go.uber.org/zap"
)

// MembershipFunc is the body of a membership transaction. It must depend only on the
// freshly read event and user because it is re-run after every conflict. It reports
// whether it changed either record.
type MembershipFunc func(ev *event.Event, u *user.User) (bool, error)

// Store runs a MembershipFunc atomically over one event and one user.
type Store interface {
	Mutate(ctx context.Context, eventID, userID string, fn MembershipFunc) (*Outcome, error)
	Reconcile(ctx context.Context) (*Report, error)
}

// Outcome is the committed state after a membership change.
type Outcome struct {
	Event   event.Event
	User    user.User
	Changed bool
}

// Notifier hears about committed membership changes. It must not block.
type Notifier interface {
	MembershipChanged(ctx context.Context, userID string, joinedEventIDs []string)
}

type Engine struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewEngine(store Store, notifier Notifier, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Join adds userID to the event. Joining twice is a no-op success. A join that would
// exceed the participant cap fails with common.ErrEventFull, and joining an expired event
// fails with common.ErrEventExpired.
func (e *Engine) Join(ctx context.Context, eventID, userID string) (*Outcome, error) {
	return e.apply(ctx, "join", eventID, userID, join)
}

// Leave removes userID from the event. Leaving an event one is not part of is a no-op.
func (e *Engine) Leave(ctx context.Context, eventID, userID string) (*Outcome, error) {
	return e.apply(ctx, "leave", eventID, userID, leave)
}

func (e *Engine) Reconcile(ctx context.Context) (*Report, error) {
	report, err := e.store.Reconcile(ctx)
	if err != nil {
		e.logger.Error("participation reconcile failed", zap.Error(err))
		return nil, err
	}
	e.logger.Info("participation reconciled",
		zap.Int("events_scanned", report.EventsScanned),
		zap.Int("users_repaired", report.UsersRepaired),
		zap.Int("links_added", report.LinksAdded),
		zap.Int("links_removed", report.LinksRemoved),
		zap.Int("participants_dropped", report.ParticipantsDropped),
	)
	return report, nil
}

func (e *Engine) apply(ctx context.Context, op, eventID, userID string, body func(*event.Event, *user.User, time.Time) (bool, error)) (*Outcome, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", common.ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrValidation)
	}

	now := e.now()
	out, err := e.store.Mutate(ctx, eventID, userID, func(ev *event.Event, u *user.User) (bool, error) {
		return body(ev, u, now)
	})
	if err != nil {
		e.logger.Debug("membership change rejected", zap.String("op", op), zap.String("event_id", eventID), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	if out.Changed {
		e.logger.Info("membership changed", zap.String("op", op), zap.String("event_id", eventID), zap.String("user_id", userID), zap.Int("participants", len(out.Event.Participants)))
		if e.notifier != nil {
			e.notifier.MembershipChanged(ctx, userID, out.User.JoinedEventIDs)
		}
	}
	return out, nil
}

func join(ev *event.Event, u *user.User, now time.Time) (bool, error) {
	inEvent := ev.Participants.Contains(u.ID)
	if !inEvent {
		if ev.IsExpired(now) {
			return false, common.ErrEventExpired
		}
		if ev.IsFull() {
			return false, fmt.Errorf("%w: %d of %d places taken", common.ErrEventFull, len(ev.Participants), ev.MaxParticipants)
		}
	}

	var eventChanged, userChanged bool
	ev.Participants, eventChanged = ev.Participants.Add(u.ID)
	u.JoinedEventIDs, userChanged = u.JoinedEventIDs.Add(ev.ID)
	return eventChanged || userChanged, nil
}

func leave(ev *event.Event, u *user.User, _ time.Time) (bool, error) {
	var eventChanged, userChanged bool
	ev.Participants, eventChanged = ev.Participants.Remove(u.ID)
	u.JoinedEventIDs, userChanged = u.JoinedEventIDs.Remove(ev.ID)
	return eventChanged || userChanged, nil
}
