package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/chat"
	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/DhavalSuthar-24/huddle/internal/store"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRepository is the event store. Every failure other than NotFound, Validation and
// Forbidden surfaces as common.ErrStoreUnavailable.
type EventRepository interface {
	// FetchUpcoming returns the events whose expiry lies in the future, ordered by expiry then date.
	FetchUpcoming(ctx context.Context, category *sport.Category) ([]Event, error)
	FetchByHost(ctx context.Context, hostID string, category *sport.Category) ([]Event, error)
	FetchByIDs(ctx context.Context, ids []string) ([]Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, e *Event) (string, error)
	Update(ctx context.Context, hostID, id string, mutate func(e *Event) (map[string]interface{}, error)) (*Event, error)
	Delete(ctx context.Context, hostID, id string) error
	SweepExpired(ctx context.Context) (int, error)
	// Members lists the host and participants of an event; it backs event chat membership.
	Members(ctx context.Context, eventID string) ([]string, error)
}

type eventRepository struct {
	db            *gorm.DB
	maxAttempts   int
	defaultExpiry time.Duration
	now           func() time.Time
}

func NewEventRepository(db *gorm.DB, maxAttempts int, defaultExpiry time.Duration) EventRepository {
	return &eventRepository{
		db:            db,
		maxAttempts:   maxAttempts,
		defaultExpiry: defaultExpiry,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (r *eventRepository) FetchUpcoming(ctx context.Context, category *sport.Category) ([]Event, error) {
	events := []Event{}
	query := r.db.WithContext(ctx).Where("expiry_date > ?", r.now())
	if category != nil {
		query = query.Where("sport = ?", *category)
	}
	if err := query.Order("expiry_date ASC").Order("date ASC").Find(&events).Error; err != nil {
		return nil, store.Wrap(err)
	}
	return events, nil
}

func (r *eventRepository) FetchByHost(ctx context.Context, hostID string, category *sport.Category) ([]Event, error) {
	events := []Event{}
	query := r.db.WithContext(ctx).Where("host_id = ?", hostID)
	if category != nil {
		query = query.Where("sport = ?", *category)
	}
	if err := query.Order("date ASC").Find(&events).Error; err != nil {
		return nil, store.Wrap(err)
	}
	return events, nil
}

func (r *eventRepository) FetchByIDs(ctx context.Context, ids []string) ([]Event, error) {
	events := []Event{}
	if len(ids) == 0 {
		return events, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("date ASC").Find(&events).Error; err != nil {
		return nil, store.Wrap(err)
	}
	return events, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", common.ErrValidation)
	}
	e, err := Load(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, store.Wrap(err)
	}
	return e, nil
}

func (r *eventRepository) Members(ctx context.Context, eventID string) ([]string, error) {
	e, err := r.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return e.Members(), nil
}

// Create stores e, opens its chat room and records it in the host's hosted list, all in
// one transaction. A missing expiry defaults to the scheduled date plus the configured
// default expiry.
func (r *eventRepository) Create(ctx context.Context, e *Event) (string, error) {
	if err := validate(e); err != nil {
		return "", err
	}
	e.Date = e.Date.UTC()
	if e.ExpiryDate == nil {
		expiry := e.Date.Add(r.defaultExpiry)
		e.ExpiryDate = &expiry
	} else {
		expiry := e.ExpiryDate.UTC()
		e.ExpiryDate = &expiry
	}
	if e.Participants == nil {
		e.Participants = []string{}
	}
	e.Version = 0

	err := store.Atomic(ctx, r.db, r.maxAttempts, func(tx *gorm.DB) error {
		host, err := user.Load(tx, e.HostID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: host %s does not exist", common.ErrValidation, e.HostID)
			}
			return err
		}

		e.ID = uuid.NewString()
		room, err := chat.CreateEventChat(tx, e.ID, e.HostID, e.Title)
		if err != nil {
			return err
		}
		e.ChatRoomID = room.ID
		if err := tx.Create(e).Error; err != nil {
			return err
		}

		hosted, _ := host.HostedEventIDs.Add(e.ID)
		return user.Save(tx, host, map[string]interface{}{"hosted_event_ids": hosted})
	})
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// Update applies a host edit. mutate returns the changed columns; the participant cap can
// never be lowered below the current participant count.
func (r *eventRepository) Update(ctx context.Context, hostID, id string, mutate func(e *Event) (map[string]interface{}, error)) (*Event, error) {
	var updated *Event
	err := store.Atomic(ctx, r.db, r.maxAttempts, func(tx *gorm.DB) error {
		e, err := Load(tx, id)
		if err != nil {
			return err
		}
		if e.HostID != hostID {
			return fmt.Errorf("%w: only the host can edit this event", common.ErrForbidden)
		}
		updates, err := mutate(e)
		if err != nil {
			return err
		}
		if err := validate(e); err != nil {
			return err
		}
		if e.MaxParticipants < len(e.Participants) {
			return fmt.Errorf("%w: max participants (%d) below current participant count (%d)",
				common.ErrValidation, e.MaxParticipants, len(e.Participants))
		}
		if len(updates) > 0 {
			if err := Save(tx, e, updates); err != nil {
				return err
			}
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an event along with its chat room and every user link to it.
func (r *eventRepository) Delete(ctx context.Context, hostID, id string) error {
	return store.Atomic(ctx, r.db, r.maxAttempts, func(tx *gorm.DB) error {
		e, err := Load(tx, id)
		if err != nil {
			return err
		}
		if e.HostID != hostID {
			return fmt.Errorf("%w: only the host can delete this event", common.ErrForbidden)
		}
		return remove(tx, []*Event{e})
	})
}

// SweepExpired deletes every event whose expiry has passed and reports how many went.
func (r *eventRepository) SweepExpired(ctx context.Context) (int, error) {
	removed := 0
	err := store.Atomic(ctx, r.db, r.maxAttempts, func(tx *gorm.DB) error {
		removed = 0
		var expired []*Event
		if err := tx.Where("expiry_date < ?", r.now()).Order("id").Find(&expired).Error; err != nil {
			return err
		}
		if err := remove(tx, expired); err != nil {
			return err
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// remove unlinks the events from their hosts and participants, drops their chat rooms
// and deletes them. Rows are locked events first, then users, each in id order, which is
// the same order membership changes take.
func remove(tx *gorm.DB, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	for _, e := range events {
		// version bump only; takes the row lock before any user row is touched
		if err := Save(tx, e, map[string]interface{}{}); err != nil {
			return err
		}
	}

	var memberIDs []string
	seen := map[string]bool{}
	for _, e := range events {
		for _, uid := range e.Members() {
			if !seen[uid] {
				seen[uid] = true
				memberIDs = append(memberIDs, uid)
			}
		}
	}
	sort.Strings(memberIDs)

	for _, uid := range memberIDs {
		u, err := user.Load(tx, uid)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		joined, hosted := u.JoinedEventIDs, u.HostedEventIDs
		var joinedChanged, hostedChanged, changed bool
		for _, e := range events {
			joined, changed = joined.Remove(e.ID)
			joinedChanged = joinedChanged || changed
			hosted, changed = hosted.Remove(e.ID)
			hostedChanged = hostedChanged || changed
		}
		updates := map[string]interface{}{}
		if joinedChanged {
			updates["joined_event_ids"] = joined
		}
		if hostedChanged {
			updates["hosted_event_ids"] = hosted
		}
		if len(updates) == 0 {
			continue
		}
		if err := user.Save(tx, u, updates); err != nil {
			return err
		}
	}

	for _, e := range events {
		if err := chat.DeleteEventChat(tx, e.ID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND version = ?", e.ID, e.Version).Delete(&Event{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrConflict
		}
	}
	return nil
}

func validate(e *Event) error {
	switch {
	case e.Title == "":
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	case e.HostID == "":
		return fmt.Errorf("%w: host is required", common.ErrValidation)
	case !e.Sport.Valid():
		return fmt.Errorf("%w: unknown sport category %q", common.ErrValidation, e.Sport)
	case e.MaxParticipants < 1:
		return fmt.Errorf("%w: max participants must be positive", common.ErrValidation)
	case e.Date.IsZero():
		return fmt.Errorf("%w: date is required", common.ErrValidation)
	case e.ExpiryDate != nil && e.ExpiryDate.Before(e.Date):
		return fmt.Errorf("%w: expiry date precedes the event date", common.ErrValidation)
	}
	return nil
}
