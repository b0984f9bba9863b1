package participation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/models"
	"github.com/DhavalSuthar-24/huddle/internal/store"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"gorm.io/gorm"
)

// Report summarises a reconcile pass.
type Report struct {
	EventsScanned       int `json:"events_scanned"`
	UsersScanned        int `json:"users_scanned"`
	UsersRepaired       int `json:"users_repaired"`
	LinksAdded          int `json:"links_added"`
	LinksRemoved        int `json:"links_removed"`
	ParticipantsDropped int `json:"participants_dropped"`
}

type gormStore struct {
	db          *gorm.DB
	maxAttempts int
}

// NewGormStore returns a Store that keeps the event and user rows in one transaction,
// guarded by their version columns.
func NewGormStore(db *gorm.DB, maxAttempts int) Store {
	return &gormStore{db: db, maxAttempts: maxAttempts}
}

func (s *gormStore) Mutate(ctx context.Context, eventID, userID string, fn MembershipFunc) (*Outcome, error) {
	var out Outcome
	err := store.Atomic(ctx, s.db, s.maxAttempts, func(tx *gorm.DB) error {
		ev, err := event.Load(tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: event %s", common.ErrNotFound, eventID)
			}
			return err
		}
		u, err := user.Load(tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %s", common.ErrNotFound, userID)
			}
			return err
		}

		beforeParticipants := len(ev.Participants)
		beforeJoined := len(u.JoinedEventIDs)
		changed, err := fn(ev, u)
		if err != nil {
			return err
		}

		if changed {
			if len(ev.Participants) != beforeParticipants {
				if err := event.Save(tx, ev, map[string]interface{}{"participants": ev.Participants}); err != nil {
					return err
				}
			}
			if len(u.JoinedEventIDs) != beforeJoined {
				if err := user.Save(tx, u, map[string]interface{}{"joined_event_ids": u.JoinedEventIDs}); err != nil {
					return err
				}
			}
		}
		out = Outcome{Event: *ev, User: *u, Changed: changed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type eventRef struct {
	ID           string
	Participants models.StringSlice
}

// Reconcile repairs participant-list and joined-list drift left behind by data written
// before both lists shared a transaction. Each user is repaired in its own transaction
// against freshly read rows.
func (s *gormStore) Reconcile(ctx context.Context) (*Report, error) {
	report := &Report{}

	var events []eventRef
	if err := s.db.WithContext(ctx).Model(&event.Event{}).Select("id", "participants").Find(&events).Error; err != nil {
		return nil, store.Wrap(err)
	}
	report.EventsScanned = len(events)

	var userIDs []string
	if err := s.db.WithContext(ctx).Model(&user.User{}).Order("id").Pluck("id", &userIDs).Error; err != nil {
		return nil, store.Wrap(err)
	}
	report.UsersScanned = len(userIDs)
	known := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		known[id] = true
	}

	listedIn := map[string][]string{}
	for _, ev := range events {
		for _, uid := range ev.Participants {
			listedIn[uid] = append(listedIn[uid], ev.ID)
		}
	}

	for _, uid := range userIDs {
		added, removed, err := s.repairUser(ctx, uid, listedIn[uid])
		if err != nil {
			return report, err
		}
		if added+removed > 0 {
			report.UsersRepaired++
			report.LinksAdded += added
			report.LinksRemoved += removed
		}
	}

	for _, ev := range events {
		dropped, err := s.dropUnknownParticipants(ctx, ev.ID, known)
		if err != nil {
			return report, err
		}
		report.ParticipantsDropped += dropped
	}
	return report, nil
}

func (s *gormStore) repairUser(ctx context.Context, userID string, candidates []string) (added, removed int, err error) {
	err = store.Atomic(ctx, s.db, s.maxAttempts, func(tx *gorm.DB) error {
		added, removed = 0, 0
		u, err := user.Load(tx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(u.JoinedEventIDs)+len(candidates))
		ids = append(ids, u.JoinedEventIDs...)
		ids = append(ids, candidates...)
		var fresh []event.Event
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&fresh).Error; err != nil {
				return err
			}
		}
		lists := make(map[string]bool, len(fresh))
		for i := range fresh {
			if fresh[i].Participants.Contains(userID) {
				lists[fresh[i].ID] = true
			}
		}

		joined := models.StringSlice{}
		for _, id := range u.JoinedEventIDs {
			if lists[id] && !joined.Contains(id) {
				joined = append(joined, id)
				continue
			}
			removed++
		}
		var missing []string
		for id := range lists {
			if !joined.Contains(id) {
				missing = append(missing, id)
			}
		}
		sort.Strings(missing)
		for _, id := range missing {
			joined = append(joined, id)
			added++
		}

		if added+removed == 0 {
			return nil
		}
		return user.Save(tx, u, map[string]interface{}{"joined_event_ids": joined})
	})
	return added, removed, err
}

func (s *gormStore) dropUnknownParticipants(ctx context.Context, eventID string, known map[string]bool) (int, error) {
	dropped := 0
	err := store.Atomic(ctx, s.db, s.maxAttempts, func(tx *gorm.DB) error {
		dropped = 0
		ev, err := event.Load(tx, eventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var unseen []string
		for _, uid := range ev.Participants {
			if !known[uid] {
				unseen = append(unseen, uid)
			}
		}
		exists := map[string]bool{}
		if len(unseen) > 0 {
			var found []string
			if err := tx.Model(&user.User{}).Where("id IN ?", unseen).Pluck("id", &found).Error; err != nil {
				return err
			}
			for _, id := range found {
				exists[id] = true
			}
		}

		kept := models.StringSlice{}
		for _, uid := range ev.Participants {
			if (known[uid] || exists[uid]) && !kept.Contains(uid) {
				kept = append(kept, uid)
				continue
			}
			dropped++
		}
		if dropped == 0 {
			return nil
		}
		return event.Save(tx, ev, map[string]interface{}{"participants": kept})
	})
	return dropped, err
}
