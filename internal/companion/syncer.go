package companion

import (
	"context"
	"sync"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/event"
	"go.uber.org/zap"
)

// CompactEvent is the small record a wrist-sized screen needs.
type CompactEvent struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Sport        string    `json:"sport"`
	Date         time.Time `json:"date"`
	LocationName string    `json:"locationName"`
	Participants int       `json:"participants"`
	Max          int       `json:"maxParticipants"`
}

func Compact(e event.Event) CompactEvent {
	return CompactEvent{
		ID:           e.ID,
		Title:        e.Title,
		Sport:        string(e.Sport),
		Date:         e.Date,
		LocationName: e.Location.Name,
		Participants: len(e.Participants),
		Max:          e.MaxParticipants,
	}
}

// EventLookup is the part of the event store the syncer needs.
type EventLookup interface {
	FetchByIDs(ctx context.Context, ids []string) ([]event.Event, error)
}

// snapshotTimeout bounds one snapshot lookup once it is detached from the request.
const snapshotTimeout = 5 * time.Second

// Syncer pushes the full joined-events snapshot to a user's devices whenever their
// membership changes. Lookups run in the background; when several are in flight for one
// user only the most recent is delivered.
type Syncer struct {
	hub     *Hub
	events  EventLookup
	logger  *zap.Logger
	timeout time.Duration

	wg      sync.WaitGroup
	mu      sync.Mutex
	pending map[string]*userSync
}

type userSync struct {
	seq      uint64
	inFlight int
}

func NewSyncer(hub *Hub, events EventLookup, logger *zap.Logger) *Syncer {
	return &Syncer{
		hub:     hub,
		events:  events,
		logger:  logger,
		timeout: snapshotTimeout,
		pending: map[string]*userSync{},
	}
}

// MembershipChanged returns immediately. The snapshot is built on a context detached
// from ctx's cancellation, so it outlives the request that triggered it.
func (s *Syncer) MembershipChanged(ctx context.Context, userID string, joinedEventIDs []string) {
	if s.hub.Devices(userID) == 0 {
		return
	}
	ids := append([]string(nil), joinedEventIDs...)

	s.mu.Lock()
	st, ok := s.pending[userID]
	if !ok {
		st = &userSync{}
		s.pending[userID] = st
	}
	st.seq++
	st.inFlight++
	seq := st.seq
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.push(ctx, userID, seq, ids)
	}()
}

// Wait blocks until every snapshot already dispatched has been delivered or dropped.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

func (s *Syncer) push(ctx context.Context, userID string, seq uint64, ids []string) {
	events, err := s.events.FetchByIDs(ctx, ids)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.pending[userID]
	st.inFlight--
	if st.inFlight == 0 {
		delete(s.pending, userID)
	}
	if st.seq != seq {
		// superseded
		return
	}
	if err != nil {
		s.logger.Warn("companion snapshot skipped", zap.String("user_id", userID), zap.Error(err))
		return
	}
	snapshot := make([]CompactEvent, 0, len(events))
	for _, e := range events {
		snapshot = append(snapshot, Compact(e))
	}
	s.hub.Publish(userID, Outbound{JoinedEvents: &snapshot})
}
