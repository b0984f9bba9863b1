package feed

import (
	"context"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/location"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is the slice of the event store the feed reads from.
type Source interface {
	FetchUpcoming(ctx context.Context, category *sport.Category) ([]event.Event, error)
	FetchByHost(ctx context.Context, hostID string, category *sport.Category) ([]event.Event, error)
}

// Locator hands out the location provider of a user.
type Locator interface {
	For(userID string) location.Provider
}

type Request struct {
	UserID   string
	Category *sport.Category
	// Location overrides the user's last known location when set.
	Location *location.Coordinate
	// Epoch is echoed back so clients can discard responses older than one already applied.
	Epoch int64
}

type Views struct {
	Epoch        int64
	Category     *sport.Category
	Featured     []event.Event
	Popular      []event.Event
	Nearby       []event.Event
	NearbySorted bool
	Distances    map[string]float64
	Mine         []event.Event
	GeneratedAt  time.Time
}

type Service struct {
	source  Source
	locator Locator
	logger  *zap.Logger
}

func NewService(source Source, locator Locator, logger *zap.Logger) *Service {
	return &Service{source: source, locator: locator, logger: logger}
}

// Build fetches the upcoming batch and the caller's hosted events concurrently and derives
// every view from them. The category filter is part of both queries, so it applies to all
// four views.
func (s *Service) Build(ctx context.Context, req Request) (*Views, error) {
	var batch, hosted []event.Event

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		batch, err = s.source.FetchUpcoming(gctx, req.Category)
		return err
	})
	g.Go(func() error {
		var err error
		hosted, err = s.source.FetchByHost(gctx, req.UserID, req.Category)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("feed fetch failed", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	var provider location.Provider = location.Unknown{}
	if req.Location != nil {
		provider = location.Fixed(*req.Location)
	} else if s.locator != nil {
		provider = s.locator.For(req.UserID)
	}

	nearby, distances, sorted := Nearby(batch, provider)
	if !sorted {
		provider.RequestUpdate()
	}

	return &Views{
		Epoch:        req.Epoch,
		Category:     req.Category,
		Featured:     Featured(batch),
		Popular:      Popular(batch),
		Nearby:       nearby,
		NearbySorted: sorted,
		Distances:    distances,
		Mine:         Mine(hosted, req.UserID),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
