package location

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Requester asks a user's devices to report their location. It must not block.
type Requester interface {
	RequestLocation(userID string)
}

type fix struct {
	coord     Coordinate
	updatedAt time.Time
}

// Registry holds the most recent coordinate reported for each user.
type Registry struct {
	mu        sync.RWMutex
	fixes     map[string]fix
	requester Requester
	logger    *zap.Logger
	now       func() time.Time
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		fixes:  make(map[string]fix),
		logger: logger,
		now:    time.Now,
	}
}

// SetRequester wires the channel used by RequestUpdate. Without one, requests are dropped.
func (r *Registry) SetRequester(req Requester) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requester = req
}

func (r *Registry) Update(userID string, c Coordinate) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixes[userID] = fix{coord: c, updatedAt: r.now()}
	return nil
}

func (r *Registry) Last(userID string) (Coordinate, time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fixes[userID]
	return f.coord, f.updatedAt, ok
}

func (r *Registry) Forget(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fixes, userID)
}

// Prune drops fixes older than maxAge and returns how many were removed.
func (r *Registry) Prune(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxAge)
	removed := 0
	for id, f := range r.fixes {
		if f.updatedAt.Before(cutoff) {
			delete(r.fixes, id)
			removed++
		}
	}
	return removed
}

// RunCleanup prunes stale fixes every interval until ctx is cancelled.
func (r *Registry) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(maxAge); n > 0 {
				r.logger.Debug("pruned stale locations", zap.Int("count", n))
			}
		}
	}
}

// For returns the Provider view of one user's location.
func (r *Registry) For(userID string) Provider {
	return userProvider{registry: r, userID: userID}
}

func (r *Registry) requestUpdate(userID string) {
	r.mu.RLock()
	req := r.requester
	r.mu.RUnlock()
	if req == nil {
		return
	}
	req.RequestLocation(userID)
}

type userProvider struct {
	registry *Registry
	userID   string
}

func (p userProvider) LastKnownLocation() (Coordinate, bool) {
	c, _, ok := p.registry.Last(p.userID)
	return c, ok
}

func (p userProvider) RequestUpdate() {
	p.registry.requestUpdate(p.userID)
}
