package location

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestDistance(t *testing.T) {
	nyc := Coordinate{Latitude: 40.7128, Longitude: -74.0060}
	london := Coordinate{Latitude: 51.5074, Longitude: -0.1278}

	assert.InDelta(t, 5570, Distance(nyc, london), 15)
	assert.InDelta(t, Distance(nyc, london), Distance(london, nyc), 1e-9)
	assert.Zero(t, Distance(nyc, nyc))
}

func TestCoordinateValidate(t *testing.T) {
	assert.NoError(t, Coordinate{Latitude: -90, Longitude: 180}.Validate())
	assert.ErrorIs(t, Coordinate{Latitude: 91}.Validate(), common.ErrValidation)
	assert.ErrorIs(t, Coordinate{Longitude: -181}.Validate(), common.ErrValidation)
}

type recordingRequester struct {
	mu    sync.Mutex
	users []string
}

func (r *recordingRequester) RequestLocation(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func TestRegistryProvider(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	p := reg.For("u1")

	_, ok := p.LastKnownLocation()
	assert.False(t, ok)
	p.RequestUpdate() // no requester wired yet: dropped

	req := &recordingRequester{}
	reg.SetRequester(req)
	p.RequestUpdate()
	assert.Equal(t, []string{"u1"}, req.users)

	require.NoError(t, reg.Update("u1", Coordinate{Latitude: 1, Longitude: 2}))
	c, ok := p.LastKnownLocation()
	assert.True(t, ok)
	assert.Equal(t, Coordinate{Latitude: 1, Longitude: 2}, c)

	assert.Error(t, reg.Update("u1", Coordinate{Latitude: 100}))
	reg.Forget("u1")
	_, ok = p.LastKnownLocation()
	assert.False(t, ok)
}

func TestRegistryPrune(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	require.NoError(t, reg.Update("old", Coordinate{}))

	now = now.Add(2 * time.Hour)
	require.NoError(t, reg.Update("fresh", Coordinate{}))

	assert.Equal(t, 1, reg.Prune(time.Hour))
	_, _, ok := reg.Last("old")
	assert.False(t, ok)
	_, _, ok = reg.Last("fresh")
	assert.True(t, ok)
}

func TestRegistryRunCleanupStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := NewRegistry(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.RunCleanup(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	<-done
}

func TestStaticProviders(t *testing.T) {
	c, ok := Fixed{Latitude: 3, Longitude: 4}.LastKnownLocation()
	assert.True(t, ok)
	assert.Equal(t, 3.0, c.Latitude)

	_, ok = Unknown{}.LastKnownLocation()
	assert.False(t, ok)
}
