package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/location"
	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu         sync.Mutex
	upcoming   []event.Event
	hosted     []event.Event
	err        error
	categories []*sport.Category
}

func (f *fakeSource) FetchUpcoming(_ context.Context, c *sport.Category) ([]event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, c)
	return f.upcoming, f.err
}

func (f *fakeSource) FetchByHost(_ context.Context, _ string, c *sport.Category) ([]event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, c)
	return f.hosted, nil
}

type countingProvider struct {
	location.Unknown
	requests int
}

func (p *countingProvider) RequestUpdate() { p.requests++ }

type staticLocator struct{ p location.Provider }

func (l staticLocator) For(string) location.Provider { return l.p }

func TestBuild_NoLocationDegradesAndRequestsUpdate(t *testing.T) {
	src := &fakeSource{upcoming: batch(), hosted: []event.Event{ev("mid", "me", 1, 3, true, 0, 0)}}
	provider := &countingProvider{}
	svc := NewService(src, staticLocator{provider}, zap.NewNop())

	tennis := sport.Tennis
	views, err := svc.Build(context.Background(), Request{UserID: "me", Category: &tennis, Epoch: 7})
	require.NoError(t, err)

	assert.EqualValues(t, 7, views.Epoch)
	assert.False(t, views.NearbySorted)
	assert.Equal(t, ids(batch()), ids(views.Nearby))
	assert.Equal(t, 1, provider.requests)
	assert.Equal(t, []string{"mid"}, ids(views.Mine))
	for _, c := range src.categories {
		require.NotNil(t, c, "the filter reaches both queries")
		assert.Equal(t, sport.Tennis, *c)
	}
}

func TestBuild_ExplicitLocationWins(t *testing.T) {
	provider := &countingProvider{}
	svc := NewService(&fakeSource{upcoming: batch()}, staticLocator{provider}, zap.NewNop())

	views, err := svc.Build(context.Background(), Request{UserID: "me", Location: &location.Coordinate{Latitude: 51.5, Longitude: -0.1}})
	require.NoError(t, err)
	assert.True(t, views.NearbySorted)
	assert.Equal(t, "far", views.Nearby[0].ID)
	assert.Zero(t, provider.requests)
}

func TestBuild_StoreFailureSurfaces(t *testing.T) {
	svc := NewService(&fakeSource{err: common.ErrStoreUnavailable}, nil, zap.NewNop())
	_, err := svc.Build(context.Background(), Request{UserID: "me"})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestGetFeedEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(&fakeSource{upcoming: batch()}, nil, zap.NewNop())
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set(middleware.AuthUserIDKey, "me")
		c.Next()
	})
	RegisterFeedRoutes(api, NewFeedController(svc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/feed?lat=40.73&lng=-73.99&epoch=42", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data FeedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 42, body.Data.Epoch)
	assert.True(t, body.Data.NearbySorted)
	require.Len(t, body.Data.Nearby, 4)
	assert.Equal(t, "near", body.Data.Nearby[0].ID)
	require.NotNil(t, body.Data.Nearby[0].DistanceKm)

	for _, bad := range []string{"/api/feed?lat=1", "/api/feed?category=curling", "/api/feed?epoch=x", "/api/feed?lat=100&lng=0"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}
