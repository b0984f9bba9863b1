package event

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type countingRepo struct {
	EventRepository
	calls atomic.Int32
	err   error
}

func (r *countingRepo) SweepExpired(context.Context) (int, error) {
	r.calls.Add(1)
	return 2, r.err
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := &countingRepo{}
	s := NewSweeper(repo, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return repo.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestSweeper_DisabledAndFailingPass(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := &countingRepo{err: common.ErrStoreUnavailable}
	s := NewSweeper(repo, 0, zap.NewNop())
	s.Run(context.Background())
	assert.Zero(t, repo.calls.Load())

	assert.Zero(t, s.SweepOnce(context.Background()), "failed pass reports nothing removed")
}
