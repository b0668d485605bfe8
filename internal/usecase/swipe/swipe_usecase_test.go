package swipe

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/infrastructure/retry"
	"github.com/letsconnect/connect-backend/internal/repository"
	"github.com/letsconnect/connect-backend/internal/repository/memory"
	"github.com/letsconnect/connect-backend/internal/usecase/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubPoaps struct {
	shared []domain.PoapRecord
	delay  time.Duration
}

func (s *stubPoaps) GetShared(ctx context.Context, _, _ string) ([]domain.PoapRecord, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.shared, nil
}

// flakySwipes fails the first n calls with a transient error.
type flakySwipes struct {
	repository.SwipeRepository
	failures atomic.Int32
	calls    atomic.Int32
}

func (f *flakySwipes) RecordSwipe(ctx context.Context, s *domain.Swipe) (*domain.Swipe, error) {
	f.calls.Add(1)
	if f.failures.Add(-1) >= 0 {
		return nil, errors.New("driver: bad connection")
	}
	return f.SwipeRepository.RecordSwipe(ctx, s)
}

type fixture struct {
	store *memory.Store
	uc    *SwipeUseCase
}

func fastRetry() retry.Policy {
	return retry.Policy{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func newFixture(t *testing.T, swipes repository.SwipeRepository, poaps SharedPoapFinder) *fixture {
	t.Helper()
	store := memory.NewStore()
	for _, id := range []string{"alice", "bob", "carol"} {
		require.NoError(t, store.Profiles().Upsert(context.Background(), &domain.Profile{UserID: id, Name: id}))
	}
	if swipes == nil {
		swipes = store.Swipes()
	}
	matcher := match.NewMatchUseCase(store.Matches(), store.Profiles(), store.Connections(), nil, nil, zap.NewNop())
	uc := NewSwipeUseCase(swipes, poaps, matcher, Config{SnapshotTimeout: 50 * time.Millisecond, Retry: fastRetry()}, zap.NewNop())
	return &fixture{store: store, uc: uc}
}

func right(target string) *SwipeRequest {
	return &SwipeRequest{TargetUserID: target, Direction: domain.DirectionRight}
}

func left(target string) *SwipeRequest {
	return &SwipeRequest{TargetUserID: target, Direction: domain.DirectionLeft}
}

func TestRecordSwipeValidation(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.uc.RecordSwipe(ctx, "alice", right("alice"))
	assert.ErrorIs(t, err, domain.ErrCannotSwipeSelf)

	_, err = f.uc.RecordSwipe(ctx, "alice", &SwipeRequest{TargetUserID: "bob", Direction: "up"})
	assert.ErrorIs(t, err, domain.ErrInvalidDirection)

	_, err = f.uc.RecordSwipe(ctx, "alice", right("sample-2"))
	assert.ErrorIs(t, err, domain.ErrSyntheticTarget)

	_, err = f.uc.RecordSwipe(ctx, "alice", right("ghost"))
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestRecordSwipeIsIdempotent(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		resp, err := f.uc.RecordSwipe(ctx, "alice", right("bob"))
		require.NoError(t, err)
		assert.True(t, resp.Accepted)
		assert.False(t, resp.IsMatch)
		assert.Nil(t, resp.Match)
	}

	stored, err := f.store.Swipes().GetByUsers(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionRight, stored.Direction)
	assert.Equal(t, 0, f.store.MatchCount())
}

func TestMutualRightSwipeCreatesOneMatch(t *testing.T) {
	f := newFixture(t, nil, &stubPoaps{shared: []domain.PoapRecord{{EventID: "42"}, {EventID: "7"}}})
	ctx := context.Background()

	first, err := f.uc.RecordSwipe(ctx, "alice", right("bob"))
	require.NoError(t, err)
	assert.False(t, first.IsMatch)
	assert.Equal(t, 2, first.Swipe.SharedPoapCount)
	assert.Equal(t, 0, f.store.MatchCount())

	second, err := f.uc.RecordSwipe(ctx, "bob", right("alice"))
	require.NoError(t, err)
	assert.True(t, second.IsMatch)
	require.NotNil(t, second.Match)
	assert.Equal(t, "alice", second.Match.UserAID)
	assert.Equal(t, "bob", second.Match.UserBID)
	assert.Equal(t, []string{"42", "7"}, second.Match.SharedPoaps)
	assert.Equal(t, 1, f.store.MatchCount())

	// Connections in both directions, with the counterpart's snapshot.
	ab, err := f.store.Connections().Get(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionSwipe, ab.ConnectionType)
	require.NotNil(t, ab.ConnectionData)
	assert.Equal(t, "bob", ab.ConnectionData.Name)
	_, err = f.store.Connections().Get(ctx, "bob", "alice")
	require.NoError(t, err)

	// Re-sending the match-forming swipe returns the same match, not a new one.
	again, err := f.uc.RecordSwipe(ctx, "bob", right("alice"))
	require.NoError(t, err)
	assert.False(t, again.IsMatch)
	require.NotNil(t, again.Match)
	assert.Equal(t, second.Match.ID, again.Match.ID)
	assert.Equal(t, 1, f.store.MatchCount())
}

func TestLeftSwipeNeverMatches(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.uc.RecordSwipe(ctx, "alice", left("bob"))
	require.NoError(t, err)
	resp, err := f.uc.RecordSwipe(ctx, "bob", right("alice"))
	require.NoError(t, err)
	assert.False(t, resp.IsMatch)
	assert.Equal(t, 0, f.store.MatchCount())

	// Alice changes her mind.
	resp, err = f.uc.RecordSwipe(ctx, "alice", right("bob"))
	require.NoError(t, err)
	assert.True(t, resp.IsMatch)
	assert.Equal(t, 1, f.store.MatchCount())
}

func TestConcurrentReciprocalSwipes(t *testing.T) {
	for i := 0; i < 25; i++ {
		f := newFixture(t, nil, nil)
		ctx := context.Background()

		var wg sync.WaitGroup
		results := make([]*SwipeResponse, 2)
		errs := make([]error, 2)
		for j, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
			wg.Add(1)
			go func(j int, from, to string) {
				defer wg.Done()
				results[j], errs[j] = f.uc.RecordSwipe(ctx, from, right(to))
			}(j, pair[0], pair[1])
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		assert.Equal(t, 1, f.store.MatchCount())
		created := 0
		for _, r := range results {
			if r.IsMatch {
				created++
			}
		}
		assert.Equal(t, 1, created, "exactly one caller reports the new match")
	}
}

func TestSlowPoapSnapshotDegradesToZero(t *testing.T) {
	f := newFixture(t, nil, &stubPoaps{shared: []domain.PoapRecord{{EventID: "1"}}, delay: time.Second})

	start := time.Now()
	resp, err := f.uc.RecordSwipe(context.Background(), "alice", right("bob"))
	require.NoError(t, err)
	assert.Zero(t, resp.Swipe.SharedPoapCount)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestTransientStoreErrors(t *testing.T) {
	t.Run("retried until success", func(t *testing.T) {
		flaky := &flakySwipes{}
		flaky.failures.Store(2)
		f := newFixture(t, flaky, nil)
		flaky.SwipeRepository = f.store.Swipes()

		resp, err := f.uc.RecordSwipe(context.Background(), "alice", right("bob"))
		require.NoError(t, err)
		assert.True(t, resp.Accepted)
		assert.Equal(t, int32(3), flaky.calls.Load())
	})

	t.Run("surfaced as store unavailable", func(t *testing.T) {
		flaky := &flakySwipes{}
		flaky.failures.Store(100)
		f := newFixture(t, flaky, nil)
		flaky.SwipeRepository = f.store.Swipes()

		_, err := f.uc.RecordSwipe(context.Background(), "alice", right("bob"))
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.Equal(t, int32(3), flaky.calls.Load())
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		flaky := &flakySwipes{}
		f := newFixture(t, flaky, nil)
		flaky.SwipeRepository = f.store.Swipes()

		_, err := f.uc.RecordSwipe(context.Background(), "alice", right("ghost"))
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
		assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.Equal(t, int32(1), flaky.calls.Load())
	})
}
