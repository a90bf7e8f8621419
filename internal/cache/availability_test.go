package cache

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/model"
)

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) GetAvailability(_ context.Context, id uint64) (model.Availability, error) {
	s.calls++
	if s.err != nil {
		return model.Availability{}, s.err
	}
	return model.Availability{PropertyID: id, Status: model.Available, Price: decimal.RequireFromString("1500")}, nil
}

func TestDisabledCachePassesThrough(t *testing.T) {
	src := &countingSource{}
	c := NewAvailability(nil, src, time.Minute, logrus.New())

	for i := 0; i < 3; i++ {
		av, err := c.GetAvailability(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, model.Available, av.Status)
	}
	assert.Equal(t, 3, src.calls)
	c.BookingChanged(context.Background(), booking.Event{PropertyID: 1})
}

func TestSourceErrorsAreReturned(t *testing.T) {
	src := &countingSource{err: booking.ErrNotFound}
	c := NewAvailability(nil, src, time.Minute, logrus.New())
	_, err := c.GetAvailability(context.Background(), 9)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestUnreachableRedisFallsBackToSource(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	logger, hook := test.NewNullLogger()
	src := &countingSource{}
	c := NewAvailability(rdb, src, time.Minute, logger)

	av, err := c.GetAvailability(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), av.PropertyID)
	assert.Equal(t, 1, src.calls)
	assert.NotEmpty(t, hook.AllEntries())

	c.Forget(context.Background(), 3)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

// liveRedis connects to REDIS_ADDR (default localhost:6379) or skips.
func liveRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15, DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// committingSource answers Available, then simulates a booking committed
// while the answer is on its way back to the cache.
type committingSource struct {
	calls  int
	commit func()
}

func (s *committingSource) GetAvailability(_ context.Context, id uint64) (model.Availability, error) {
	s.calls++
	av := model.Availability{PropertyID: id, Status: model.Available, Price: decimal.RequireFromString("900")}
	if s.calls == 1 && s.commit != nil {
		s.commit()
		return av, nil
	}
	if s.calls > 1 {
		av.Status = model.Booked
	}
	return av, nil
}

func TestReadRacingInvalidationIsNotCached(t *testing.T) {
	rdb := liveRedis(t)
	logger, _ := test.NewNullLogger()
	src := &committingSource{}
	c := NewAvailability(rdb, src, time.Minute, logger)
	c.prefix = "avail-test-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	ctx := context.Background()
	src.commit = func() { c.BookingChanged(ctx, booking.Event{PropertyID: 5}) }
	t.Cleanup(func() { rdb.Del(ctx, c.key(5), c.genKey(5)) })

	av, err := c.GetAvailability(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, model.Available, av.Status)

	av, err = c.GetAvailability(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, model.Booked, av.Status, "the pre-commit answer must not be served")
	assert.Equal(t, 2, src.calls)

	av, err = c.GetAvailability(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, model.Booked, av.Status)
	assert.Equal(t, 2, src.calls, "an undisturbed read is cached")
}
