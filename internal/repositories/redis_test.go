package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestAccrualMarkerRepository_Claim(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewAccrualMarkerRepository(client, 48*time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Claim(ctx, models.InterestPeriodDaily, 7, "2026-03-01"))
	assert.True(t, mr.Exists("interest:daily:7:2026-03-01"))
	assert.Equal(t, 48*time.Hour, mr.TTL("interest:daily:7:2026-03-01"))

	err := repo.Claim(ctx, models.InterestPeriodDaily, 7, "2026-03-01")
	assert.ErrorIs(t, err, models.ErrAlreadyClaimed)

	// other periods and accounts are independent
	assert.NoError(t, repo.Claim(ctx, models.InterestPeriodDaily, 7, "2026-03-02"))
	assert.NoError(t, repo.Claim(ctx, models.InterestPeriodDaily, 8, "2026-03-01"))
	assert.NoError(t, repo.Claim(ctx, models.InterestPeriodMonthly, 7, "2026-03"))
}

func TestAccrualMarkerRepository_Release(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewAccrualMarkerRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Claim(ctx, models.InterestPeriodMonthly, 1, "2026-02"))
	require.NoError(t, repo.Release(ctx, models.InterestPeriodMonthly, 1, "2026-02"))
	assert.False(t, mr.Exists("interest:monthly:1:2026-02"))

	assert.NoError(t, repo.Claim(ctx, models.InterestPeriodMonthly, 1, "2026-02"))
}

func TestAccrualMarkerRepository_RedisDown(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewAccrualMarkerRepository(client, time.Hour)
	mr.Close()

	err := repo.Claim(context.Background(), models.InterestPeriodDaily, 1, "2026-03-01")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrAlreadyClaimed))
}

func TestJobLocker_WithLock(t *testing.T) {
	_, client := setupRedis(t)
	locker := NewJobLocker(client, time.Minute)
	ctx := context.Background()

	ran := false
	err := locker.WithLock(ctx, models.JobDailyInterest, func(ctx context.Context) error {
		ran = true

		// a second holder is turned away while the first runs
		nested := locker.WithLock(ctx, models.JobDailyInterest, func(ctx context.Context) error {
			t.Fatal("nested run must not start")
			return nil
		})
		assert.ErrorIs(t, nested, models.ErrAlreadyClaimed)

		// other jobs are not blocked
		return locker.WithLock(ctx, models.JobReconciliation, func(ctx context.Context) error { return nil })
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// released after the run
	err = locker.WithLock(ctx, models.JobDailyInterest, func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestJobLocker_PropagatesJobError(t *testing.T) {
	_, client := setupRedis(t)
	locker := NewJobLocker(client, time.Minute)

	boom := errors.New("boom")
	err := locker.WithLock(context.Background(), models.JobScheduledTransfers, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = locker.WithLock(context.Background(), models.JobScheduledTransfers, func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}
