package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

// JobLocker makes sure one bulk ledger job runs on one replica at a time.
type JobLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

// NewJobLocker creates a locker over the Redis client. expiry must exceed the longest job run.
func NewJobLocker(client *redis.Client, expiry time.Duration) *JobLocker {
	return &JobLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
	}
}

// WithLock runs fn while holding the lock of job. It returns models.ErrAlreadyClaimed
// without running fn when another holder has the lock.
func (l *JobLocker) WithLock(ctx context.Context, job string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex("ledger:job:"+job,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			logger.Log.Infow("job lock held elsewhere", "job", job)
			return fmt.Errorf("%w: job %s", models.ErrAlreadyClaimed, job)
		}
		logger.Log.Errorw("failed to acquire job lock", "job", job, "error", err)
		return err
	}

	defer func() {
		// The job context may already be cancelled; release on a fresh one.
		if ok, err := mutex.UnlockContext(context.Background()); err != nil || !ok {
			logger.Log.Warnw("failed to release job lock", "job", job, "released", ok, "error", err)
		}
	}()

	return fn(ctx)
}
