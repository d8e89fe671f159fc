package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

// AccrualMarkerRepository records which accounts already accrued interest for a period, using Redis
type AccrualMarkerRepository struct {
	client *redis.Client
	ttl    time.Duration // how long a claimed period is remembered
}

// NewAccrualMarkerRepository creates a new repository; ttl should outlive the period it guards
func NewAccrualMarkerRepository(client *redis.Client, ttl time.Duration) *AccrualMarkerRepository {
	return &AccrualMarkerRepository{client: client, ttl: ttl}
}

func markerKey(period models.InterestPeriod, accountID int64, periodKey string) string {
	return fmt.Sprintf("interest:%s:%d:%s", period, accountID, periodKey)
}

// Claim marks the account as accrued for the period. It returns models.ErrAlreadyClaimed
// when an earlier run already claimed it.
func (r *AccrualMarkerRepository) Claim(ctx context.Context, period models.InterestPeriod, accountID int64, periodKey string) error {
	key := markerKey(period, accountID, periodKey)

	ok, err := r.client.SetNX(ctx, key, time.Now().Unix(), r.ttl).Result()
	logger.Log.Debugw("accrual marker claim",
		"key", key,
		"result", ok,
		"error", err,
	)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrAlreadyClaimed, key)
	}
	return nil
}

// Release forgets the claim so the next run retries the account
func (r *AccrualMarkerRepository) Release(ctx context.Context, period models.InterestPeriod, accountID int64, periodKey string) error {
	key := markerKey(period, accountID, periodKey)

	err := r.client.Del(ctx, key).Err()
	logger.Log.Debugw("accrual marker release",
		"key", key,
		"error", err,
	)
	return err
}
