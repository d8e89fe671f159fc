package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Config(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("default jobs", func(t *testing.T) {
		s, err := New(NewMockBatchRunner(ctrl), NewMockTransferSettler(ctrl), DefaultConfig())
		require.NoError(t, err)

		_, ok := s.NextRun(models.JobScheduledTransfers)
		assert.True(t, ok)
		_, ok = s.NextRun(models.JobDailyInterest)
		assert.True(t, ok)
		_, ok = s.NextRun(models.JobReconciliation)
		assert.True(t, ok)
		_, ok = s.NextRun(models.JobMonthlyInterest)
		assert.False(t, ok, "monthly interest is disabled by default")
	})

	t.Run("invalid expression", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Reconciliation = "every evening"
		_, err := New(NewMockBatchRunner(ctrl), NewMockTransferSettler(ctrl), cfg)
		assert.Error(t, err)
	})
}

func TestScheduler_NextRun_Location(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loc := time.FixedZone("MSK", 3*60*60)

	cfg := DefaultConfig()
	cfg.Location = loc
	s, err := New(NewMockBatchRunner(ctrl), NewMockTransferSettler(ctrl), cfg)
	require.NoError(t, err)

	s.Start()
	defer s.Stop(context.Background())

	next, ok := s.NextRun(models.JobReconciliation)
	require.True(t, ok)
	local := next.In(loc)
	assert.Equal(t, 23, local.Hour())
	assert.Equal(t, 45, local.Minute())
}

func TestScheduler_RunJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := NewMockBatchRunner(ctrl)
	s, err := New(runner, NewMockTransferSettler(ctrl), DefaultConfig())
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	runner.EXPECT().RunScheduledTransfers(ctx, now).Return(models.BatchReport{Job: models.JobScheduledTransfers, Candidates: 2}, nil)
	runner.EXPECT().RunDailyInterest(ctx, now).Return(models.BatchReport{Job: models.JobDailyInterest}, nil)
	runner.EXPECT().RunMonthlyInterest(ctx, now).Return(models.BatchReport{Job: models.JobMonthlyInterest}, nil)
	runner.EXPECT().RunReconciliation(ctx).Return(models.BatchReport{}, models.ErrAlreadyClaimed)

	report, err := s.RunJob(ctx, models.JobScheduledTransfers)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Candidates)

	_, err = s.RunJob(ctx, models.JobDailyInterest)
	require.NoError(t, err)
	_, err = s.RunJob(ctx, models.JobMonthlyInterest)
	require.NoError(t, err)
	_, err = s.RunJob(ctx, models.JobReconciliation)
	assert.ErrorIs(t, err, models.ErrAlreadyClaimed)

	_, err = s.RunJob(ctx, "weekly_report")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestScheduler_CronFires(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := NewMockBatchRunner(ctrl)
	var runs atomic.Int32
	runner.EXPECT().RunReconciliation(gomock.Any()).
		DoAndReturn(func(context.Context) (models.BatchReport, error) {
			runs.Add(1)
			return models.BatchReport{Job: models.JobReconciliation}, nil
		}).MinTimes(1)

	s, err := New(runner, NewMockTransferSettler(ctrl), Config{Reconciliation: "@every 1s"})
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_ScheduleTransfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	settler := NewMockTransferSettler(ctrl)
	s, err := New(NewMockBatchRunner(ctrl), settler, Config{})
	require.NoError(t, err)

	reference := models.NewTransactionReference()
	done := make(chan struct{})
	settler.EXPECT().SettleScheduledByReference(gomock.Any(), reference).
		DoAndReturn(func(context.Context, string) (models.SettlementResult, error) {
			close(done)
			return models.SettlementResult{Reference: reference, Status: models.TransactionStatusCompleted}, nil
		})

	require.NoError(t, s.ScheduleTransfer(reference, 10*time.Millisecond))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled transfer was not settled")
	}

	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_ScheduleTransfer_Reschedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	settler := NewMockTransferSettler(ctrl)
	s, err := New(NewMockBatchRunner(ctrl), settler, Config{})
	require.NoError(t, err)

	reference := models.NewTransactionReference()
	done := make(chan struct{})
	// only the replacement timer fires
	settler.EXPECT().SettleScheduledByReference(gomock.Any(), reference).
		DoAndReturn(func(context.Context, string) (models.SettlementResult, error) {
			close(done)
			return models.SettlementResult{AlreadyTerminal: true}, nil
		}).Times(1)

	require.NoError(t, s.ScheduleTransfer(reference, time.Hour))
	require.NoError(t, s.ScheduleTransfer(reference, 10*time.Millisecond))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("rescheduled transfer was not settled")
	}
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_ScheduleTransfer_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	settler := NewMockTransferSettler(ctrl)
	s, err := New(NewMockBatchRunner(ctrl), settler, Config{})
	require.NoError(t, err)

	err = s.ScheduleTransfer("not-a-reference", time.Second)
	assert.ErrorIs(t, err, models.ErrTransactionNotFound)

	// a failing settlement is logged, not propagated
	reference := models.NewTransactionReference()
	done := make(chan struct{})
	settler.EXPECT().SettleScheduledByReference(gomock.Any(), reference).
		DoAndReturn(func(context.Context, string) (models.SettlementResult, error) {
			defer close(done)
			return models.SettlementResult{}, errors.New("store down")
		})
	require.NoError(t, s.ScheduleTransfer(reference, 0))
	<-done

	require.NoError(t, s.Stop(context.Background()))
	assert.ErrorIs(t, s.ScheduleTransfer(models.NewTransactionReference(), time.Second), ErrStopped)
}

func TestScheduler_ScheduleTransfer_NotScheduled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	settler := NewMockTransferSettler(ctrl)
	s, err := New(NewMockBatchRunner(ctrl), settler, Config{})
	require.NoError(t, err)

	// a PENDING transaction is left for the operator
	reference := models.NewTransactionReference()
	done := make(chan struct{})
	settler.EXPECT().SettleScheduledByReference(gomock.Any(), reference).
		DoAndReturn(func(context.Context, string) (models.SettlementResult, error) {
			defer close(done)
			return models.SettlementResult{}, models.ErrNotScheduled
		}).Times(1)

	require.NoError(t, s.ScheduleTransfer(reference, 0))
	<-done

	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_Stop_CancelsPendingTimers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no settlement may happen
	settler := NewMockTransferSettler(ctrl)
	s, err := New(NewMockBatchRunner(ctrl), settler, DefaultConfig())
	require.NoError(t, err)
	s.Start()

	require.NoError(t, s.ScheduleTransfer(models.NewTransactionReference(), time.Hour))
	require.NoError(t, s.ScheduleTransfer(models.NewTransactionReference(), time.Hour))
	assert.Equal(t, 2, s.Pending())

	require.NoError(t, s.Stop(context.Background()))
	assert.Zero(t, s.Pending())

	// stopping twice is harmless
	assert.NoError(t, s.Stop(context.Background()))
}
