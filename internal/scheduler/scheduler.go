package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

//go:generate mockgen --destination=scheduler_mock.go --package=scheduler . BatchRunner,TransferSettler

// BatchRunner runs the bulk ledger jobs.
type BatchRunner interface {
	RunScheduledTransfers(ctx context.Context, now time.Time) (models.BatchReport, error)
	RunDailyInterest(ctx context.Context, day time.Time) (models.BatchReport, error)
	RunMonthlyInterest(ctx context.Context, month time.Time) (models.BatchReport, error)
	RunReconciliation(ctx context.Context) (models.BatchReport, error)
}

// TransferSettler settles one transaction by its reference while it is still SCHEDULED.
type TransferSettler interface {
	SettleScheduledByReference(ctx context.Context, reference string) (models.SettlementResult, error)
}

var (
	// ErrUnknownJob is returned by RunJob for a job name that is not scheduled.
	ErrUnknownJob = errors.New("unknown job")
	// ErrStopped is returned when work is submitted after Stop.
	ErrStopped = errors.New("scheduler stopped")
)

// Config holds the cron expressions of the bulk jobs. An empty expression disables the job.
type Config struct {
	ScheduledTransfers string
	DailyInterest      string
	MonthlyInterest    string
	Reconciliation     string
	Location           *time.Location
}

// DefaultConfig returns hourly transfers, midnight interest and a 23:45 reconciliation in UTC.
// Monthly interest stays disabled.
func DefaultConfig() Config {
	return Config{
		ScheduledTransfers: "0 * * * *",
		DailyInterest:      "0 0 * * *",
		Reconciliation:     "45 23 * * *",
		Location:           time.UTC,
	}
}

// Scheduler fires the bulk ledger jobs on wall-clock time and settles one-shot scheduled transfers.
type Scheduler struct {
	cron    *cron.Cron
	runner  BatchRunner
	settler TransferSettler
	loc     *time.Location
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timers  map[string]*time.Timer
	entries map[string]cron.EntryID
	stopped bool
	wg      sync.WaitGroup
}

// New creates a Scheduler and registers every job that has a cron expression.
func New(runner BatchRunner, settler TransferSettler, cfg Config) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	log := cronLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		runner:  runner,
		settler: settler,
		loc:     loc,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		timers:  make(map[string]*time.Timer),
		entries: make(map[string]cron.EntryID),
	}

	specs := map[string]string{
		models.JobScheduledTransfers: cfg.ScheduledTransfers,
		models.JobDailyInterest:      cfg.DailyInterest,
		models.JobMonthlyInterest:    cfg.MonthlyInterest,
		models.JobReconciliation:     cfg.Reconciliation,
	}
	for job, spec := range specs {
		job := job
		if spec == "" {
			logger.Log.Infow("job disabled", "job", job)
			continue
		}
		id, err := s.cron.AddFunc(spec, func() { s.fire(job) })
		if err != nil {
			cancel()
			return nil, fmt.Errorf("invalid cron expression %q for %s: %w", spec, job, err)
		}
		s.entries[job] = id
	}

	return s, nil
}

// Start starts the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.Infow("scheduler started", "jobs", len(s.entries), "location", s.loc.String())
}

// Stop stops firing new jobs, cancels pending one-shot timers and waits for running work
// until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	for reference, timer := range s.timers {
		if timer.Stop() {
			s.wg.Done()
		}
		delete(s.timers, reference)
	}
	s.mu.Unlock()

	cronDone := s.cron.Stop().Done()
	done := make(chan struct{})
	go func() {
		<-cronDone
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		logger.Log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// NextRun returns the next firing time of a scheduled job.
func (s *Scheduler) NextRun(job string) (time.Time, bool) {
	id, ok := s.entries[job]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// RunJob runs a bulk job immediately, the way its cron trigger would.
func (s *Scheduler) RunJob(ctx context.Context, job string) (models.BatchReport, error) {
	now := s.now().In(s.loc)

	switch job {
	case models.JobScheduledTransfers:
		return s.runner.RunScheduledTransfers(ctx, now)
	case models.JobDailyInterest:
		return s.runner.RunDailyInterest(ctx, now)
	case models.JobMonthlyInterest:
		return s.runner.RunMonthlyInterest(ctx, now)
	case models.JobReconciliation:
		return s.runner.RunReconciliation(ctx)
	default:
		return models.BatchReport{}, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}
}

func (s *Scheduler) fire(job string) {
	report, err := s.RunJob(s.ctx, job)
	switch {
	case errors.Is(err, models.ErrAlreadyClaimed):
		logger.Log.Infow("job already running elsewhere, skipping", "job", job)
	case err != nil:
		logger.Log.Errorw("job failed", "job", job, "error", err)
	default:
		logger.Log.Debugw("job fired", "job", job, "candidates", report.Candidates)
	}
}

// ScheduleTransfer arms a one-shot timer that settles the transaction after delay.
// Re-scheduling a reference replaces its pending timer.
func (s *Scheduler) ScheduleTransfer(reference string, delay time.Duration) error {
	if !models.IsTransactionReference(reference) {
		return fmt.Errorf("%w: %q", models.ErrTransactionNotFound, reference)
	}
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if prev, ok := s.timers[reference]; ok && prev.Stop() {
		s.wg.Done()
	}

	s.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		defer s.wg.Done()

		s.mu.Lock()
		if s.timers[reference] == timer {
			delete(s.timers, reference)
		}
		s.mu.Unlock()

		s.settle(reference)
	})
	s.timers[reference] = timer

	logger.Log.Infow("transfer scheduled", "reference", reference, "delay", delay)
	return nil
}

// Pending returns the number of armed one-shot timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) settle(reference string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorw("scheduled transfer panicked", "reference", reference, "panic", r)
		}
	}()

	result, err := s.settler.SettleScheduledByReference(s.ctx, reference)
	if errors.Is(err, models.ErrNotScheduled) {
		logger.Log.Infow("transaction no longer scheduled, skipping", "reference", reference)
		return
	}
	if err != nil {
		logger.Log.Errorw("scheduled transfer failed", "reference", reference, "error", err)
		return
	}
	if result.AlreadyTerminal {
		logger.Log.Infow("scheduled transfer already settled", "reference", reference, "status", result.Status)
		return
	}
	logger.Log.Infow("scheduled transfer settled",
		"reference", reference,
		"status", result.Status,
		"reason", result.FailureReason,
	)
}

// cronLogger routes cron's own logging through the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Log.Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Log.Errorw(msg, append(keysAndValues, "error", err)...)
}
