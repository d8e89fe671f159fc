package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/sbilibin2017/gw-ledger/internal/scheduler"
)

// TransferScheduler defines the interface that the scheduler must implement.
type TransferScheduler interface {
	ScheduleTransfer(reference string, delay time.Duration) error
	RunJob(ctx context.Context, job string) (models.BatchReport, error)
}

// ScheduleResponse represents an armed one-shot settlement timer
// swagger:model ScheduleResponse
type ScheduleResponse struct {
	// Transaction reference
	// default: TRX123456789
	Reference string `json:"reference"`

	// Time the settlement fires at
	FiresAt time.Time `json:"fires_at"`
}

// NewScheduleHandler returns an HTTP handler that arms a one-shot settlement timer.
// @Summary Schedule transfer
// @Description Settles the transaction once the delay has passed. The hourly scheduled run still picks it up if the timer is lost.
// @Tags ledger
// @Produce json
// @Param reference path string true "Transaction reference"
// @Param delay query string false "Go duration, e.g. 30s or 5m" default(0s)
// @Success 202 {object} handlers.ScheduleResponse "Timer armed"
// @Failure 400 {object} handlers.ErrorResponse "Invalid delay"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Transaction not found"
// @Failure 503 {object} handlers.ErrorResponse "Scheduler stopped"
// @Router /ledger/transactions/{reference}/schedule [post]
// @Security BearerAuth
func NewScheduleHandler(s TransferScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reference := chi.URLParam(r, "reference")

		var delay time.Duration
		if raw := r.URL.Query().Get("delay"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d < 0 {
				logger.Log.Warnw("invalid schedule delay", "delay", raw, "error", err)
				writeError(w, http.StatusBadRequest, "Invalid delay")
				return
			}
			delay = d
		}

		if err := s.ScheduleTransfer(reference, delay); err != nil {
			logger.Log.Errorw("failed to schedule transfer", "reference", reference, "error", err)
			if errors.Is(err, scheduler.ErrStopped) {
				writeError(w, http.StatusServiceUnavailable, "Scheduler stopped")
				return
			}
			status, msg := ledgerError(err)
			writeError(w, status, msg)
			return
		}

		writeJSON(w, http.StatusAccepted, ScheduleResponse{
			Reference: reference,
			FiresAt:   time.Now().Add(delay).UTC(),
		})
	}
}

// NewRunJobHandler returns an HTTP handler that runs one bulk job immediately.
// @Summary Run job
// @Description Runs scheduled_transfers, daily_interest, monthly_interest or reconciliation now and returns its report.
// @Tags ledger
// @Produce json
// @Param job path string true "Job name"
// @Success 200 {object} models.BatchReport "Batch report"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Unknown job"
// @Failure 409 {object} handlers.ErrorResponse "Already running"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /ledger/jobs/{job}/run [post]
// @Security BearerAuth
func NewRunJobHandler(s TransferScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job := chi.URLParam(r, "job")

		report, err := s.RunJob(r.Context(), job)
		if err != nil {
			logger.Log.Errorw("failed to run job", "job", job, "error", err)
			if errors.Is(err, scheduler.ErrUnknownJob) {
				writeError(w, http.StatusNotFound, "Unknown job")
				return
			}
			status, msg := ledgerError(err)
			writeError(w, status, msg)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}
