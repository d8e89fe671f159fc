package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// InterestAccruer defines the interface that the service must implement.
type InterestAccruer interface {
	AccrueByNumber(ctx context.Context, number string, period models.InterestPeriod) (decimal.Decimal, error)
}

// InterestResponse represents posted interest
// swagger:model InterestResponse
type InterestResponse struct {
	// Account number
	// default: CHB1234567
	AccountNumber string `json:"account_number"`

	// Accrual period
	// default: daily
	Period string `json:"period"`

	// Posted amount, 0.00 when nothing was posted
	// default: 0.14
	Posted string `json:"posted"`
}

// NewInterestHandler returns an HTTP handler that accrues interest on one account.
// @Summary Accrue interest
// @Description Accrues one period of interest on an active savings or investment account. Manual accruals are not deduplicated against the scheduled run.
// @Tags ledger
// @Produce json
// @Param number path string true "Account number"
// @Param period query string false "daily or monthly" default(daily)
// @Success 200 {object} handlers.InterestResponse "Posted interest"
// @Failure 400 {object} handlers.ErrorResponse "Invalid interest period"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /ledger/accounts/{number}/interest [post]
// @Security BearerAuth
func NewInterestHandler(svc InterestAccruer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		number := chi.URLParam(r, "number")

		period := models.InterestPeriod(r.URL.Query().Get("period"))
		if period == "" {
			period = models.InterestPeriodDaily
		}
		if !period.Valid() {
			logger.Log.Warnw("invalid interest period", "period", period)
			writeError(w, http.StatusBadRequest, "Invalid interest period")
			return
		}

		posted, err := svc.AccrueByNumber(ctx, number, period)
		if err != nil {
			status, msg := ledgerError(err)
			logger.Log.Errorw("failed to accrue interest",
				"account", number,
				"period", period,
				"operator", middlewares.OperatorFromContext(ctx),
				"error", err,
			)
			writeError(w, status, msg)
			return
		}

		writeJSON(w, http.StatusOK, InterestResponse{
			AccountNumber: number,
			Period:        string(period),
			Posted:        posted.StringFixed(2),
		})
	}
}
