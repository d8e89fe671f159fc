package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

// TransactionSettler defines the interface that the service must implement.
type TransactionSettler interface {
	SettleByReference(ctx context.Context, reference string) (models.SettlementResult, error)
}

// SettleResponse represents the outcome of a settlement
// swagger:model SettleResponse
type SettleResponse struct {
	// Transaction reference
	// default: TRX123456789
	Reference string `json:"reference"`

	// Resulting status
	// default: COMPLETED
	Status string `json:"status"`

	// Settled amount
	// default: 25.00
	Amount string `json:"amount"`

	// Failure reason for FAILED transactions
	FailureReason string `json:"failure_reason,omitempty"`

	// True when the transaction had already been settled before this request
	AlreadyTerminal bool `json:"already_terminal"`
}

// NewSettleHandler returns an HTTP handler that settles one pending or scheduled transaction.
// @Summary Settle transaction
// @Description Settles a pending or scheduled transaction now. Validation failures are recorded on the transaction and returned with status FAILED.
// @Tags ledger
// @Produce json
// @Param reference path string true "Transaction reference"
// @Success 200 {object} handlers.SettleResponse "Settlement outcome"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Transaction not found"
// @Failure 409 {object} handlers.ErrorResponse "Concurrent update, try again"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /ledger/transactions/{reference}/settle [post]
// @Security BearerAuth
func NewSettleHandler(svc TransactionSettler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reference := chi.URLParam(r, "reference")

		if !models.IsTransactionReference(reference) {
			logger.Log.Warnw("invalid transaction reference", "reference", reference)
			writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}

		result, err := svc.SettleByReference(ctx, reference)
		if err != nil {
			status, msg := ledgerError(err)
			logger.Log.Errorw("failed to settle transaction",
				"reference", reference,
				"operator", middlewares.OperatorFromContext(ctx),
				"error", err,
			)
			writeError(w, status, msg)
			return
		}

		logger.Log.Infow("transaction settled by operator",
			"reference", reference,
			"status", result.Status,
			"operator", middlewares.OperatorFromContext(ctx),
		)

		writeJSON(w, http.StatusOK, SettleResponse{
			Reference:       result.Reference,
			Status:          string(result.Status),
			Amount:          result.Amount.StringFixed(2),
			FailureReason:   result.FailureReason,
			AlreadyTerminal: result.AlreadyTerminal,
		})
	}
}
