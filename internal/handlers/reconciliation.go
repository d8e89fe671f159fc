package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

// AccountReconciler defines the interface that the service must implement.
type AccountReconciler interface {
	ReconcileByNumber(ctx context.Context, number string) (*models.Discrepancy, error)
	AdjustByNumber(ctx context.Context, number string) (*models.Transaction, error)
}

// ReconciliationResponse represents the result of reconciling one account
// swagger:model ReconciliationResponse
type ReconciliationResponse struct {
	// Account number
	// default: CHB1234567
	AccountNumber string `json:"account_number"`

	// balanced or discrepancy
	// default: balanced
	Status string `json:"status"`

	// Stored balance, set on discrepancy
	Stored string `json:"stored,omitempty"`

	// Balance computed from completed history, set on discrepancy
	Computed string `json:"computed,omitempty"`

	// Stored minus computed, set on discrepancy
	Difference string `json:"difference,omitempty"`
}

// AdjustmentResponse represents a posted reconciliation adjustment
// swagger:model AdjustmentResponse
type AdjustmentResponse struct {
	// Account number
	// default: CHB1234567
	AccountNumber string `json:"account_number"`

	// Adjustment transaction reference, empty when the account was balanced
	Reference string `json:"reference,omitempty"`

	// Signed adjustment amount
	// default: -1.50
	Amount string `json:"amount"`

	// True when nothing had to be adjusted
	Balanced bool `json:"balanced"`
}

// Reconciliation statuses
const (
	ReconciliationBalanced    = "balanced"
	ReconciliationDiscrepancy = "discrepancy"
)

// NewReconciliationHandler returns an HTTP handler that reconciles one account.
// @Summary Reconcile account
// @Description Compares the stored balance with the balance computed from completed transactions. Never changes the ledger.
// @Tags ledger
// @Produce json
// @Param number path string true "Account number"
// @Success 200 {object} handlers.ReconciliationResponse "Reconciliation result"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /ledger/accounts/{number}/reconciliation [get]
// @Security BearerAuth
func NewReconciliationHandler(svc AccountReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		number := chi.URLParam(r, "number")

		d, err := svc.ReconcileByNumber(ctx, number)
		if err != nil {
			status, msg := ledgerError(err)
			logger.Log.Errorw("failed to reconcile account", "account", number, "error", err)
			writeError(w, status, msg)
			return
		}

		resp := ReconciliationResponse{AccountNumber: number, Status: ReconciliationBalanced}
		if d != nil {
			resp.Status = ReconciliationDiscrepancy
			resp.Stored = d.Stored.StringFixed(2)
			resp.Computed = d.Computed.StringFixed(2)
			resp.Difference = d.Difference.StringFixed(2)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// NewAdjustHandler returns an HTTP handler that posts a reconciliation adjustment.
// @Summary Adjust account
// @Description Posts a completed ADJUSTMENT transaction for the difference between stored and computed balance. The stored balance is not overwritten.
// @Tags ledger
// @Produce json
// @Param number path string true "Account number"
// @Success 200 {object} handlers.AdjustmentResponse "Adjustment result"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 409 {object} handlers.ErrorResponse "Concurrent update, try again"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /ledger/accounts/{number}/reconciliation/adjust [post]
// @Security BearerAuth
func NewAdjustHandler(svc AccountReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		number := chi.URLParam(r, "number")

		adj, err := svc.AdjustByNumber(ctx, number)
		if err != nil {
			status, msg := ledgerError(err)
			logger.Log.Errorw("failed to adjust account",
				"account", number,
				"operator", middlewares.OperatorFromContext(ctx),
				"error", err,
			)
			writeError(w, status, msg)
			return
		}

		if adj == nil {
			writeJSON(w, http.StatusOK, AdjustmentResponse{AccountNumber: number, Amount: "0.00", Balanced: true})
			return
		}

		logger.Log.Infow("reconciliation adjustment posted",
			"account", number,
			"reference", adj.Reference,
			"amount", adj.Amount.StringFixed(2),
			"operator", middlewares.OperatorFromContext(ctx),
		)
		writeJSON(w, http.StatusOK, AdjustmentResponse{
			AccountNumber: number,
			Reference:     adj.Reference,
			Amount:        adj.Amount.StringFixed(2),
		})
	}
}
