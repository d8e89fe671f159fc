package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-ledger/internal/models"
)

//go:generate mockgen --destination=handlers_mock.go --package=handlers . TransactionSettler,InterestAccruer,AccountReconciler,TransferScheduler

// ErrorResponse represents an error response of the operator API
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Transaction not found
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// ledgerError maps a ledger error to an HTTP status and a client message.
func ledgerError(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound, "Account not found"
	case errors.Is(err, models.ErrTransactionNotFound):
		return http.StatusNotFound, "Transaction not found"
	case errors.Is(err, models.ErrInvalidPeriod):
		return http.StatusBadRequest, "Invalid interest period"
	case errors.Is(err, models.ErrRetriesExhausted), errors.Is(err, models.ErrConflict):
		return http.StatusConflict, "Concurrent update, try again"
	case errors.Is(err, models.ErrAlreadyClaimed):
		return http.StatusConflict, "Already running"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
