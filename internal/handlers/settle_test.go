package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSettleHandler(t *testing.T) {
	const pattern = "/transactions/{reference}/settle"
	reference := "TRX123456789"

	tests := []struct {
		name           string
		reference      string
		setupMocks     func(m *MockTransactionSettler)
		expectedStatus int
		check          func(t *testing.T, resp SettleResponse)
	}{
		{
			name:      "completed",
			reference: reference,
			setupMocks: func(m *MockTransactionSettler) {
				m.EXPECT().SettleByReference(gomock.Any(), reference).Return(models.SettlementResult{
					Reference: reference,
					Status:    models.TransactionStatusCompleted,
					Amount:    decimal.RequireFromString("25"),
				}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, resp SettleResponse) {
				assert.Equal(t, "COMPLETED", resp.Status)
				assert.Equal(t, "25.00", resp.Amount)
				assert.False(t, resp.AlreadyTerminal)
			},
		},
		{
			name:      "validation failure is a result, not an error",
			reference: reference,
			setupMocks: func(m *MockTransactionSettler) {
				m.EXPECT().SettleByReference(gomock.Any(), reference).Return(models.SettlementResult{
					Reference:     reference,
					Status:        models.TransactionStatusFailed,
					Amount:        decimal.RequireFromString("500.00"),
					FailureReason: models.FailureInsufficientFunds,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, resp SettleResponse) {
				assert.Equal(t, "FAILED", resp.Status)
				assert.Equal(t, models.FailureInsufficientFunds, resp.FailureReason)
			},
		},
		{
			name:           "malformed reference",
			reference:      "abc",
			setupMocks:     func(m *MockTransactionSettler) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:      "not found",
			reference: reference,
			setupMocks: func(m *MockTransactionSettler) {
				m.EXPECT().SettleByReference(gomock.Any(), reference).
					Return(models.SettlementResult{}, fmt.Errorf("%w: %s", models.ErrTransactionNotFound, reference))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:      "retries exhausted",
			reference: reference,
			setupMocks: func(m *MockTransactionSettler) {
				m.EXPECT().SettleByReference(gomock.Any(), reference).
					Return(models.SettlementResult{}, fmt.Errorf("%w: %w", models.ErrRetriesExhausted, models.ErrConflict))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:      "store down",
			reference: reference,
			setupMocks: func(m *MockTransactionSettler) {
				m.EXPECT().SettleByReference(gomock.Any(), reference).
					Return(models.SettlementResult{}, errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockTransactionSettler(ctrl)
			tt.setupMocks(svc)

			rr := serve(t, http.MethodPost, pattern, NewSettleHandler(svc), "/transactions/"+tt.reference+"/settle")
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			if tt.check != nil {
				tt.check(t, decode[SettleResponse](t, rr))
			} else {
				assert.NotEmpty(t, decode[ErrorResponse](t, rr).Error)
			}
		})
	}
}
