package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInterestHandler(t *testing.T) {
	const pattern = "/accounts/{number}/interest"
	number := "CHB0000001"

	tests := []struct {
		name           string
		query          string
		setupMocks     func(m *MockInterestAccruer)
		expectedStatus int
		expectedPosted string
		expectedPeriod string
	}{
		{
			name: "daily by default",
			setupMocks: func(m *MockInterestAccruer) {
				m.EXPECT().AccrueByNumber(gomock.Any(), number, models.InterestPeriodDaily).
					Return(decimal.RequireFromString("0.14"), nil)
			},
			expectedStatus: http.StatusOK,
			expectedPosted: "0.14",
			expectedPeriod: "daily",
		},
		{
			name:  "monthly",
			query: "?period=monthly",
			setupMocks: func(m *MockInterestAccruer) {
				m.EXPECT().AccrueByNumber(gomock.Any(), number, models.InterestPeriodMonthly).
					Return(decimal.RequireFromString("4.17"), nil)
			},
			expectedStatus: http.StatusOK,
			expectedPosted: "4.17",
			expectedPeriod: "monthly",
		},
		{
			name: "nothing posted",
			setupMocks: func(m *MockInterestAccruer) {
				m.EXPECT().AccrueByNumber(gomock.Any(), number, models.InterestPeriodDaily).Return(decimal.Zero, nil)
			},
			expectedStatus: http.StatusOK,
			expectedPosted: "0.00",
			expectedPeriod: "daily",
		},
		{
			name:           "invalid period",
			query:          "?period=weekly",
			setupMocks:     func(m *MockInterestAccruer) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "account not found",
			setupMocks: func(m *MockInterestAccruer) {
				m.EXPECT().AccrueByNumber(gomock.Any(), number, models.InterestPeriodDaily).
					Return(decimal.Zero, models.ErrAccountNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "store down",
			setupMocks: func(m *MockInterestAccruer) {
				m.EXPECT().AccrueByNumber(gomock.Any(), number, models.InterestPeriodDaily).
					Return(decimal.Zero, errors.New("timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockInterestAccruer(ctrl)
			tt.setupMocks(svc)

			rr := serve(t, http.MethodPost, pattern, NewInterestHandler(svc), "/accounts/"+number+"/interest"+tt.query)
			assert.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedStatus == http.StatusOK {
				resp := decode[InterestResponse](t, rr)
				assert.Equal(t, number, resp.AccountNumber)
				assert.Equal(t, tt.expectedPosted, resp.Posted)
				assert.Equal(t, tt.expectedPeriod, resp.Period)
			}
		})
	}
}
