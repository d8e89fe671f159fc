package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Register(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector("ledger")

	require.NoError(t, c.Register(registry))
	// registering twice reports the duplicate
	assert.Error(t, c.Register(registry))
}

func TestCollector_Record(t *testing.T) {
	c := NewCollector("ledger")

	c.RecordSettlement(models.TransactionStatusCompleted)
	c.RecordSettlement(models.TransactionStatusCompleted)
	c.RecordSettlement(models.TransactionStatusFailed)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.settlements.WithLabelValues("COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.settlements.WithLabelValues("FAILED")))

	c.RecordInterest(models.InterestPeriodDaily, decimal.RequireFromString("0.14"))
	c.RecordInterest(models.InterestPeriodDaily, decimal.RequireFromString("0.96"))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.interestPosts.WithLabelValues("daily")))
	assert.InDelta(t, 1.10, testutil.ToFloat64(c.interestTotal.WithLabelValues("daily")), 1e-9)

	c.RecordDiscrepancy()
	c.RecordAdjustment()
	c.RecordConflict("settle")
	c.RecordEvent(models.EventInterestPosted, true)
	c.RecordEvent(models.EventInterestPosted, false)
	c.RecordCircuitState(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.discrepancies))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.adjustments))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.conflicts.WithLabelValues("settle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues("interest_posted", "published")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues("interest_posted", "dropped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.circuitState))
}

func TestCollector_RecordBatch(t *testing.T) {
	c := NewCollector("ledger")

	c.RecordBatch(models.BatchReport{
		Job:        models.JobScheduledTransfers,
		Candidates: 5,
		Succeeded:  3,
		Failed:     1,
		Errors:     1,
		Duration:   120 * time.Millisecond,
	})

	assert.Equal(t, 3.0, testutil.ToFloat64(c.batchOutcomes.WithLabelValues(models.JobScheduledTransfers, "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.batchOutcomes.WithLabelValues(models.JobScheduledTransfers, "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.batchOutcomes.WithLabelValues(models.JobScheduledTransfers, "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.batchDuration))
}

func TestNoOp(t *testing.T) {
	var n NoOp
	assert.NotPanics(t, func() {
		n.RecordSettlement(models.TransactionStatusCompleted)
		n.RecordInterest(models.InterestPeriodMonthly, decimal.NewFromInt(1))
		n.RecordDiscrepancy()
		n.RecordAdjustment()
		n.RecordConflict("x")
		n.RecordEvent(models.EventTransactionFailed, false)
		n.RecordCircuitState(0)
		n.RecordBatch(models.BatchReport{})
	})
}
