package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Collector exports ledger engine metrics to Prometheus.
type Collector struct {
	settlements   *prometheus.CounterVec
	interestPosts *prometheus.CounterVec
	interestTotal *prometheus.CounterVec
	discrepancies prometheus.Counter
	adjustments   prometheus.Counter
	conflicts     *prometheus.CounterVec
	events        *prometheus.CounterVec
	circuitState  prometheus.Gauge

	batchOutcomes *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
}

// NewCollector creates the ledger metrics under namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		settlements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settlements_total",
				Help:      "Total number of settled transactions per resulting status",
			},
			[]string{"status"},
		),
		interestPosts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interest_postings_total",
				Help:      "Total number of interest postings per period",
			},
			[]string{"period"},
		),
		interestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interest_posted_amount_total",
				Help:      "Sum of posted interest per period",
			},
			[]string{"period"},
		),
		discrepancies: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconciliation_discrepancies_total",
				Help:      "Total number of balance discrepancies found",
			},
		),
		adjustments: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconciliation_adjustments_total",
				Help:      "Total number of posted reconciliation adjustments",
			},
		),
		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conflicts_total",
				Help:      "Total number of concurrent update conflicts per operation",
			},
			[]string{"operation"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of ledger events per type and result",
			},
			[]string{"type", "result"},
		),
		circuitState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "event_publisher_circuit_state",
				Help:      "Event publisher circuit state (0=closed, 1=half-open, 2=open)",
			},
		),
		batchOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_candidates_total",
				Help:      "Total number of processed batch candidates per job and outcome",
			},
			[]string{"job", "outcome"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Duration of bulk ledger runs",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 15), // 10ms to ~3m
			},
			[]string{"job"},
		),
	}
}

// Register registers all metrics with the given registry.
func (c *Collector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.settlements,
		c.interestPosts,
		c.interestTotal,
		c.discrepancies,
		c.adjustments,
		c.conflicts,
		c.events,
		c.circuitState,
		c.batchOutcomes,
		c.batchDuration,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) RecordSettlement(status models.TransactionStatus) {
	c.settlements.WithLabelValues(string(status)).Inc()
}

func (c *Collector) RecordInterest(period models.InterestPeriod, amount decimal.Decimal) {
	c.interestPosts.WithLabelValues(string(period)).Inc()
	c.interestTotal.WithLabelValues(string(period)).Add(amount.InexactFloat64())
}

func (c *Collector) RecordDiscrepancy() {
	c.discrepancies.Inc()
}

func (c *Collector) RecordAdjustment() {
	c.adjustments.Inc()
}

func (c *Collector) RecordConflict(operation string) {
	c.conflicts.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordEvent(eventType models.LedgerEventType, published bool) {
	result := "published"
	if !published {
		result = "dropped"
	}
	c.events.WithLabelValues(string(eventType), result).Inc()
}

// RecordCircuitState records the publisher circuit state as reported by the breaker.
func (c *Collector) RecordCircuitState(state int) {
	c.circuitState.Set(float64(state))
}

// RecordBatch records the outcome counts and the duration of one bulk run.
func (c *Collector) RecordBatch(report models.BatchReport) {
	counts := map[models.Outcome]int{
		models.OutcomeSucceeded: report.Succeeded,
		models.OutcomeFailed:    report.Failed,
		models.OutcomeSkipped:   report.Skipped,
		models.OutcomeError:     report.Errors,
	}
	for outcome, n := range counts {
		if n > 0 {
			c.batchOutcomes.WithLabelValues(report.Job, outcome.String()).Add(float64(n))
		}
	}
	c.batchDuration.WithLabelValues(report.Job).Observe(report.Duration.Seconds())
}

// NoOp discards every measurement.
type NoOp struct{}

func (NoOp) RecordSettlement(models.TransactionStatus)             {}
func (NoOp) RecordInterest(models.InterestPeriod, decimal.Decimal) {}
func (NoOp) RecordDiscrepancy()                                    {}
func (NoOp) RecordAdjustment()                                     {}
func (NoOp) RecordConflict(string)                                 {}
func (NoOp) RecordEvent(models.LedgerEventType, bool)              {}
func (NoOp) RecordCircuitState(int)                                {}
func (NoOp) RecordBatch(models.BatchReport)                        {}
