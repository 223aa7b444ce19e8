package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	ReasonUniqueViolation      = "unique_violation"
	ReasonSerializationFailure = "serialization_failure"
	ReasonLockTimeout          = "db_lock_timeout"
	ReasonDeadlineExceeded     = "deadline_exceeded"
	ReasonNotFound             = "not_found"
	ReasonUnknown              = "unknown"
)

const (
	OperationChartAccountCreate = "chart_account_create"
	OperationLedgerEntryCreate  = "ledger_entry_create"
	OperationLedgerEntryUpdate  = "ledger_entry_update"
	OperationLedgerEntryConfirm = "ledger_entry_confirm"
	OperationLedgerEntryDelete  = "ledger_entry_delete"
)

// StoreMetrics tracks retries and failures of transactional writes and report latency.
type StoreMetrics struct {
	retries        *prometheus.CounterVec
	errors         *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
}

func NewStoreMetrics(cfg Config) *StoreMetrics {
	return newStoreMetrics(prometheus.DefaultRegisterer, cfg)
}

func newStoreMetrics(registerer prometheus.Registerer, cfg Config) *StoreMetrics {
	constLabels := serviceLabels(cfg)
	m := &StoreMetrics{
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookkeeper_store_write_retries_total",
			Help:        "Write retries caused by code generation races.",
			ConstLabels: constLabels,
		}, []string{"operation", "reason"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookkeeper_store_write_errors_total",
			Help:        "Failed transactional writes by low-cardinality reason.",
			ConstLabels: constLabels,
		}, []string{"operation", "reason"}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "bookkeeper_report_duration_seconds",
			Help:        "Statement and DRE computation latency.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"report"}),
	}
	registerOrReuse(registerer, &m.retries)
	registerOrReuse(registerer, &m.errors)
	registerOrReuse(registerer, &m.reportDuration)
	return m
}

func (m *StoreMetrics) IncRetry(operation string, err error) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(operation, ClassifyStoreError(err)).Inc()
}

func (m *StoreMetrics) IncError(operation string, err error) {
	if m == nil || err == nil {
		return
	}
	m.errors.WithLabelValues(operation, ClassifyStoreError(err)).Inc()
}

func (m *StoreMetrics) ObserveReport(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(report).Observe(d.Seconds())
}

// ClassifyStoreError maps store errors to a bounded set of reasons.
func ClassifyStoreError(err error) string {
	switch {
	case err == nil:
		return ReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonDeadlineExceeded
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ReasonNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), hasPGCode(err, "23505"):
		return ReasonUniqueViolation
	case hasPGCode(err, "40001"):
		return ReasonSerializationFailure
	case hasPGCode(err, "55P03"):
		return ReasonLockTimeout
	default:
		return ReasonUnknown
	}
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
