// Package metrics prometheus коллекторы сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "billing"

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	ledgerEntries     *prometheus.CounterVec
	ledgerAmount      *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	authAlerts        prometheus.Counter
}

// New регистрирует коллекторы в собственном реестре, поэтому несколько экземпляров не конфликтуют.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of billing operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Histogram of billing operation durations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ledgerEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_entries_total",
				Help:      "Total number of ledger entries by transaction type",
			},
			[]string{"type"},
		),
		ledgerAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_amount_total",
				Help:      "Sum of ledger entry amounts by transaction type",
			},
			[]string{"type"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_time_seconds",
				Help:      "Histogram of response times",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		authAlerts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failure_alerts_total",
			Help:      "Number of times a client crossed the authentication failure limit",
		}),
	}
}

func (m *Metrics) ObserveOperation(operation string, err error, elapsed time.Duration) {
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveLedgerEntry(t domain.TransactionType, amount decimal.Decimal) {
	m.ledgerEntries.WithLabelValues(string(t)).Inc()
	m.ledgerAmount.WithLabelValues(string(t)).Add(amount.Abs().InexactFloat64())
}

func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveAuthAlert() {
	m.authAlerts.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Outcome метка результата операции: бизнес-отказы считаются отдельно от сбоев.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case domain.IsBusinessError(err):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
