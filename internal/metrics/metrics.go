package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics for the account lifecycle.
type Metrics struct {
	AccountsRegistered  prometheus.Counter
	AccountsUpdated     prometheus.Counter
	AccountsDeactivated prometheus.Counter
	AccountsDeleted     prometheus.Counter
	OperationDuration   *prometheus.HistogramVec
	HTTPRequests        *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		AccountsRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "accounts_registered_total",
			Help: "Total number of accounts registered",
		}),
		AccountsUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "accounts_updated_total",
			Help: "Total number of account updates",
		}),
		AccountsDeactivated: f.NewCounter(prometheus.CounterOpts{
			Name: "accounts_deactivated_total",
			Help: "Total number of account deactivations",
		}),
		AccountsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "accounts_deleted_total",
			Help: "Total number of accounts deleted",
		}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accounts_operation_duration_seconds",
			Help:    "Duration of account service operations, including failed ones",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by status code and method",
		}, []string{"code", "method"}),
	}
}

func (m *Metrics) IncrementRegistered() {
	m.AccountsRegistered.Inc()
}

func (m *Metrics) IncrementUpdated() {
	m.AccountsUpdated.Inc()
}

func (m *Metrics) IncrementDeactivated() {
	m.AccountsDeactivated.Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.AccountsDeleted.Inc()
}

// ObserveOperation records the duration of op.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// InstrumentHandler counts the requests handled by next.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(m.HTTPRequests, next)
}
