package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registrar module.
type Metrics struct {
	// Registrations by kind (root, sub) and payment type
	Registrations *prometheus.CounterVec

	// Reclaims and revocations
	Reclaims    prometheus.Counter
	Revocations prometheus.Counter

	// Registration failures by error code
	Failures *prometheus.CounterVec

	// Latency of full registrar operations
	OperationLatency *prometheus.HistogramVec
}

// New creates a new Metrics instance with all registrar metrics registered.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nameledger_registrations_total",
			Help: "Total successful domain registrations by kind and payment type",
		}, []string{"kind", "payment_type"}),

		Reclaims: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameledger_reclaims_total",
			Help: "Total successful domain reclaims",
		}),

		Revocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nameledger_revocations_total",
			Help: "Total successful domain revocations",
		}),

		Failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nameledger_registrar_failures_total",
			Help: "Total failed registrar operations by operation and error code",
		}, []string{"op", "code"}),

		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nameledger_registrar_operation_duration_seconds",
			Help:    "Duration of registrar operations end to end",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"op"}),
	}
}

// IncrementRegistration records a successful registration.
func (m *Metrics) IncrementRegistration(kind, paymentType string) {
	if m != nil {
		m.Registrations.WithLabelValues(kind, paymentType).Inc()
	}
}

// IncrementFailure records a failed operation.
func (m *Metrics) IncrementFailure(op, code string) {
	if m != nil {
		m.Failures.WithLabelValues(op, code).Inc()
	}
}

// ObserveOperation records an operation's duration.
func (m *Metrics) ObserveOperation(op string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}

// IncrementReclaim records a successful reclaim.
func (m *Metrics) IncrementReclaim() {
	if m != nil {
		m.Reclaims.Inc()
	}
}

// IncrementRevocation records a successful revocation.
func (m *Metrics) IncrementRevocation() {
	if m != nil {
		m.Revocations.Inc()
	}
}
