package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records payment attempt and verification outcomes.
type PaymentMetrics struct {
	attempts  *prometheus.CounterVec
	verified  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	gatewayRT *prometheus.HistogramVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_attempts_total",
		Help: "Payment attempts by method and outcome.",
	}, []string{"method", "outcome"})
	verified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verified_total",
		Help: "Payments verified by an admin.",
	}, []string{"method"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_rejected_total",
		Help: "Payments rejected by an admin.",
	}, []string{"method"})
	gatewayRT := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_gateway_duration_seconds",
		Help:    "Round-trip latency of gateway captures in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	reg.MustRegister(attempts, verified, rejected, gatewayRT)
	return &PaymentMetrics{
		attempts:  attempts,
		verified:  verified,
		rejected:  rejected,
		gatewayRT: gatewayRT,
	}
}

// IncAttempt increments the attempt counter for the method/outcome pair.
func (p *PaymentMetrics) IncAttempt(method, outcome string) {
	if p == nil || p.attempts == nil {
		return
	}
	p.attempts.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncVerified increments the verified counter for the named method.
func (p *PaymentMetrics) IncVerified(method string) {
	if p == nil || p.verified == nil {
		return
	}
	p.verified.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncRejected increments the rejected counter for the named method.
func (p *PaymentMetrics) IncRejected(method string) {
	if p == nil || p.rejected == nil {
		return
	}
	p.rejected.WithLabelValues(normalizeLabel(method)).Inc()
}

// ObserveGatewayDuration records the gateway round-trip for the named method.
func (p *PaymentMetrics) ObserveGatewayDuration(method string, duration time.Duration) {
	if p == nil || p.gatewayRT == nil {
		return
	}
	p.gatewayRT.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
