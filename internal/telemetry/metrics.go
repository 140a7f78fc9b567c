package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "apify_client"

// Metrics records request engine activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	attempts  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	exhausted *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the client collectors on reg. Collectors that are
// already registered (e.g. by another client sharing reg) are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_attempts_total",
			Help:      "HTTP attempts sent to the Apify API by method and status class",
		}, []string{"method", "status_class"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "retries_total",
			Help:      "Retries scheduled by reason",
		}, []string{"reason"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "retries_exhausted_total",
			Help:      "Calls that ran out of a retry budget by reason",
		}, []string{"reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "call_duration_seconds",
			Help:      "Duration of a whole call including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "outcome"}),
	}

	var err error

	if m.attempts, err = register(reg, m.attempts); err != nil {
		return nil, err
	}

	if m.retries, err = register(reg, m.retries); err != nil {
		return nil, err
	}

	if m.exhausted, err = register(reg, m.exhausted); err != nil {
		return nil, err
	}

	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	return c, fmt.Errorf("registering metrics: %w", err)
}

// ObserveAttempt counts one sent request. status 0 means no response was received.
func (m *Metrics) ObserveAttempt(method string, status int) {
	if m == nil {
		return
	}

	m.attempts.WithLabelValues(method, statusClass(status)).Inc()
}

// ObserveRetry counts one scheduled retry.
func (m *Metrics) ObserveRetry(reason string) {
	if m == nil {
		return
	}

	m.retries.WithLabelValues(reason).Inc()
}

// ObserveExhausted counts one call that ran out of retries.
func (m *Metrics) ObserveExhausted(reason string) {
	if m == nil {
		return
	}

	m.exhausted.WithLabelValues(reason).Inc()
}

// ObserveCall records the duration of a whole call.
func (m *Metrics) ObserveCall(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.duration.WithLabelValues(method, outcome).Observe(d.Seconds())
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}

	return strconv.Itoa(status/100) + "xx"
}
