// Package metrics exports action telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "blobgate"

// Prometheus records action requests, latency and dropped aggregation items.
type Prometheus struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	dropped  *prometheus.CounterVec
}

// NewPrometheus registers the action metrics on reg (the default registerer when nil).
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_requests_total",
			Help:      "Action requests by action and response status.",
		}, []string{"action", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Time spent serving an action.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_dropped_total",
			Help:      "Stored documents skipped by listing actions because they could not be fetched or parsed.",
		}, []string{"action"}),
	}

	if err := register(reg, &p.requests); err != nil {
		return nil, err
	}
	if err := register(reg, &p.duration); err != nil {
		return nil, err
	}
	if err := register(reg, &p.dropped); err != nil {
		return nil, err
	}
	return p, nil
}

// register adds c to reg, reusing an identical collector that is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				*c = existing
				return nil
			}
		}
		return fmt.Errorf("register action metric: %w", err)
	}
	return nil
}

// ObserveAction records one served request.
func (p *Prometheus) ObserveAction(action string, status int, elapsed time.Duration) {
	p.requests.WithLabelValues(action, strconv.Itoa(status)).Inc()
	p.duration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// ObserveDropped records n documents skipped while aggregating.
func (p *Prometheus) ObserveDropped(action string, n int) {
	p.dropped.WithLabelValues(action).Add(float64(n))
}
