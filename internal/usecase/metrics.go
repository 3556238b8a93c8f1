package usecase

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors recorded by the scan usecase
type Metrics struct {
	scans    *prometheus.CounterVec
	upstream *prometheus.HistogramVec
}

// NewMetrics registers the scan collectors on reg. Collectors that are
// already registered are reused so several routers can share a registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecoscan",
		Name:      "scans_total",
		Help:      "Number of product scans by mode, outcome and cache use.",
	}, []string{"mode", "status", "cached"})

	upstream := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ecoscan",
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of inference endpoint calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"provider"})

	return &Metrics{
		scans:    register(reg, scans),
		upstream: register(reg, upstream),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) observeScan(mode, status string, cached bool) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(mode, status, strconv.FormatBool(cached)).Inc()
}

func (m *Metrics) observeUpstream(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(provider).Observe(d.Seconds())
}
