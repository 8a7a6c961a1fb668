// Package metrics provides Prometheus metrics collection for the
// scaffold dispatch pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the dispatcher.
type Collector struct {
	// Dispatch metrics
	DispatchesTotal  *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec

	// Media metrics
	MediaOpsTotal *prometheus.CounterVec

	// Search metrics
	SearchesTotal prometheus.Counter
}

// New creates a collector with all metrics registered on reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		DispatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scaffold",
				Name:      "dispatches_total",
				Help:      "Total number of dispatched actions",
			},
			[]string{"module", "action", "outcome"},
		),
		DispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "scaffold",
				Name:      "dispatch_duration_seconds",
				Help:      "Dispatch duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"module", "action"},
		),
		MediaOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scaffold",
				Name:      "media_operations_total",
				Help:      "Total number of media store operations",
			},
			[]string{"operation", "outcome"},
		),
		SearchesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "scaffold",
				Name:      "searches_total",
				Help:      "Total number of reference searches",
			},
		),
	}
}

// ObserveDispatch records one dispatch call.
func (c *Collector) ObserveDispatch(module, action, outcome string, d time.Duration) {
	c.DispatchesTotal.WithLabelValues(module, action, outcome).Inc()
	c.DispatchDuration.WithLabelValues(module, action).Observe(d.Seconds())
}

// ObserveMediaOp records one media store operation.
func (c *Collector) ObserveMediaOp(operation, outcome string) {
	c.MediaOpsTotal.WithLabelValues(operation, outcome).Inc()
}
