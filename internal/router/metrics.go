package router

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch verdict label values, bounded by construction.
const (
	verdictMatched          = "matched"
	verdictMethodNotAllowed = "method_not_allowed"
	verdictNotFound         = "not_found"
)

// dispatchMetrics contains Prometheus metrics for request dispatch.
type dispatchMetrics struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	routesRegistered prometheus.Gauge
}

var (
	dispatchMetricsInstance *dispatchMetrics
	dispatchMetricsOnce     sync.Once
)

// getDispatchMetrics returns the singleton dispatch metrics instance.
func getDispatchMetrics() *dispatchMetrics {
	dispatchMetricsOnce.Do(func() {
		dispatchMetricsInstance = &dispatchMetrics{
			dispatchTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "opmux",
					Subsystem: "router",
					Name:      "dispatch_total",
					Help:      "Total number of dispatched requests by verdict",
				},
				[]string{"method", "verdict"},
			),
			dispatchDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "opmux",
					Subsystem: "router",
					Name:      "dispatch_duration_seconds",
					Help:      "Time spent matching a request against the route table",
					Buckets: []float64{
						.000001, .000005, .00001, .00005,
						.0001, .0005, .001, .005, .01,
					},
				},
				[]string{"verdict"},
			),
			routesRegistered: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "opmux",
					Subsystem: "router",
					Name:      "routes_registered",
					Help:      "Number of routes in the last built router",
				},
			),
		}
	})
	return dispatchMetricsInstance
}
