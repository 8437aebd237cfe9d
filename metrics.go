package main

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the node's Prometheus collectors.  They live on their own
// registry so tests and multiple pollers do not collide on the default one.
type Metrics struct {
	Registry             *prometheus.Registry
	DemandAsserted       prometheus.Gauge
	GrantDrivenLow       prometheus.Gauge
	OrientationChanges   *prometheus.CounterVec
	SensorReadFailures   prometheus.Counter
	NotificationsDropped prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DemandAsserted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nodehal_demand_asserted",
			Help: "1 while the peer asserts demand, 0 otherwise.",
		}),
		GrantDrivenLow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nodehal_grant_driven_low",
			Help: "1 while this node drives the grant line low, 0 while released.",
		}),
		OrientationChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nodehal_orientation_changes_total",
			Help: "Orientation transitions by new orientation.",
		}, []string{"orientation"}),
		SensorReadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nodehal_sensor_read_failures_total",
			Help: "Accelerometer reads that returned a stale sample.",
		}),
		NotificationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nodehal_notifications_dropped_total",
			Help: "State change events dropped because the notifier queue was full.",
		}),
	}
	m.Registry.MustRegister(m.DemandAsserted, m.GrantDrivenLow, m.OrientationChanges, m.SensorReadFailures, m.NotificationsDropped)
	return m
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
