package sim

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsProcessed *prometheus.CounterVec
	tripsCompleted    *prometheus.CounterVec
	pickupWait        prometheus.Histogram
	eventLoopSteps    prometheus.Counter
	invalidEventTimes prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Histogram, prometheus.Counter, prometheus.Counter) {
	req := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sim_requests_processed_total",
			Help: "Number of requests processed by outcome",
		},
		[]string{"outcome"},
	)
	trips := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sim_trips_completed_total",
			Help: "Number of trips completed",
		},
		[]string{"forced"},
	)
	wait := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sim_pickup_wait_minutes",
			Help:    "Wait from request to actual pickup in simulated minutes",
			Buckets: []float64{2, 5, 10, 15, 20, 30, 45, 60},
		},
	)
	steps := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sim_event_loop_iterations_total",
			Help: "Iterations of the event-driven time advance loop",
		},
	)
	invalid := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sim_invalid_event_times_total",
			Help: "Pending event times observed before the current clock",
		},
	)
	return req, trips, wait, steps, invalid
}

func init() {
	requestsProcessed, tripsCompleted, pickupWait, eventLoopSteps, invalidEventTimes = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers simulation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(requestsProcessed, tripsCompleted, pickupWait, eventLoopSteps, invalidEventTimes)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	requestsProcessed, tripsCompleted, pickupWait, eventLoopSteps, invalidEventTimes = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
