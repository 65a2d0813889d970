package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/mkervran/fleetsim/core/metrics"
)

// PromSink records simulation results in Prometheus metrics.
type PromSink struct {
	trips   *prometheus.CounterVec
	revenue prometheus.Counter
	wait    prometheus.Histogram
	ratio   prometheus.Histogram
	overall prometheus.Gauge
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.SimRecorder, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.SimRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	trips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetsim_trips_total",
		Help: "Total number of completed trips",
	}, []string{"vehicle_id", "forced"})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleetsim_revenue_total",
		Help: "Cumulative trip revenue",
	})
	wait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetsim_pickup_wait_minutes",
		Help:    "Wait from request to pickup in simulated minutes",
		Buckets: []float64{2, 5, 10, 15, 20, 30, 45, 60},
	})
	ratio := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetsim_deadhead_ratio",
		Help:    "Deadhead share of the miles driven per trip",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})
	overall := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleetsim_overall_score",
		Help: "Overall score of the last completed run",
	})

	if err := register(reg, &trips); err != nil {
		return nil, err
	}
	if err := registerCounter(reg, &revenue); err != nil {
		return nil, err
	}
	if err := registerHistogram(reg, &wait); err != nil {
		return nil, err
	}
	if err := registerHistogram(reg, &ratio); err != nil {
		return nil, err
	}
	if err := registerGauge(reg, &overall); err != nil {
		return nil, err
	}

	return &PromSink{trips: trips, revenue: revenue, wait: wait, ratio: ratio, overall: overall}, nil
}

func register(reg prometheus.Registerer, c **prometheus.CounterVec) error {
	if err := reg.Register(*c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*c = are.ExistingCollector.(*prometheus.CounterVec)
			return nil
		}
		return err
	}
	return nil
}

func registerCounter(reg prometheus.Registerer, c *prometheus.Counter) error {
	if err := reg.Register(*c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*c = are.ExistingCollector.(prometheus.Counter)
			return nil
		}
		return err
	}
	return nil
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.Histogram) error {
	if err := reg.Register(*h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*h = are.ExistingCollector.(prometheus.Histogram)
			return nil
		}
		return err
	}
	return nil
}

func registerGauge(reg prometheus.Registerer, g *prometheus.Gauge) error {
	if err := reg.Register(*g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*g = are.ExistingCollector.(prometheus.Gauge)
			return nil
		}
		return err
	}
	return nil
}

// RecordTrip increments the counters for one completed trip.
func (s *PromSink) RecordTrip(p coremetrics.TripPoint) error {
	s.trips.WithLabelValues(p.VehicleID, strconv.FormatBool(p.Forced)).Inc()
	s.revenue.Add(p.Revenue)
	s.wait.Observe(p.PickupMinutes)
	if total := p.PickupMiles + p.TripMiles; total > 0 {
		s.ratio.Observe(p.PickupMiles / total)
	}
	return nil
}

// RecordRunSummary publishes the run's overall score.
func (s *PromSink) RecordRunSummary(p coremetrics.RunPoint) error {
	s.overall.Set(p.OverallScore)
	return nil
}
