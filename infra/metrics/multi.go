package metrics

import coremetrics "github.com/mkervran/fleetsim/core/metrics"

// MultiSink fans measurements out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.SimRecorder
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.SimRecorder) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTrip forwards the trip point to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordTrip(p coremetrics.TripPoint) error {
	for _, s := range m.Sinks {
		if err := s.RecordTrip(p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunSummary forwards the run point to all sinks.
func (m *MultiSink) RecordRunSummary(p coremetrics.RunPoint) error {
	for _, s := range m.Sinks {
		if err := s.RecordRunSummary(p); err != nil {
			return err
		}
	}
	return nil
}
