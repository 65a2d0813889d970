package metrics

import "time"

// TripPoint is a per-trip measurement to be recorded by a sink.
type TripPoint struct {
	RequestID     string
	VehicleID     string
	PickupMiles   float64
	TripMiles     float64
	PickupMinutes float64
	Revenue       float64
	Forced        bool
	CompletedAt   time.Time
}

// RunPoint summarizes a whole simulation run.
type RunPoint struct {
	Requests        int
	Succeeded       int
	ParseFailures   int
	RoutingFailures int
	TotalRevenue    float64
	NetRevenue      float64
	ParsingScore    float64
	RoutingScore    float64
	OverallScore    float64
	Time            time.Time
}

// SimRecorder records simulation results for observability purposes.
type SimRecorder interface {
	RecordTrip(p TripPoint) error
	RecordRunSummary(p RunPoint) error
}

// NopSink discards all measurements.
type NopSink struct{}

func (NopSink) RecordTrip(TripPoint) error      { return nil }
func (NopSink) RecordRunSummary(RunPoint) error { return nil }
