package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/mkervran/fleetsim/core/metrics"
	"github.com/mkervran/fleetsim/infra/logger"
)

// InfluxSink writes trip and run measurements to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.SimRecorder {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTrip writes one completed trip as a line protocol point.
func (s *InfluxSink) RecordTrip(p coremetrics.TripPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pt := write.NewPointWithMeasurement("trip_event").
		AddTag("vehicle_id", p.VehicleID).
		AddTag("request_id", p.RequestID).
		AddTag("forced", strconv.FormatBool(p.Forced)).
		AddField("pickup_miles", round3(p.PickupMiles)).
		AddField("trip_miles", round3(p.TripMiles)).
		AddField("pickup_minutes", round3(p.PickupMinutes)).
		AddField("revenue", round3(p.Revenue)).
		SetTime(p.CompletedAt)
	return s.writeAPI.WritePoint(ctx, pt)
}

// RecordRunSummary writes the run summary point.
func (s *InfluxSink) RecordRunSummary(p coremetrics.RunPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pt := write.NewPointWithMeasurement("run_summary").
		AddField("requests", p.Requests).
		AddField("succeeded", p.Succeeded).
		AddField("parse_failures", p.ParseFailures).
		AddField("routing_failures", p.RoutingFailures).
		AddField("total_revenue", round3(p.TotalRevenue)).
		AddField("net_revenue", round3(p.NetRevenue)).
		AddField("parsing_score", round3(p.ParsingScore)).
		AddField("routing_score", round3(p.RoutingScore)).
		AddField("overall_score", round3(p.OverallScore)).
		SetTime(p.Time)
	return s.writeAPI.WritePoint(ctx, pt)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
