package trace

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkervran/fleetsim/core/events"
	"github.com/mkervran/fleetsim/core/model"
)

func TestJSONLStoreAppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	store, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	recs := []Record{
		{Timestamp: base, Kind: "assignment", RequestID: "r1", VehicleID: "veh0001"},
		{Timestamp: base.Add(5 * time.Minute), Kind: "pickup", RequestID: "r1", VehicleID: "veh0001"},
		{Timestamp: base.Add(20 * time.Minute), Kind: "dropoff", RequestID: "r1", VehicleID: "veh0002"},
	}
	for _, r := range recs {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records got %d", len(all))
	}

	byVehicle, _ := store.Query(ctx, Query{VehicleID: "veh0001"})
	if len(byVehicle) != 2 {
		t.Fatalf("vehicle filter: expected 2 got %d", len(byVehicle))
	}

	byKind, _ := store.Query(ctx, Query{Kind: "pickup"})
	if len(byKind) != 1 || byKind[0].RequestID != "r1" {
		t.Fatalf("kind filter: %+v", byKind)
	}

	windowed, _ := store.Query(ctx, Query{Start: base.Add(time.Minute), End: base.Add(10 * time.Minute)})
	if len(windowed) != 1 || windowed[0].Kind != "pickup" {
		t.Fatalf("time window filter: %+v", windowed)
	}
}

func TestFromEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	loc := model.Location{Lat: 40.7, Lon: -74.0}

	rec, ok := FromEvent(events.Dropoff{Time: at, RequestID: "r1", VehicleID: "veh0001", Location: loc, Revenue: 15, Forced: true})
	if !ok || rec.Kind != "forced_dropoff" || rec.Revenue != 15 {
		t.Fatalf("dropoff record: %+v %v", rec, ok)
	}

	rec, ok = FromEvent(events.Error{Time: at, RequestID: "r2", Kind: events.KindParseError, Message: "bad"})
	if !ok || rec.Kind != "parse_error" || rec.Message != "bad" {
		t.Fatalf("error record: %+v %v", rec, ok)
	}

	if _, ok := FromEvent(42); ok {
		t.Fatalf("unknown event type must not produce a record")
	}
}
