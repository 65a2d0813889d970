// Package scenario loads and generates request workloads for simulation runs.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mkervran/fleetsim/core/model"
)

type LocationDef struct {
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
	Zone string  `yaml:"zone,omitempty" json:"zone,omitempty"`
}

func (l LocationDef) ToModel() model.Location {
	return model.Location{Lat: l.Lat, Lon: l.Lon, Zone: l.Zone}
}

type GroundTruthDef struct {
	Origin           LocationDef `yaml:"origin" json:"origin"`
	Destination      LocationDef `yaml:"destination" json:"destination"`
	PickupTime       time.Time   `yaml:"pickup_time" json:"pickup_time"`
	ArrivalDeadline  *time.Time  `yaml:"arrival_deadline,omitempty" json:"arrival_deadline,omitempty"`
	ArrivalWindowMin float64     `yaml:"arrival_window_min,omitempty" json:"arrival_window_min,omitempty"`
	Wheelchair       bool        `yaml:"wheelchair,omitempty" json:"wheelchair,omitempty"`
	Passengers       int         `yaml:"passengers,omitempty" json:"passengers,omitempty"`
	Notes            string      `yaml:"notes,omitempty" json:"notes,omitempty"`
}

func (g GroundTruthDef) ToModel() *model.StructuredRequest {
	return &model.StructuredRequest{
		Origin:           g.Origin.ToModel(),
		Destination:      g.Destination.ToModel(),
		PickupTime:       g.PickupTime,
		ArrivalDeadline:  g.ArrivalDeadline,
		ArrivalWindowMin: g.ArrivalWindowMin,
		Wheelchair:       g.Wheelchair,
		Passengers:       g.Passengers,
		Notes:            g.Notes,
	}
}

type RequestDef struct {
	ID          string          `yaml:"id,omitempty" json:"id,omitempty"`
	ArrivalTime time.Time       `yaml:"arrival_time" json:"arrival_time"`
	Text        string          `yaml:"text" json:"text"`
	GroundTruth *GroundTruthDef `yaml:"ground_truth,omitempty" json:"ground_truth,omitempty"`
}

func (r RequestDef) ToModel() model.NLRequest {
	req := model.NLRequest{
		ID:          r.ID,
		ArrivalTime: r.ArrivalTime,
		Text:        r.Text,
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if r.GroundTruth != nil {
		req.GroundTruth = r.GroundTruth.ToModel()
	}
	return req
}

// Scenario is a named request workload.
type Scenario struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Requests    []RequestDef `yaml:"requests" json:"requests"`
}

// FromRequests builds a scenario document from model requests, for writing
// generated workloads back to disk.
func FromRequests(name string, reqs []model.NLRequest) *Scenario {
	sc := &Scenario{Name: name, Requests: make([]RequestDef, 0, len(reqs))}
	for _, r := range reqs {
		def := RequestDef{ID: r.ID, ArrivalTime: r.ArrivalTime, Text: r.Text}
		if gt := r.GroundTruth; gt != nil {
			def.GroundTruth = &GroundTruthDef{
				Origin:           LocationDef{Lat: gt.Origin.Lat, Lon: gt.Origin.Lon, Zone: gt.Origin.Zone},
				Destination:      LocationDef{Lat: gt.Destination.Lat, Lon: gt.Destination.Lon, Zone: gt.Destination.Zone},
				PickupTime:       gt.PickupTime,
				ArrivalDeadline:  gt.ArrivalDeadline,
				ArrivalWindowMin: gt.ArrivalWindowMin,
				Wheelchair:       gt.Wheelchair,
				Passengers:       gt.Passengers,
				Notes:            gt.Notes,
			}
		}
		sc.Requests = append(sc.Requests, def)
	}
	return sc
}

// Load reads a scenario file, YAML or JSON by extension.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("parse scenario %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("parse scenario %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", ext)
	}
	if len(sc.Requests) == 0 {
		return nil, fmt.Errorf("scenario %s has no requests", path)
	}
	return &sc, nil
}

// ToRequests converts the scenario to model requests, assigns ids where missing
// and sorts by arrival time so the engine can replay them in order.
func (s *Scenario) ToRequests() []model.NLRequest {
	reqs := make([]model.NLRequest, 0, len(s.Requests))
	for _, def := range s.Requests {
		reqs = append(reqs, def.ToModel())
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].ArrivalTime.Before(reqs[j].ArrivalTime)
	})
	return reqs
}
