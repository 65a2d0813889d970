// Package app wires the configured components into a runnable simulation
// service.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkervran/fleetsim/config"
	"github.com/mkervran/fleetsim/core/eval"
	"github.com/mkervran/fleetsim/core/fleet"
	coremetrics "github.com/mkervran/fleetsim/core/metrics"
	"github.com/mkervran/fleetsim/core/model"
	"github.com/mkervran/fleetsim/core/sim"
	"github.com/mkervran/fleetsim/core/strategy"
	"github.com/mkervran/fleetsim/infra/logger"
	"github.com/mkervran/fleetsim/infra/metrics"
	"github.com/mkervran/fleetsim/infra/mqtt"
	"github.com/mkervran/fleetsim/infra/trace"
	"github.com/mkervran/fleetsim/internal/eventbus"
	"github.com/mkervran/fleetsim/scenario"
)

// Service orchestrates a full simulation run: workload, fleet, engine,
// metrics sinks and trace outputs.
type Service struct {
	cfg  *config.Config
	log  logger.Logger
	sink coremetrics.SimRecorder

	store     trace.Store
	publisher mqtt.Publisher
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := cfg.Logging.Apply(); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logg := logger.New("service")

	var sinks []coremetrics.SimRecorder
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.SimRecorder = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	svc := &Service{cfg: cfg, log: logg, sink: sink}
	if cfg.Trace.Enabled {
		store, err := trace.NewJSONLStore(cfg.Trace.Path)
		if err != nil {
			return nil, fmt.Errorf("trace store: %w", err)
		}
		svc.store = store
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Run executes the configured scenario and returns the evaluation summary.
func (s *Service) Run(ctx context.Context) (*eval.Summary, error) {
	requests, err := s.loadRequests()
	if err != nil {
		return nil, err
	}
	s.log.Infof("replaying %d requests against a fleet of %d vehicles",
		len(requests), s.cfg.Fleet.Size)

	reg, err := fleet.New(s.cfg.Fleet, logger.New("fleet"))
	if err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}
	ev, err := eval.New(s.cfg.Costs, logger.New("eval"))
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	bus := eventbus.New()
	defer bus.Close()

	exec, err := sim.NewExecutor(reg, nil, s.cfg.Fare, logger.New("executor"), bus)
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}
	engine, err := sim.NewEngine(reg, exec, ev, strategy.NewGreedy(), s.cfg.Engine, logger.New("engine"), bus)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	engine.SetRecorder(s.sink)

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	var wg sync.WaitGroup
	if s.store != nil || s.publisher != nil {
		// the trace must be complete, so take guaranteed delivery
		sub := bus.SubscribeBlocking()
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.consumeTrace(ctx, sub)
		}()
	}

	summary, err := engine.Run(requests)
	bus.Close()
	wg.Wait()
	if d := bus.Dropped(); d > 0 {
		s.log.Warnf("%d trace events dropped by best-effort subscribers", d)
	}
	if err != nil {
		return nil, err
	}

	if recErr := s.sink.RecordRunSummary(coremetrics.RunPoint{
		Requests:        summary.RequestsProcessed,
		Succeeded:       summary.TripsCompleted,
		ParseFailures:   summary.ParseFailures,
		RoutingFailures: summary.RoutingFailures,
		TotalRevenue:    summary.TotalRevenue,
		NetRevenue:      summary.NetRevenue,
		ParsingScore:    summary.ParsingScore,
		RoutingScore:    summary.RoutingScore,
		OverallScore:    summary.OverallScore,
		Time:            time.Now().UTC(),
	}); recErr != nil {
		s.log.Warnf("record run summary: %v", recErr)
	}
	return summary, nil
}

func (s *Service) loadRequests() ([]model.NLRequest, error) {
	if s.cfg.Scenario.Path != "" {
		sc, err := scenario.Load(s.cfg.Scenario.Path)
		if err != nil {
			return nil, fmt.Errorf("scenario: %w", err)
		}
		s.log.Infof("loaded scenario %q", sc.Name)
		return sc.ToRequests(), nil
	}
	reqs, err := scenario.Generate(s.cfg.Scenario.Generator)
	if err != nil {
		return nil, fmt.Errorf("scenario generator: %w", err)
	}
	return reqs, nil
}

// consumeTrace drains bus events into the configured trace outputs until the
// bus closes.
func (s *Service) consumeTrace(ctx context.Context, sub <-chan eventbus.Event) {
	for e := range sub {
		if s.store != nil {
			if rec, ok := trace.FromEvent(e); ok {
				if err := s.store.Append(ctx, rec); err != nil {
					s.log.Warnf("trace append: %v", err)
				}
			}
		}
		if s.publisher != nil {
			if err := s.publisher.PublishEvent(e); err != nil {
				s.log.Warnf("trace publish: %v", err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var firstErr error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			firstErr = err
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
