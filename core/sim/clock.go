package sim

import (
	"time"

	"github.com/mkervran/fleetsim/core/events"
	"github.com/mkervran/fleetsim/core/logger"
	"github.com/mkervran/fleetsim/internal/eventbus"
)

// Clock owns the single simulated timeline of a run. All time reads go
// through it so tests can drive it deterministically.
type Clock struct {
	now  time.Time
	exec *Executor
	log  logger.Logger
	bus  eventbus.EventBus
}

// NewClock creates a clock starting at start, draining events from exec.
func NewClock(start time.Time, exec *Executor, log logger.Logger, bus eventbus.EventBus) *Clock {
	return &Clock{now: start, exec: exec, log: log, bus: bus}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time { return c.now }

// AdvanceTo moves the clock to target without processing any events. Targets
// before the current time are ignored. Callers that need pending pickups and
// dropoffs applied at their scheduled instants must use AdvanceToWithEvents.
func (c *Clock) AdvanceTo(target time.Time) {
	if target.Before(c.now) {
		return
	}
	c.now = target
}

// AdvanceToWithEvents moves the clock to target, stopping at every pending
// pickup or dropoff on the way and processing it at its exact scheduled
// instant. Collapsing a window of events onto the window's endpoint corrupts
// pickup-time metrics and trajectories; this loop exists to prevent that.
func (c *Clock) AdvanceToWithEvents(target time.Time) {
	for {
		eventLoopSteps.Inc()
		next, ok := c.exec.NextEvent()
		if !ok || !next.Before(target) {
			c.AdvanceTo(target)
			return
		}
		if next.Before(c.now) {
			// Must never happen under correct event generation. Advancing
			// to a past instant would no-op and loop forever, so skip the
			// window to the target instead of hanging.
			invalidEventTimes.Inc()
			c.log.Errorf("pending event at %s is before current time %s, skipping to %s",
				next.Format(time.RFC3339Nano), c.now.Format(time.RFC3339Nano), target.Format(time.RFC3339Nano))
			c.log.Debugw("invalid event time", map[string]any{
				"event_time":   next,
				"current_time": c.now,
				"target_time":  target,
			})
			if c.bus != nil {
				c.bus.Publish(events.Error{
					Time:    c.now,
					Kind:    events.KindInvalidEventTime,
					Message: "pending event before current clock",
				})
			}
			c.AdvanceTo(target)
			return
		}
		if next.Equal(c.now) {
			// due now, process without advancing
			c.exec.ProcessEventsAt(next)
			continue
		}
		c.AdvanceTo(next)
		c.exec.ProcessEventsAt(next)
	}
}
