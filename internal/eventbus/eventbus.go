package eventbus

import (
	"sync"
	"sync/atomic"
)

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus used to fan out
// simulation trace events to recorders.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	SubscribeBlocking() <-chan Event
	Unsubscribe(<-chan Event)
	Dropped() uint64
	Close()
}

// subscriber channel buffer. Best-effort subscribers beyond the buffer lose
// events rather than stalling the engine loop; drops are counted.
const subBuffer = 64

type subscriber struct {
	ch       chan Event
	blocking bool
}

// Bus is the default EventBus implementation using fan-out channels.
type Bus struct {
	mu      sync.RWMutex
	subs    []subscriber
	closed  bool
	dropped atomic.Uint64
}

// New creates a new Bus.
func New() *Bus { return &Bus{} }

// Publish sends the event to all subscribers. Blocking subscribers always
// receive it; best-effort subscribers lose it when their buffer is full.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if s.blocking {
			s.ch <- e
			continue
		}
		select {
		case s.ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers a best-effort subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan Event {
	return b.subscribe(false)
}

// SubscribeBlocking registers a subscriber with guaranteed delivery: Publish
// waits for it. Use for recorders that must see every event, and keep them
// draining until the channel closes.
func (b *Bus) SubscribeBlocking() <-chan Event {
	return b.subscribe(true)
}

func (b *Bus) subscribe(blocking bool) <-chan Event {
	ch := make(chan Event, subBuffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, subscriber{ch: ch, blocking: blocking})
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(s.ch)
			}
			return
		}
	}
}

// Dropped reports how many events were lost to full best-effort buffers.
func (b *Bus) Dropped() uint64 { return b.dropped.Load() }

// Close closes all subscriber channels and clears the list.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
