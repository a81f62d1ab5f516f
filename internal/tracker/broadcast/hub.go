// Package broadcast owns the set of live location subscribers and fans
// accepted samples out to them without ever blocking the ingestion path.
package broadcast

import (
	"errors"
	"sync"

	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/utils"
	"bustracker/internal/tracker/domain"
)

// ErrShutdown is returned by Subscribe after the hub has been shut down.
var ErrShutdown = errors.New("hub is shut down")

// State of one subscriber. Closed is terminal and unobservable afterward.
type State int

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

// Subscriber is one live viewer connection. Owned exclusively by the Hub.
//
// The envelope channel is never closed; removal is signalled through
// Done. That lets Publish deliver outside the hub lock without racing a
// concurrent close.
type Subscriber struct {
	id    string
	ch    chan domain.BroadcastEnvelope
	done  chan struct{}
	state State // guarded by Hub.mu
}

// ID is the opaque handle used to unsubscribe.
func (s *Subscriber) ID() string { return s.id }

// Updates yields envelopes in publish order (per-subscriber FIFO).
func (s *Subscriber) Updates() <-chan domain.BroadcastEnvelope { return s.ch }

// Done is closed when the subscriber has been removed from the hub.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Hub maintains the active subscriber set. One instance per process,
// constructed in bootstrap and passed explicitly to the ingestion
// pipeline and the stream boundary.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	maxSubs     int
	bufferSize  int
	closed      bool
	log         *logger.Logger
}

func NewHub(maxSubscribers, subscriberBuffer int, log *logger.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		maxSubs:     maxSubscribers,
		bufferSize:  subscriberBuffer,
		log:         log,
	}
}

// Subscribe registers a new Active subscriber. Fails only with
// ErrCapacityExceeded at the configured limit, or ErrShutdown.
func (h *Hub) Subscribe() (*Subscriber, error) {
	sub := &Subscriber{
		id:    utils.NewUUID(),
		ch:    make(chan domain.BroadcastEnvelope, h.bufferSize),
		done:  make(chan struct{}),
		state: StateConnecting,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrShutdown
	}
	if len(h.subscribers) >= h.maxSubs {
		h.mu.Unlock()
		return nil, domain.ErrCapacityExceeded
	}
	sub.state = StateActive
	h.subscribers[sub.id] = sub
	count := len(h.subscribers)
	h.mu.Unlock()

	h.log.Info(logger.Entry{
		Action:     "subscriber_joined",
		Message:    sub.id,
		Additional: map[string]any{"active_subscribers": count},
	})
	return sub, nil
}

// Publish fans one accepted sample out to every Active subscriber.
// Non-blocking from the caller's point of view: the active set is
// snapshotted under a short lock, deliveries are buffered non-blocking
// sends outside the lock, and removals of full or dead subscribers are
// applied in a separate step. A dropped subscriber is churn, not an
// error; Publish never reports per-subscriber failures.
func (h *Hub) Publish(sample domain.LocationSample) {
	env := domain.NewEnvelope(sample)

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	snapshot := make([]*Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		if sub.state == StateActive {
			snapshot = append(snapshot, sub)
		}
	}
	h.mu.RUnlock()

	var stale []*Subscriber
	for _, sub := range snapshot {
		select {
		case sub.ch <- env:
		default:
			// buffer full: the subscriber is not draining; drop it
			// rather than propagate backpressure into ingestion
			stale = append(stale, sub)
		}
	}

	if len(stale) > 0 {
		h.remove(stale, "send buffer full")
	}
}

// Unsubscribe removes a subscriber by handle. Idempotent; a normal,
// frequent event.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		h.discardLocked(sub)
	}
	h.mu.Unlock()

	if ok {
		h.log.Info(logger.Entry{Action: "subscriber_left", Message: id})
	}
}

// Shutdown deregisters and releases every subscriber. Subsequent
// Subscribe calls fail with ErrShutdown; Publish becomes a no-op.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	count := len(h.subscribers)
	for _, sub := range h.subscribers {
		h.discardLocked(sub)
	}
	h.mu.Unlock()

	h.log.Info(logger.Entry{
		Action:     "hub_shutdown",
		Message:    "subscription hub stopped",
		Additional: map[string]any{"subscribers_closed": count},
	})
}

// Active reports the current number of Active subscribers.
func (h *Hub) Active() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) remove(stale []*Subscriber, reason string) {
	removed := make([]string, 0, len(stale))

	h.mu.Lock()
	for _, sub := range stale {
		if cur, ok := h.subscribers[sub.id]; ok && cur == sub {
			h.discardLocked(sub)
			removed = append(removed, sub.id)
		}
	}
	h.mu.Unlock()

	for _, id := range removed {
		h.log.Info(logger.Entry{
			Action:     "subscriber_dropped",
			Message:    id,
			Additional: map[string]any{"reason": reason},
		})
	}
}

// discardLocked transitions Active -> Closing -> Closed and releases the
// handle. Callers hold h.mu.
func (h *Hub) discardLocked(sub *Subscriber) {
	sub.state = StateClosing
	delete(h.subscribers, sub.id)
	close(sub.done)
	sub.state = StateClosed
}
