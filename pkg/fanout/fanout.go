// Package fanout republishes reconciler notifications to any number of independent
// subscribers. Each subscriber has its own bounded queue and goroutine; a full queue
// drops according to the subscriber's policy and never blocks the publisher.
package fanout

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/metrics"
	"github.com/chris/wallet-tx-sync/pkg/reconciler"
)

// DefaultQueueSize is used when neither the hub nor the subscription sets one.
const DefaultQueueSize = 256

// Policy decides what a full subscriber queue gives up.
type Policy int

const (
	// DropOldest discards the oldest queued notification. Suits UI observers that only
	// care about recent state and can re-read the snapshot.
	DropOldest Policy = iota
	// DropNewest discards the incoming notification. Suits relays that must keep the
	// order of what they already accepted.
	DropNewest
)

func (p Policy) String() string {
	switch p {
	case DropOldest:
		return "drop_oldest"
	case DropNewest:
		return "drop_newest"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts the names produced by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "drop_oldest", "":
		return DropOldest, nil
	case "drop_newest":
		return DropNewest, nil
	default:
		return 0, fmt.Errorf("unknown drop policy %q", s)
	}
}

// Listener receives notifications on its subscription's goroutine, one at a time.
type Listener interface {
	OnNotification(n events.Notification)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(n events.Notification)

func (f ListenerFunc) OnNotification(n events.Notification) { f(n) }

type Options struct {
	QueueSize int
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Hub is the subscriber registry.
type Hub struct {
	subs      *xsync.MapOf[string, *Subscription]
	queueSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
	closeOnce sync.Once
	closed    chan struct{}
}

// Make sure we conform to the interface
var _ reconciler.Publisher = (*Hub)(nil)

func NewHub(opts Options) *Hub {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:      xsync.NewMapOf[string, *Subscription](),
		queueSize: size,
		logger:    logger.With("component", "fanout"),
		metrics:   opts.Metrics,
		closed:    make(chan struct{}),
	}
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*Subscription)

func WithPolicy(p Policy) SubscribeOption {
	return func(s *Subscription) { s.policy = p }
}

func WithQueueSize(n int) SubscribeOption {
	return func(s *Subscription) {
		if n > 0 {
			s.size = n
		}
	}
}

// WithName labels the subscription in logs.
func WithName(name string) SubscribeOption {
	return func(s *Subscription) { s.name = name }
}

// Subscription is one registered listener.
type Subscription struct {
	id       string
	name     string
	policy   Policy
	size     int
	queue    chan events.Notification
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
	dropped  *xsync.Counter
	listener Listener
	hub      *Hub
}

func (s *Subscription) ID() string     { return s.id }
func (s *Subscription) Policy() Policy { return s.policy }

// Dropped reports how many notifications this subscription has lost to overflow.
func (s *Subscription) Dropped() int64 { return s.dropped.Value() }

// Close unregisters the subscription. Queued notifications are discarded.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s.id)
}

// Done is closed once the subscription's goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.stopped }

// Subscribe registers l. After the hub is closed the returned subscription is already
// stopped.
func (h *Hub) Subscribe(l Listener, opts ...SubscribeOption) *Subscription {
	s := &Subscription{
		id:       uuid.NewString(),
		policy:   DropOldest,
		size:     h.queueSize,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		dropped:  xsync.NewCounter(),
		listener: l,
		hub:      h,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan events.Notification, s.size)

	select {
	case <-h.closed:
		s.stop()
		close(s.stopped)
		return s
	default:
	}

	h.metrics.SubscriberAdded()
	h.subs.Store(s.id, s)
	go s.run()

	// Close may have swept the registry between the check above and Store.
	select {
	case <-h.closed:
		h.Unsubscribe(s.id)
		return s
	default:
	}
	h.logger.Info("subscriber added", "subscriberId", s.id, "name", s.name, "policy", s.policy.String(), "queueSize", s.size)
	return s
}

// Unsubscribe removes a subscription by id. It reports whether the id was registered.
func (h *Hub) Unsubscribe(id string) bool {
	s, ok := h.subs.LoadAndDelete(id)
	if !ok {
		return false
	}
	s.stop()
	h.metrics.SubscriberRemoved()
	h.logger.Info("subscriber removed", "subscriberId", id, "name", s.name, "dropped", s.Dropped())
	return true
}

// Len reports the number of registered subscriptions.
func (h *Hub) Len() int { return h.subs.Size() }

// Publish offers n to every subscriber without waiting on any of them.
func (h *Hub) Publish(n events.Notification) {
	h.subs.Range(func(_ string, s *Subscription) bool {
		if !s.offer(n) {
			h.metrics.Dropped(s.policy.String())
			h.logger.Warn("subscriber queue full", "subscriberId", s.id, "name", s.name, "policy", s.policy.String(), "kind", n.Kind)
		}
		return true
	})
}

// Close unregisters every subscription.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.closed) })
	h.subs.Range(func(id string, _ *Subscription) bool {
		h.Unsubscribe(id)
		return true
	})
}

func (s *Subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// offer enqueues n, applying the drop policy when the queue is full. It returns false
// when a notification was dropped.
func (s *Subscription) offer(n events.Notification) bool {
	select {
	case <-s.done:
		return true
	default:
	}
	select {
	case s.queue <- n:
		return true
	default:
	}
	s.dropped.Inc()
	if s.policy == DropNewest {
		return false
	}
	select {
	case <-s.queue:
	default:
	}
	select {
	case s.queue <- n:
	default:
		// Another publisher refilled the slot; n is lost instead.
	}
	return false
}

func (s *Subscription) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case n := <-s.queue:
			s.deliver(n)
		}
	}
}

func (s *Subscription) deliver(n events.Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.hub.logger.Error("subscriber panicked", "subscriberId", s.id, "name", s.name, "kind", n.Kind, "panic", r)
		}
	}()
	s.listener.OnNotification(n)
	s.hub.metrics.Delivered(string(n.Kind))
}
