package countdown

import (
	"sync"
	"time"
)

// DefaultInterval is the display refresh cadence
const DefaultInterval = time.Second

// Hub owns the repeating display timers. Every Subscribe must be paired with
// a Release; Active reports what is still running.
type Hub struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscription is one running display timer
type Subscription struct {
	hub    *Hub
	target time.Time
	fn     func(TimeLeft)
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewHub creates a hub ticking every interval (DefaultInterval when <= 0)
func NewHub(interval time.Duration) *Hub {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Hub{
		interval: interval,
		now:      time.Now,
		subs:     make(map[*Subscription]struct{}),
	}
}

// SetClock overrides the clock used to compute each tick
func (h *Hub) SetClock(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

// Subscribe renders target once immediately, then once per interval until released
func (h *Hub) Subscribe(target time.Time, fn func(TimeLeft)) *Subscription {
	s := &Subscription{
		hub:    h,
		target: target,
		fn:     fn,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	fn(Calculate(target, h.clock()))
	go s.run(h.interval)
	return s
}

func (s *Subscription) run(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.fn(Calculate(s.target, s.hub.clock()))
		case <-s.stop:
			return
		}
	}
}

// Target returns the instant the subscription counts down to
func (s *Subscription) Target() time.Time {
	return s.target
}

// Release stops the timer and waits for it to exit. Safe to call more than once.
func (s *Subscription) Release() {
	s.once.Do(func() {
		close(s.stop)
		<-s.done

		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
	})
}

// Active returns the number of unreleased subscriptions
func (h *Hub) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close releases every subscription
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.Release()
	}
}

func (h *Hub) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now()
}
