// Package ticker provides one shared periodic clock source that fans out to every
// live display. Slow subscribers miss ticks instead of blocking the source;
// each tick carries the current instant so a missed tick only delays a redraw.
package ticker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Source broadcasts the wall clock at a fixed interval.
type Source struct {
	now      func() time.Time
	logger   *slog.Logger
	subs     map[int]chan time.Time
	interval time.Duration
	nextID   int
	mu       sync.Mutex
}

// Option configures a Source.
type Option func(*Source)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) { s.logger = logger }
}

// New creates a Source ticking every interval. A non-positive interval means one second.
func New(interval time.Duration, opts ...Option) *Source {
	if interval <= 0 {
		interval = time.Second
	}
	s := &Source{
		interval: interval,
		now:      time.Now,
		logger:   slog.Default(),
		subs:     make(map[int]chan time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener. The returned channel has a buffer of one and
// always holds the most recent tick. Call cancel to unsubscribe; the channel is
// closed afterwards.
func (s *Source) Subscribe() (ticks <-chan time.Time, cancel func()) {
	ch := make(chan time.Time, 1)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of registered listeners.
func (s *Source) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Broadcast delivers now to every subscriber, replacing any unread tick.
func (s *Source) Broadcast(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- now:
			continue
		default:
		}
		// Drop the stale value and deliver the fresh one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- now:
		default:
		}
	}
}

// Run ticks until ctx is done.
func (s *Source) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.logger.Debug("tick source started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("tick source stopped")
			return
		case <-t.C:
			s.Broadcast(s.now())
		}
	}
}
