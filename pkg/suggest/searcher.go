package suggest

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last keystroke.
const DefaultDebounce = 200 * time.Millisecond

// DefaultMinQueryLength is the shortest query that triggers a lookup.
const DefaultMinQueryLength = 2

// Lookuper is satisfied by *Provider.
type Lookuper interface {
	Lookup(ctx context.Context, partial string) []Suggestion
}

// Result is one completed search.
type Result struct {
	Query       string
	Suggestions []Suggestion
	Seq         uint64
}

// Searcher debounces keystrokes into lookups. Every Query supersedes the
// previous one: a pending timer is stopped, an in-flight lookup is cancelled,
// and any result carrying an older sequence number is dropped.
type Searcher struct {
	lookup   Lookuper
	timer    *time.Timer
	cancel   context.CancelFunc
	results  chan Result
	debounce time.Duration
	minLen   int
	seq      uint64
	closed   bool
	mu       sync.Mutex
}

// NewSearcher returns a Searcher. Non-positive debounce or minLen use the defaults.
func NewSearcher(lookup Lookuper, debounce time.Duration, minLen int) *Searcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if minLen <= 0 {
		minLen = DefaultMinQueryLength
	}
	return &Searcher{
		lookup:   lookup,
		debounce: debounce,
		minLen:   minLen,
		results:  make(chan Result, 1),
	}
}

// Results delivers the latest accepted result. The channel holds at most one
// value; an unread result is replaced by a newer one.
func (s *Searcher) Results() <-chan Result {
	return s.results
}

// Query schedules a lookup for q after the debounce period and returns its
// sequence number. Queries shorter than the minimum produce an empty result.
func (s *Searcher) Query(q string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.seq
	}
	s.seq++
	seq := s.seq
	s.stopLocked()

	s.timer = time.AfterFunc(s.debounce, func() { s.fire(seq, q) })
	return seq
}

// stopLocked cancels the pending timer and in-flight lookup. Caller holds mu.
func (s *Searcher) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) fire(seq uint64, q string) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	var found []Suggestion
	if len(strings.TrimSpace(q)) >= s.minLen {
		found = s.lookup.Lookup(ctx, q)
	}
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		return
	}
	s.cancel = nil
	r := Result{Seq: seq, Query: q, Suggestions: found}
	select {
	case s.results <- r:
		return
	default:
	}
	select {
	case <-s.results:
	default:
	}
	s.results <- r
}

// Latest returns the most recently issued sequence number.
func (s *Searcher) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Close stops pending work and closes Results.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopLocked()
	close(s.results)
}
