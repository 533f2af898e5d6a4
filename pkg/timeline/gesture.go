package timeline

import (
	"math"
	"sync"
)

// PixelsPerMinute is the drag sensitivity: 1.5 px of pointer travel per minute.
const PixelsPerMinute = 1.5

// Gesture maps pointer drags and slider input onto an Offset.
// A drag captures the offset at Begin; every Move recomputes from that anchor so
// accumulated rounding never drifts. End freezes the value with no inertia.
type Gesture struct {
	offset      *Offset
	startX      float64
	startOffset int
	active      bool
	mu          sync.Mutex
}

// NewGesture binds a gesture to offset.
func NewGesture(offset *Offset) *Gesture {
	return &Gesture{offset: offset}
}

// Begin records the pointer-down position.
func (g *Gesture) Begin(x float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.startX = x
	g.startOffset = g.offset.Minutes()
	g.active = true
}

// Move applies the pointer position x and returns the new offset.
// Calls outside Begin/End are ignored and return the current offset.
func (g *Gesture) Move(x float64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return g.offset.Minutes()
	}
	return g.offset.SetOffset(g.startOffset + DeltaMinutes(x-g.startX))
}

// End finishes the drag.
func (g *Gesture) End() {
	g.mu.Lock()
	g.active = false
	g.mu.Unlock()
}

// Active reports whether a drag is in progress.
func (g *Gesture) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// SetSlider sets the offset directly from a range input.
func (g *Gesture) SetSlider(value int) int {
	return g.offset.SetOffset(value)
}

// ReturnToPresent resets the offset to zero regardless of gesture state.
// An in-progress drag continues relative to zero.
func (g *Gesture) ReturnToPresent() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.offset.Reset()
	g.startOffset = 0
}

// DeltaMinutes converts a pixel delta into minutes, rounding halves toward
// positive infinity so a leftward half step stays at zero.
func DeltaMinutes(dx float64) int {
	return int(math.Floor(dx/PixelsPerMinute + 0.5))
}
