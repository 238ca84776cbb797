package mindmap

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the click tracker needs
type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks. Tests swap in a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ClickEvent is a raw pointer click. TargetID is empty for the bare canvas.
type ClickEvent struct {
	TargetID string
	Point    Position
}

// ClickTracker tells single clicks from double clicks. A first click arms a
// timer for the single-click action; a second click on the same target
// inside the window cancels it and fires the double-click action instead.
type ClickTracker struct {
	mu       sync.Mutex
	window   time.Duration
	clock    Clock
	onSingle func(ClickEvent)
	onDouble func(ClickEvent)

	timer   Timer
	pending *ClickEvent
	seq     uint64
}

// NewClickTracker creates a tracker. A nil clock uses wall time.
func NewClickTracker(window time.Duration, clock Clock, onSingle, onDouble func(ClickEvent)) *ClickTracker {
	if clock == nil {
		clock = realClock{}
	}
	return &ClickTracker{
		window:   window,
		clock:    clock,
		onSingle: onSingle,
		onDouble: onDouble,
	}
}

// Click records one click
func (c *ClickTracker) Click(ev ClickEvent) {
	c.mu.Lock()
	if c.pending != nil && c.pending.TargetID == ev.TargetID {
		c.timer.Stop()
		c.pending = nil
		c.seq++
		c.mu.Unlock()
		c.onDouble(ev)
		return
	}

	// A click on a different target settles the earlier one as single.
	var flushed *ClickEvent
	if c.pending != nil {
		c.timer.Stop()
		flushed = c.pending
	}

	c.seq++
	seq := c.seq
	c.pending = &ev
	c.timer = c.clock.AfterFunc(c.window, func() { c.fire(seq) })
	c.mu.Unlock()

	if flushed != nil {
		c.onSingle(*flushed)
	}
}

func (c *ClickTracker) fire(seq uint64) {
	c.mu.Lock()
	if c.pending == nil || c.seq != seq {
		c.mu.Unlock()
		return
	}
	ev := *c.pending
	c.pending = nil
	c.mu.Unlock()
	c.onSingle(ev)
}

// Pending reports whether a single click is waiting for its window to close
func (c *ClickTracker) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}
