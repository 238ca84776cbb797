package mindmap

import (
	"fmt"
	"sync"
	"time"
)

// sampleTree: root with A (right, child B), D (right) and C (left)
func sampleTree() []Node {
	return []Node{
		{ID: "root", Label: "Trip"},
		{ID: "A", Label: "Packing", ParentID: StrPtr("root"), Direction: DirectionRight},
		{ID: "B", Label: "Tent", ParentID: StrPtr("A"), Direction: DirectionRight},
		{ID: "C", Label: "Budget", ParentID: StrPtr("root"), Direction: DirectionLeft},
		{ID: "D", Label: "Route", ParentID: StrPtr("root"), Direction: DirectionRight},
	}
}

func byID(nodes []Node) map[string]Node {
	m := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		i++
		return fmt.Sprintf("n%d", i)
	}
}

type fakeTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock records scheduled callbacks; Advance runs every live one.
type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) Timer {
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance() {
	timers := append([]*fakeTimer(nil), c.timers...)
	for _, t := range timers {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.f()
	}
}

func newTestEngine(opts ...Option) (*Engine, *fakeClock) {
	clock := &fakeClock{}
	opts = append([]Option{WithClock(clock), WithIDGenerator(sequentialIDs())}, opts...)
	return NewEngine(DefaultConfig(), opts...), clock
}
