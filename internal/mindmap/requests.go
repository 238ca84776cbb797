package mindmap

import "sync/atomic"

// RequestTracker tags asynchronous snapshot loads so that only the response
// to the latest request reaches the engine.
type RequestTracker struct {
	latest atomic.Uint64
}

// Begin starts a new load and returns its request id
func (t *RequestTracker) Begin() uint64 {
	return t.latest.Add(1)
}

// Accept reports whether id is still the latest outstanding request
func (t *RequestTracker) Accept(id uint64) bool {
	return id != 0 && id == t.latest.Load()
}
