package mindmap

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRootNotFound = errors.New("mind-map has no root node")
	ErrNodeNotFound = errors.New("node not found")
	ErrRootExists   = errors.New("mind-map already has a root node")
)

// ViolationKind classifies a broken tree invariant
type ViolationKind string

const (
	ViolationMissingRoot       ViolationKind = "missing_root"
	ViolationMultipleRoots     ViolationKind = "multiple_roots"
	ViolationMissingParent     ViolationKind = "missing_parent"
	ViolationCycle             ViolationKind = "cycle"
	ViolationDirection         ViolationKind = "direction_mismatch"
	ViolationMissingDirection  ViolationKind = "missing_direction"
	ViolationDuplicateID       ViolationKind = "duplicate_id"
	ViolationDisconnectedGroup ViolationKind = "disconnected_fragment"
)

// Violation is a single broken invariant
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	NodeID string        `json:"node_id,omitempty"`
	Detail string        `json:"detail,omitempty"`
}

func (v Violation) String() string {
	if v.NodeID == "" {
		return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
	}
	if v.Detail == "" {
		return fmt.Sprintf("%s (%s)", v.Kind, v.NodeID)
	}
	return fmt.Sprintf("%s (%s): %s", v.Kind, v.NodeID, v.Detail)
}

// TopologyError reports every invariant a node set violates.
type TopologyError struct {
	Violations []Violation
}

func (e *TopologyError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "topology violation: " + strings.Join(parts, "; ")
}

// Unwrap maps a missing root onto ErrRootNotFound so callers can use errors.Is.
func (e *TopologyError) Unwrap() error {
	if e.Has(ViolationMissingRoot) {
		return ErrRootNotFound
	}
	return nil
}

// Has reports whether any violation of the given kind was recorded
func (e *TopologyError) Has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}
