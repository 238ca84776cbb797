package mindmap

import (
	"math"

	"github.com/google/uuid"
)

// Direction is the side of the root a subtree grows towards
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Valid reports whether d is one of the two sides
func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight
}

// Sign is -1 for the left side and +1 for the right side
func (d Direction) Sign() float64 {
	if d == DirectionLeft {
		return -1
	}
	return 1
}

// Position is a 2-D canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Equal compares with a small tolerance; layout output itself is exact.
func (p Position) Equal(o Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.X-o.X) < epsilon && math.Abs(p.Y-o.Y) < epsilon
}

// Node is one idea on the canvas. It holds serializable state only; behavior
// is looked up by ID through the engine's capability table.
type Node struct {
	ID        string    `json:"id"`
	Position  *Position `json:"position,omitempty"` // nil until the first layout
	Label     string    `json:"label"`
	ParentID  *string   `json:"parentId,omitempty"`
	Direction Direction `json:"direction,omitempty"` // empty only for the root
	IsNew     bool      `json:"isNew,omitempty"`
	Selected  bool      `json:"selected,omitempty"`
}

// IsRoot reports whether the node has no parent
func (n Node) IsRoot() bool { return n.ParentID == nil }

// Parent returns the parent ID, or "" for the root
func (n Node) Parent() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

// Clone returns a deep copy so callers never share pointer fields.
func (n Node) Clone() Node {
	c := n
	if n.Position != nil {
		p := *n.Position
		c.Position = &p
	}
	if n.ParentID != nil {
		id := *n.ParentID
		c.ParentID = &id
	}
	return c
}

// CloneNodes deep-copies a node collection
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Anchor is a connection point on a node's box
type Anchor string

const (
	AnchorLeft  Anchor = "left"
	AnchorRight Anchor = "right"
)

// Edge connects a parent to a child. Edges are derived from parent links and
// carry no identity beyond the (source, target) pair.
type Edge struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Target       string    `json:"target"`
	SourceAnchor Anchor    `json:"sourceAnchor"`
	TargetAnchor Anchor    `json:"targetAnchor"`
	Direction    Direction `json:"direction"`
}

// NewID returns a fresh node identifier
func NewID() string {
	return uuid.NewString()
}

// StrPtr returns a pointer to s
func StrPtr(s string) *string { return &s }
