package mindmap

import (
	"math"

	"go.uber.org/zap"
)

// Insertion describes where a node created at a pointer position belongs
type Insertion struct {
	BecomesRoot  bool      `json:"becomes_root"`
	ParentID     string    `json:"parent_id,omitempty"`
	Direction    Direction `json:"direction,omitempty"`
	SiblingIndex int       `json:"sibling_index"`
}

// InsertionResolver maps a pointer position onto a parent, side and rank
type InsertionResolver struct {
	cfg    Config
	logger *zap.Logger
}

// NewInsertionResolver creates a resolver. A nil logger disables logging.
func NewInsertionResolver(cfg Config, logger *zap.Logger) *InsertionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsertionResolver{cfg: cfg.withDefaults(), logger: logger}
}

// ResolveInsertion resolves with the default configuration
func ResolveInsertion(nodes []Node, pointer Position) Insertion {
	return NewInsertionResolver(DefaultConfig(), nil).ResolveInsertion(nodes, pointer)
}

// ResolveInsertion never fails: an empty set yields a new root, and a
// non-empty set always yields at least the root as parent.
//
// The side follows the pointer relative to the root. Candidates are the
// root plus nodes on that side whose far edge lies strictly between the root
// and the pointer. The winner minimizes a weighted gap in which horizontal
// distance dominates.
func (r *InsertionResolver) ResolveInsertion(nodes []Node, pointer Position) Insertion {
	if len(nodes) == 0 {
		return Insertion{BecomesRoot: true}
	}

	root := r.rootFor(nodes)
	rootPos := positionOf(root, r.cfg.Origin)

	side := DirectionRight
	if pointer.X < rootPos.X {
		side = DirectionLeft
	}

	ix := newTreeIndex(nodes)
	walk := ix.walkFrom(root.ID)

	best := root
	bestScore := math.Inf(1)
	found := false
	for _, n := range nodes {
		if n.ID != root.ID {
			if !walk.contains(n.ID) || walk.side[n.ID] != side {
				continue
			}
		}
		pos := positionOf(n, r.cfg.Origin)
		farEdge := pos.X + side.Sign()*r.cfg.NodeWidth/2
		if !strictlyBetween(farEdge, rootPos.X, pointer.X) {
			continue
		}
		score := r.cfg.HorizontalWeight*math.Abs(pointer.X-farEdge) +
			r.cfg.VerticalWeight*math.Abs(pointer.Y-pos.Y)
		if score < bestScore {
			best, bestScore, found = n, score, true
		}
	}
	if !found {
		r.logger.Debug("no candidate parent on side, falling back to root",
			zap.String("side", string(side)),
			zap.Float64("x", pointer.X),
			zap.Float64("y", pointer.Y),
		)
	}

	return Insertion{
		ParentID:     best.ID,
		Direction:    side,
		SiblingIndex: FindInsertIndex(nodes, best.ID, side, pointer.Y),
	}
}

// FindInsertIndex returns the rank among parentID's children on side at which
// a node at pointerY belongs: before the first sibling lower on the canvas.
func FindInsertIndex(nodes []Node, parentID string, side Direction, pointerY float64) int {
	siblings := ChildrenOf(nodes, parentID, side)
	for i, s := range siblings {
		if s.Position != nil && s.Position.Y > pointerY {
			return i
		}
	}
	return len(siblings)
}

// rootFor returns the parentless node, or the first node when the set has
// none. Insertion must not fail; layout reports the broken topology.
func (r *InsertionResolver) rootFor(nodes []Node) Node {
	for _, n := range nodes {
		if n.ParentID == nil {
			return n
		}
	}
	r.logger.Warn("insertion on a set without a root", zap.String("fallback", nodes[0].ID))
	return nodes[0]
}

func positionOf(n Node, fallback Position) Position {
	if n.Position == nil {
		return fallback
	}
	return *n.Position
}

func strictlyBetween(v, a, b float64) bool {
	if a > b {
		a, b = b, a
	}
	return v > a && v < b
}
