package mindmap

import (
	"fmt"

	"go.uber.org/zap"
)

// LevelGroup is the set of nodes sharing a side and a depth, top to bottom
type LevelGroup struct {
	Side    Direction `json:"side,omitempty"`
	Depth   int       `json:"depth"`
	NodeIDs []string  `json:"node_ids"`
}

// LayoutResult is the output of a layout pass
type LayoutResult struct {
	Nodes   []Node       `json:"nodes"`
	Levels  []LevelGroup `json:"levels"`
	Dropped []string     `json:"dropped,omitempty"` // unreachable from the root
}

// LayoutEngine computes node positions from tree topology alone
type LayoutEngine struct {
	cfg    Config
	logger *zap.Logger
}

// NewLayoutEngine creates a layout engine. A nil logger disables logging.
func NewLayoutEngine(cfg Config, logger *zap.Logger) *LayoutEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayoutEngine{cfg: cfg.withDefaults(), logger: logger}
}

// ComputePositions lays out nodes with the default configuration
func ComputePositions(nodes []Node, rootID string) (*LayoutResult, error) {
	return NewLayoutEngine(DefaultConfig(), nil).ComputePositions(nodes, rootID)
}

// ComputePositions returns a copy of nodes with every position recomputed.
// An empty rootID means "the single parentless node". Nodes that cannot be
// reached from the root are left out of the result and listed in Dropped.
//
// Vertical placement: leaves take consecutive slots VerticalSpacing apart in
// depth-first sibling order, a parent sits at the mean y of its children, and
// each side is shifted so its leaf extent is centered on the root.
func (l *LayoutEngine) ComputePositions(nodes []Node, rootID string) (*LayoutResult, error) {
	if len(nodes) == 0 {
		return &LayoutResult{Nodes: []Node{}}, nil
	}

	ix := newTreeIndex(nodes)
	root, err := l.resolveRoot(ix, nodes, rootID)
	if err != nil {
		l.logger.Error("layout aborted", zap.Error(err), zap.Int("nodes", len(nodes)))
		return nil, err
	}

	r := ix.walkFrom(root.ID)
	kids := l.orderedChildren(ix, r)

	ys := make(map[string]float64, len(r.order))
	var levels []LevelGroup
	levels = append(levels, LevelGroup{Depth: 0, NodeIDs: []string{root.ID}})

	for _, side := range []Direction{DirectionLeft, DirectionRight} {
		var top []string
		for _, id := range kids[root.ID] {
			if r.side[id] == side {
				top = append(top, id)
			}
		}
		if len(top) == 0 {
			continue
		}
		preorder := l.placeLeaves(top, kids, ys)
		levels = append(levels, groupLevels(side, preorder, r.depth)...)

		// Parents take the mean of their children; reverse breadth-first order
		// guarantees children are final before their parent is visited.
		for i := len(r.order) - 1; i > 0; i-- {
			id := r.order[i]
			if r.side[id] != side || len(kids[id]) == 0 {
				continue
			}
			var sum float64
			for _, c := range kids[id] {
				sum += ys[c]
			}
			ys[id] = sum / float64(len(kids[id]))
		}

		minY, maxY := ys[preorder[0]], ys[preorder[0]]
		for _, id := range preorder {
			if len(kids[id]) > 0 {
				continue
			}
			if ys[id] < minY {
				minY = ys[id]
			}
			if ys[id] > maxY {
				maxY = ys[id]
			}
		}
		offset := l.cfg.Origin.Y - (minY+maxY)/2
		for _, id := range preorder {
			ys[id] += offset
		}
	}

	result := &LayoutResult{
		Nodes:  make([]Node, 0, len(r.order)),
		Levels: levels,
	}
	emitted := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if !r.contains(n.ID) || emitted[n.ID] {
			result.Dropped = append(result.Dropped, n.ID)
			continue
		}
		emitted[n.ID] = true
		out := n.Clone()
		if n.ID == root.ID {
			out.Position = &Position{X: l.cfg.Origin.X, Y: l.cfg.Origin.Y}
		} else {
			x := l.cfg.Origin.X + r.side[n.ID].Sign()*float64(r.depth[n.ID])*l.cfg.HorizontalSpacing
			out.Position = &Position{X: x, Y: ys[n.ID]}
		}
		result.Nodes = append(result.Nodes, out)
	}

	if len(result.Dropped) > 0 {
		l.logger.Warn("dropped nodes unreachable from root",
			zap.String("rootID", root.ID),
			zap.Strings("nodeIDs", result.Dropped),
		)
	}
	return result, nil
}

func (l *LayoutEngine) resolveRoot(ix *treeIndex, nodes []Node, rootID string) (Node, error) {
	if rootID == "" {
		return FindRoot(nodes)
	}
	root, ok := ix.node(rootID)
	if !ok {
		return Node{}, &TopologyError{Violations: []Violation{{
			Kind: ViolationMissingRoot, NodeID: rootID, Detail: "root id is not in the set",
		}}}
	}
	if root.ParentID != nil {
		return Node{}, &TopologyError{Violations: []Violation{{
			Kind: ViolationMissingRoot, NodeID: rootID, Detail: fmt.Sprintf("root has parent %s", *root.ParentID),
		}}}
	}
	return root, nil
}

// orderedChildren returns reachable children per parent in sibling order
func (l *LayoutEngine) orderedChildren(ix *treeIndex, r *reach) map[string][]string {
	kids := make(map[string][]string, len(r.order))
	for _, id := range r.order {
		var siblings []Node
		for _, c := range ix.children[id] {
			if r.contains(c) {
				n, _ := ix.node(c)
				siblings = append(siblings, n)
			}
		}
		if len(siblings) == 0 {
			continue
		}
		sortSiblings(siblings, ix.pos)
		ids := make([]string, len(siblings))
		for i, s := range siblings {
			ids[i] = s.ID
		}
		kids[id] = ids
	}
	return kids
}

// placeLeaves walks one side depth-first and gives each leaf the next slot.
// It returns the pre-order visit sequence.
func (l *LayoutEngine) placeLeaves(top []string, kids map[string][]string, ys map[string]float64) []string {
	var preorder []string
	slot := 0
	stack := make([]string, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		stack = append(stack, top[i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		preorder = append(preorder, id)
		children := kids[id]
		if len(children) == 0 {
			ys[id] = float64(slot) * l.cfg.VerticalSpacing
			slot++
			continue
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return preorder
}

// groupLevels partitions a side's pre-order sequence by depth. Pre-order
// restricted to one depth is top-to-bottom order.
func groupLevels(side Direction, preorder []string, depth map[string]int) []LevelGroup {
	var groups []LevelGroup
	at := make(map[int]int)
	for _, id := range preorder {
		d := depth[id]
		i, ok := at[d]
		if !ok {
			i = len(groups)
			at[d] = i
			groups = append(groups, LevelGroup{Side: side, Depth: d})
		}
		groups[i].NodeIDs = append(groups[i].NodeIDs, id)
	}
	return groups
}

// LevelGroups returns the (side, depth) partition of the tree rooted at
// rootID, members top to bottom.
func LevelGroups(nodes []Node, rootID string) ([]LevelGroup, error) {
	res, err := ComputePositions(nodes, rootID)
	if err != nil {
		return nil, err
	}
	return res.Levels, nil
}
