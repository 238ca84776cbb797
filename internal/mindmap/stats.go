package mindmap

import "sort"

// SideStats summarizes one side of the map
type SideStats struct {
	Nodes    int `json:"nodes"`
	Leaves   int `json:"leaves"`
	MaxDepth int `json:"max_depth"`
}

// Stats contains structural statistics for a mind-map
type Stats struct {
	TotalNodes   int         `json:"total_nodes"`
	TotalEdges   int         `json:"total_edges"`
	RootID       string      `json:"root_id,omitempty"`
	RootLabel    string      `json:"root_label,omitempty"`
	Left         SideStats   `json:"left"`
	Right        SideStats   `json:"right"`
	MaxDepth     int         `json:"max_depth"`
	Leaves       int         `json:"leaves"`
	Fragments    int         `json:"fragments"`
	Unreachable  []string    `json:"unreachable,omitempty"`
	WidestLevel  *LevelGroup `json:"widest_level,omitempty"`
	Balance      float64     `json:"balance"` // smaller side / larger side, 1 when even
	NewNodes     int         `json:"new_nodes"`
	SelectedNode string      `json:"selected_node,omitempty"`
}

// ComputeStats analyzes the tree: side sizes, depth, leaves, fragments and the
// widest level. It tolerates broken input and reports what it can.
func ComputeStats(nodes []Node) *Stats {
	st := &Stats{
		TotalNodes: len(nodes),
		TotalEdges: len(SynthesizeEdges(nodes)),
	}
	if len(nodes) == 0 {
		return st
	}

	ix := newTreeIndex(nodes)
	st.Fragments = countFragments(ix)

	for _, n := range nodes {
		if n.IsNew {
			st.NewNodes++
		}
		if n.Selected && st.SelectedNode == "" {
			st.SelectedNode = n.ID
		}
	}

	if len(ix.roots) == 0 {
		return st
	}
	root, _ := ix.node(ix.roots[0])
	st.RootID, st.RootLabel = root.ID, root.Label

	r := ix.walkFrom(root.ID)
	for id := range ix.pos {
		if !r.contains(id) {
			st.Unreachable = append(st.Unreachable, id)
		}
	}
	sort.Strings(st.Unreachable)

	for _, id := range r.order[1:] {
		side := &st.Right
		if r.side[id] == DirectionLeft {
			side = &st.Left
		}
		side.Nodes++
		d := r.depth[id]
		if d > side.MaxDepth {
			side.MaxDepth = d
		}
		if d > st.MaxDepth {
			st.MaxDepth = d
		}
		if !hasReachableChild(ix, r, id) {
			side.Leaves++
			st.Leaves++
		}
	}
	if len(r.order) == 1 {
		st.Leaves = 1
	}

	small, large := st.Left.Nodes, st.Right.Nodes
	if small > large {
		small, large = large, small
	}
	st.Balance = 1
	if large > 0 {
		st.Balance = float64(small) / float64(large)
	}

	if res, err := ComputePositions(nodes, root.ID); err == nil {
		for i := range res.Levels {
			lvl := res.Levels[i]
			if st.WidestLevel == nil || len(lvl.NodeIDs) > len(st.WidestLevel.NodeIDs) {
				st.WidestLevel = &lvl
			}
		}
	}
	return st
}

func hasReachableChild(ix *treeIndex, r *reach, id string) bool {
	for _, c := range ix.children[id] {
		if r.contains(c) {
			return true
		}
	}
	return false
}
