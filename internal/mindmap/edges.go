package mindmap

// SynthesizeEdges derives one edge per non-root node from its parent link.
// Left-side edges leave the parent's left anchor and enter the child's right
// anchor; right-side edges are mirrored. Output follows input order, so equal
// inputs give equal edge sets.
func SynthesizeEdges(nodes []Node) []Edge {
	edges := make([]Edge, 0, len(nodes))
	for _, n := range nodes {
		if n.ParentID == nil {
			continue
		}
		dir := n.Direction
		if !dir.Valid() {
			dir = DirectionRight
		}
		e := Edge{
			ID:        EdgeID(*n.ParentID, n.ID),
			Source:    *n.ParentID,
			Target:    n.ID,
			Direction: dir,
		}
		if dir == DirectionLeft {
			e.SourceAnchor, e.TargetAnchor = AnchorLeft, AnchorRight
		} else {
			e.SourceAnchor, e.TargetAnchor = AnchorRight, AnchorLeft
		}
		edges = append(edges, e)
	}
	return edges
}

// EdgeID is the structural identifier of the parent->child edge
func EdgeID(parentID, childID string) string {
	return "e-" + parentID + "-" + childID
}
