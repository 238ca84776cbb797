package mindmap

import (
	"fmt"
	"sort"
)

// treeIndex is a read-only view over a node slice with parent-indexed adjacency
type treeIndex struct {
	nodes    []Node
	pos      map[string]int      // id -> index in nodes (first occurrence)
	children map[string][]string // parent id -> child ids, input order
	roots    []string            // parentless ids, input order
	dups     []string
}

func newTreeIndex(nodes []Node) *treeIndex {
	ix := &treeIndex{
		nodes:    nodes,
		pos:      make(map[string]int, len(nodes)),
		children: make(map[string][]string),
	}
	for i, n := range nodes {
		if _, seen := ix.pos[n.ID]; seen {
			ix.dups = append(ix.dups, n.ID)
			continue
		}
		ix.pos[n.ID] = i
		if n.ParentID == nil {
			ix.roots = append(ix.roots, n.ID)
			continue
		}
		ix.children[*n.ParentID] = append(ix.children[*n.ParentID], n.ID)
	}
	return ix
}

func (ix *treeIndex) node(id string) (Node, bool) {
	i, ok := ix.pos[id]
	if !ok {
		return Node{}, false
	}
	return ix.nodes[i], true
}

// reach is the result of a breadth-first walk from the root
type reach struct {
	rootID string
	depth  map[string]int
	side   map[string]Direction
	order  []string // breadth-first, children in input order
}

func (r *reach) contains(id string) bool {
	_, ok := r.depth[id]
	return ok
}

// walkFrom visits everything reachable from rootID through child links. The
// side of a node is the direction of its depth-1 ancestor, so a descendant
// carrying a stale direction is still placed with its branch.
func (ix *treeIndex) walkFrom(rootID string) *reach {
	r := &reach{
		rootID: rootID,
		depth:  map[string]int{rootID: 0},
		side:   make(map[string]Direction),
		order:  []string{rootID},
	}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, childID := range ix.children[id] {
			if r.contains(childID) {
				continue
			}
			child, _ := ix.node(childID)
			if id == rootID {
				side := child.Direction
				if !side.Valid() {
					side = DirectionRight
				}
				r.side[childID] = side
			} else {
				r.side[childID] = r.side[id]
			}
			r.depth[childID] = r.depth[id] + 1
			r.order = append(r.order, childID)
			queue = append(queue, childID)
		}
	}
	return r
}

// FindRoot returns the single parentless node. A missing or ambiguous root
// is a topology violation; no substitute is guessed.
func FindRoot(nodes []Node) (Node, error) {
	ix := newTreeIndex(nodes)
	switch len(ix.roots) {
	case 1:
		n, _ := ix.node(ix.roots[0])
		return n, nil
	case 0:
		return Node{}, &TopologyError{Violations: []Violation{{
			Kind:   ViolationMissingRoot,
			Detail: fmt.Sprintf("none of %d nodes is parentless", len(nodes)),
		}}}
	default:
		return Node{}, &TopologyError{Violations: []Violation{{
			Kind:   ViolationMultipleRoots,
			Detail: fmt.Sprintf("parentless nodes: %v", ix.roots),
		}}}
	}
}

// Validate checks every tree invariant and returns a *TopologyError listing
// all violations, or nil for a valid tree. An empty node set is valid.
func Validate(nodes []Node) error {
	if len(nodes) == 0 {
		return nil
	}
	ix := newTreeIndex(nodes)
	var violations []Violation

	for _, id := range ix.dups {
		violations = append(violations, Violation{Kind: ViolationDuplicateID, NodeID: id})
	}

	switch len(ix.roots) {
	case 0:
		violations = append(violations, Violation{Kind: ViolationMissingRoot, Detail: "no parentless node"})
	case 1:
	default:
		violations = append(violations, Violation{
			Kind:   ViolationMultipleRoots,
			Detail: fmt.Sprintf("parentless nodes: %v", ix.roots),
		})
	}

	for _, n := range nodes {
		if n.ParentID == nil {
			continue
		}
		if _, ok := ix.node(*n.ParentID); !ok {
			violations = append(violations, Violation{
				Kind:   ViolationMissingParent,
				NodeID: n.ID,
				Detail: "parent " + *n.ParentID + " is not in the set",
			})
		}
	}

	for _, id := range cycleMembers(ix) {
		violations = append(violations, Violation{Kind: ViolationCycle, NodeID: id})
	}

	if len(ix.roots) >= 1 {
		rootID := ix.roots[0]
		for _, n := range nodes {
			if n.ParentID == nil {
				continue
			}
			parent, ok := ix.node(*n.ParentID)
			if !ok {
				continue
			}
			if !n.Direction.Valid() {
				violations = append(violations, Violation{Kind: ViolationMissingDirection, NodeID: n.ID})
				continue
			}
			if parent.ID != rootID && parent.Direction.Valid() && parent.Direction != n.Direction {
				violations = append(violations, Violation{
					Kind:   ViolationDirection,
					NodeID: n.ID,
					Detail: fmt.Sprintf("%s under %s parent %s", n.Direction, parent.Direction, parent.ID),
				})
			}
		}
	}

	if fragments := countFragments(ix); fragments > 1 {
		violations = append(violations, Violation{
			Kind:   ViolationDisconnectedGroup,
			Detail: fmt.Sprintf("%d fragments instead of 1", fragments),
		})
	}

	if len(violations) == 0 {
		return nil
	}
	return &TopologyError{Violations: violations}
}

// cycleMembers follows parent links from every node and returns the ids that
// sit on a cycle, sorted for stable output.
func cycleMembers(ix *treeIndex) []string {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int, len(ix.pos))
	inCycle := make(map[string]bool)

	for _, start := range ix.nodes {
		if state[start.ID] != unvisited {
			continue
		}
		var path []string
		current := start.ID
		for {
			if state[current] == done {
				break
			}
			if state[current] == onPath {
				// Everything on the path from current's first visit onward loops.
				for i := len(path) - 1; i >= 0; i-- {
					inCycle[path[i]] = true
					if path[i] == current {
						break
					}
				}
				break
			}
			state[current] = onPath
			path = append(path, current)
			n, ok := ix.node(current)
			if !ok || n.ParentID == nil {
				break
			}
			if _, ok := ix.node(*n.ParentID); !ok {
				break
			}
			current = *n.ParentID
		}
		for _, id := range path {
			state[id] = done
		}
	}

	ids := make([]string, 0, len(inCycle))
	for id := range inCycle {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// countFragments groups nodes connected through parent links
func countFragments(ix *treeIndex) int {
	ids := make([]string, 0, len(ix.pos))
	for id := range ix.pos {
		ids = append(ids, id)
	}
	uf := newUnionFind(ids)
	for _, n := range ix.nodes {
		if n.ParentID == nil {
			continue
		}
		if _, ok := ix.pos[*n.ParentID]; ok {
			uf.union(n.ID, *n.ParentID)
		}
	}
	return len(uf.components())
}

// Descendants returns id and every node below it in pre-order. It uses an
// explicit stack, so memory grows with tree width rather than call depth.
func Descendants(nodes []Node, id string) []string {
	ix := newTreeIndex(nodes)
	if _, ok := ix.node(id); !ok {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	stack := []string{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[current] {
			continue
		}
		seen[current] = true
		out = append(out, current)
		kids := ix.children[current]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// RemoveSubtree deletes id and all of its descendants. It returns the new
// node slice and the removed ids; the input is not modified.
func RemoveSubtree(nodes []Node, id string) ([]Node, []string, error) {
	removed := Descendants(nodes, id)
	if len(removed) == 0 {
		return nil, nil, fmt.Errorf("removing %s: %w", id, ErrNodeNotFound)
	}
	drop := make(map[string]bool, len(removed))
	for _, r := range removed {
		drop[r] = true
	}
	out := make([]Node, 0, len(nodes)-len(removed))
	for _, n := range nodes {
		if drop[n.ID] {
			continue
		}
		out = append(out, n.Clone())
	}
	return out, removed, nil
}

// Normalize returns a copy with directions made consistent: the root carries
// none, a root child without a valid side goes right, and deeper nodes take
// the side of their depth-1 ancestor. Nodes unreachable from the single root
// are copied unchanged.
func Normalize(nodes []Node) []Node {
	out := CloneNodes(nodes)
	ix := newTreeIndex(out)
	if len(ix.roots) != 1 {
		return out
	}
	r := ix.walkFrom(ix.roots[0])
	for i := range out {
		n := &out[i]
		if n.ID == r.rootID {
			n.Direction = ""
			continue
		}
		if side, ok := r.side[n.ID]; ok {
			n.Direction = side
		}
	}
	return out
}

// ChildrenOf returns the children of parentID on the given side, ordered top
// to bottom. Nodes without a position sort after positioned siblings, in
// input order.
func ChildrenOf(nodes []Node, parentID string, side Direction) []Node {
	var out []Node
	order := make(map[string]int)
	for i, n := range nodes {
		if n.ParentID == nil || *n.ParentID != parentID {
			continue
		}
		if side != "" && n.Direction != side {
			continue
		}
		order[n.ID] = i
		out = append(out, n)
	}
	sortSiblings(out, order)
	return out
}

// sortSiblings orders by current y, unpositioned nodes last, input order on ties
func sortSiblings(siblings []Node, order map[string]int) {
	sort.SliceStable(siblings, func(i, j int) bool {
		a, b := siblings[i], siblings[j]
		switch {
		case a.Position != nil && b.Position == nil:
			return true
		case a.Position == nil && b.Position != nil:
			return false
		case a.Position != nil && b.Position != nil && a.Position.Y != b.Position.Y:
			return a.Position.Y < b.Position.Y
		}
		return order[a.ID] < order[b.ID]
	})
}
