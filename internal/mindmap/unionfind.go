package mindmap

// unionFind implements union-find with path compression and union by rank.
// Used to group parent-linked nodes into fragments.
type unionFind struct {
	parent map[string]string
	rank   map[string]int
	size   map[string]int
}

func newUnionFind(ids []string) *unionFind {
	uf := &unionFind{
		parent: make(map[string]string, len(ids)),
		rank:   make(map[string]int, len(ids)),
		size:   make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		uf.parent[id] = id
		uf.size[id] = 1
	}
	return uf
}

// find returns the representative of id's fragment. Iterative so that long
// parent chains cannot grow the call stack.
func (uf *unionFind) find(id string) string {
	root, ok := uf.parent[id]
	if !ok {
		return id
	}
	for root != uf.parent[root] {
		root = uf.parent[root]
	}
	for id != root {
		next := uf.parent[id]
		uf.parent[id] = root
		id = next
	}
	return root
}

// union merges the fragments holding a and b. Returns true if they were separate.
func (uf *unionFind) union(a, b string) bool {
	rootA := uf.find(a)
	rootB := uf.find(b)
	if rootA == rootB {
		return false
	}

	if uf.rank[rootA] < uf.rank[rootB] {
		rootA, rootB = rootB, rootA
	}
	uf.parent[rootB] = rootA
	uf.size[rootA] += uf.size[rootB]
	if uf.rank[rootA] == uf.rank[rootB] {
		uf.rank[rootA]++
	}
	return true
}

// components returns every fragment keyed by its representative
func (uf *unionFind) components() map[string][]string {
	groups := make(map[string][]string)
	for id := range uf.parent {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}
	return groups
}
