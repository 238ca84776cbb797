package mindmap

// NodeActions is the behavior a renderer can invoke on one node. Actions are
// looked up by node ID and rebuilt whenever the node set changes, so they
// never travel inside snapshot data.
type NodeActions interface {
	CommitLabel(label string) error
	UpdateDraft(text string) error
	AddChild(label string) (string, error)
	Delete() error
	ToggleSelect() error
}

type boundActions struct {
	engine *Engine
	id     string
}

func (a boundActions) CommitLabel(label string) error { return a.engine.CommitLabel(a.id, label) }
func (a boundActions) UpdateDraft(text string) error  { return a.engine.UpdateDraft(a.id, text) }
func (a boundActions) AddChild(label string) (string, error) {
	return a.engine.AddChild(a.id, label)
}
func (a boundActions) Delete() error       { return a.engine.Delete(a.id) }
func (a boundActions) ToggleSelect() error { return a.engine.ToggleSelect(a.id) }

// buildActions returns a fresh capability table for nodes
func buildActions(e *Engine, nodes []Node) map[string]NodeActions {
	table := make(map[string]NodeActions, len(nodes))
	for _, n := range nodes {
		table[n.ID] = boundActions{engine: e, id: n.ID}
	}
	return table
}
