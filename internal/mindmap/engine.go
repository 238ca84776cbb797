package mindmap

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces the wall clock used for double-click detection
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithIDGenerator replaces the node id generator
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithNodesChanged registers the nodes-changed listener. It only ever
// receives internally originated envelopes.
func WithNodesChanged(fn func(Envelope)) Option {
	return func(e *Engine) { e.onNodesChanged = fn }
}

// WithCanvasClicked registers the listener for single clicks on bare canvas
func WithCanvasClicked(fn func()) Option {
	return func(e *Engine) { e.onCanvasClicked = fn }
}

// Engine owns the node and edge collections of one mind-map. All entry points
// are serialized; listeners run after the engine lock is released, so a host
// may echo a nodes-changed envelope straight back into Receive.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	logger   *zap.Logger
	clock    Clock
	newID    func() string
	layout   *LayoutEngine
	resolver *InsertionResolver
	rec      *reconciler
	clicks   *ClickTracker

	nodes   []Node
	edges   []Edge
	levels  []LevelGroup
	drafts  map[string]string
	actions map[string]NodeActions

	onNodesChanged  func(Envelope)
	onCanvasClicked func()
}

// NewEngine creates an engine holding an empty mind-map
func NewEngine(cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:     cfg,
		logger:  zap.NewNop(),
		newID:   NewID,
		nodes:   []Node{},
		edges:   []Edge{},
		drafts:  make(map[string]string),
		actions: make(map[string]NodeActions),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.layout = NewLayoutEngine(cfg, e.logger)
	e.resolver = NewInsertionResolver(cfg, e.logger)
	e.rec = newReconciler(e.logger)
	e.clicks = NewClickTracker(cfg.DoubleClickWindow, e.clock, e.handleSingleClick, e.handleDoubleClick)
	return e
}

// Nodes returns a copy of the current laid-out nodes
func (e *Engine) Nodes() []Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CloneNodes(e.nodes)
}

// Edges returns a copy of the current edges
func (e *Engine) Edges() []Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Edge(nil), e.edges...)
}

// Levels returns the level groups of the last layout pass
func (e *Engine) Levels() []LevelGroup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]LevelGroup(nil), e.levels...)
}

// State returns the reconciler state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.state
}

// Generation returns the generation of the last internal mutation
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.generation
}

// Actions looks up the behavior bound to a node
func (e *Engine) Actions(id string) (NodeActions, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.actions[id]
	return a, ok
}

// Load delivers an external snapshot, e.g. a mind-map read from storage
func (e *Engine) Load(nodes []Node) (Outcome, error) {
	return e.Receive(Envelope{Origin: OriginExternal, Nodes: nodes})
}

// Receive reconciles an incoming snapshot with local state. Echoes of the
// engine's own mutations are skipped, value-identical snapshots are ignored,
// selection-only differences update flags in place, and anything else is
// adopted and laid out again. In-progress label drafts survive all of these.
func (e *Engine) Receive(env Envelope) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	outcome := e.rec.classify(env)
	switch outcome {
	case OutcomeSelectionSynced:
		selected := make(map[string]bool, len(env.Nodes))
		for _, n := range env.Nodes {
			selected[n.ID] = n.Selected
		}
		for i := range e.nodes {
			e.nodes[i].Selected = selected[e.nodes[i].ID]
		}
		e.rec.adopt(env.Nodes)

	case OutcomeApplied:
		res, err := e.layoutOf(Normalize(env.Nodes))
		if err != nil {
			e.rec.state = StateIdle
			e.logger.Error("rejected external snapshot", zap.Error(err))
			return OutcomeUnchanged, fmt.Errorf("applying snapshot: %w", err)
		}
		e.commit(res)
		e.rec.adopt(env.Nodes)
	}

	e.logger.Debug("snapshot reconciled",
		zap.String("origin", string(env.Origin)),
		zap.Uint64("generation", env.Generation),
		zap.String("outcome", outcome.String()),
		zap.Int("nodes", len(env.Nodes)),
	)
	return outcome, nil
}

// AddRoot creates the root of an empty mind-map
func (e *Engine) AddRoot(label string) (string, error) {
	var id string
	err := e.mutate("add_root", func(nodes []Node) ([]Node, error) {
		if len(nodes) > 0 {
			return nil, ErrRootExists
		}
		id = e.newID()
		return []Node{{ID: id, Label: label, IsNew: true}}, nil
	})
	return id, err
}

// AddChild appends a child under parentID. Children of the root go to the
// less crowded side (right on a tie); deeper children inherit their parent's
// side. Assistant suggestions use this same path.
func (e *Engine) AddChild(parentID, label string) (string, error) {
	var id string
	err := e.mutate("add_child", func(nodes []Node) ([]Node, error) {
		ix := newTreeIndex(nodes)
		parent, ok := ix.node(parentID)
		if !ok {
			return nil, fmt.Errorf("adding child to %s: %w", parentID, ErrNodeNotFound)
		}
		id = e.newID()
		child := Node{
			ID:        id,
			Label:     label,
			ParentID:  StrPtr(parentID),
			Direction: childSide(nodes, parent),
			IsNew:     true,
		}
		return append(nodes, child), nil
	})
	return id, err
}

// InsertAt creates a node where the user double-clicked on bare canvas
func (e *Engine) InsertAt(point Position, label string) (string, Insertion, error) {
	var id string
	var ins Insertion
	err := e.mutate("insert_at", func(nodes []Node) ([]Node, error) {
		ins = e.resolver.ResolveInsertion(nodes, point)
		id = e.newID()
		if ins.BecomesRoot {
			return []Node{{ID: id, Label: label, IsNew: true}}, nil
		}
		child := Node{
			ID:        id,
			Label:     label,
			ParentID:  StrPtr(ins.ParentID),
			Direction: ins.Direction,
			IsNew:     true,
			Position:  e.provisionalPosition(nodes, ins),
		}
		return append(nodes, child), nil
	})
	return id, ins, err
}

// Delete removes a node and its whole subtree
func (e *Engine) Delete(id string) error {
	return e.mutate("delete", func(nodes []Node) ([]Node, error) {
		out, removed, err := RemoveSubtree(nodes, id)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("cascading delete", zap.String("nodeID", id), zap.Int("removed", len(removed)))
		return out, nil
	})
}

// CommitLabel stores a label, ends any draft and clears the new-node flag
func (e *Engine) CommitLabel(id, label string) error {
	return e.mutate("commit_label", func(nodes []Node) ([]Node, error) {
		i := indexOf(nodes, id)
		if i < 0 {
			return nil, fmt.Errorf("labeling %s: %w", id, ErrNodeNotFound)
		}
		nodes[i].Label = label
		nodes[i].IsNew = false
		delete(e.drafts, id)
		return nodes, nil
	})
}

// Select marks id as the only selected node
func (e *Engine) Select(id string) error {
	return e.mutate("select", func(nodes []Node) ([]Node, error) {
		if indexOf(nodes, id) < 0 {
			return nil, fmt.Errorf("selecting %s: %w", id, ErrNodeNotFound)
		}
		for i := range nodes {
			nodes[i].Selected = nodes[i].ID == id
		}
		return nodes, nil
	})
}

// ToggleSelect selects id, or deselects it when it is already selected
func (e *Engine) ToggleSelect(id string) error {
	return e.mutate("toggle_select", func(nodes []Node) ([]Node, error) {
		i := indexOf(nodes, id)
		if i < 0 {
			return nil, fmt.Errorf("selecting %s: %w", id, ErrNodeNotFound)
		}
		target := !nodes[i].Selected
		for j := range nodes {
			nodes[j].Selected = false
		}
		nodes[i].Selected = target
		return nodes, nil
	})
}

// ClearSelection deselects everything. It is a no-op when nothing is selected.
func (e *Engine) ClearSelection() error {
	e.mu.Lock()
	hasSelection := false
	for _, n := range e.nodes {
		if n.Selected {
			hasSelection = true
			break
		}
	}
	e.mu.Unlock()
	if !hasSelection {
		return nil
	}
	return e.mutate("clear_selection", func(nodes []Node) ([]Node, error) {
		for i := range nodes {
			nodes[i].Selected = false
		}
		return nodes, nil
	})
}

// BeginEdit starts a label draft seeded with the committed label
func (e *Engine) BeginEdit(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := indexOf(e.nodes, id)
	if i < 0 {
		return fmt.Errorf("editing %s: %w", id, ErrNodeNotFound)
	}
	if _, ok := e.drafts[id]; !ok {
		e.drafts[id] = e.nodes[i].Label
	}
	return nil
}

// UpdateDraft records in-progress label text. Drafts are local state and
// never produce a nodes-changed notification.
func (e *Engine) UpdateDraft(id, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if indexOf(e.nodes, id) < 0 {
		return fmt.Errorf("editing %s: %w", id, ErrNodeNotFound)
	}
	e.drafts[id] = text
	return nil
}

// CancelEdit discards a draft
func (e *Engine) CancelEdit(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.drafts, id)
}

// Draft returns the in-progress label of a node
func (e *Engine) Draft(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.drafts[id]
	return d, ok
}

// Click feeds a raw pointer click into double-click detection
func (e *Engine) Click(ev ClickEvent) {
	e.clicks.Click(ev)
}

func (e *Engine) handleSingleClick(ev ClickEvent) {
	if ev.TargetID == "" {
		if err := e.ClearSelection(); err != nil {
			e.logger.Warn("clearing selection", zap.Error(err))
		}
		if e.onCanvasClicked != nil {
			e.onCanvasClicked()
		}
		return
	}
	if err := e.ToggleSelect(ev.TargetID); err != nil {
		e.logger.Warn("click on unknown node", zap.String("nodeID", ev.TargetID), zap.Error(err))
	}
}

func (e *Engine) handleDoubleClick(ev ClickEvent) {
	if ev.TargetID != "" {
		if err := e.BeginEdit(ev.TargetID); err != nil {
			e.logger.Warn("double click on unknown node", zap.String("nodeID", ev.TargetID), zap.Error(err))
		}
		return
	}
	if _, _, err := e.InsertAt(ev.Point, ""); err != nil {
		e.logger.Warn("inserting node", zap.Error(err))
	}
}

// mutate runs fn on a copy of the nodes, lays the result out, commits it and
// notifies the listener with a freshly stamped internal envelope.
func (e *Engine) mutate(op string, fn func([]Node) ([]Node, error)) error {
	e.mu.Lock()
	e.rec.begin()
	next, err := fn(CloneNodes(e.nodes))
	if err != nil {
		e.rec.abort()
		e.mu.Unlock()
		return err
	}
	res, err := e.layoutOf(next)
	if err != nil {
		e.rec.abort()
		e.mu.Unlock()
		e.logger.Error("mutation broke tree topology", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	e.commit(res)
	env := e.rec.emit(e.nodes)
	listener := e.onNodesChanged
	e.mu.Unlock()

	e.logger.Debug("local mutation",
		zap.String("op", op),
		zap.Uint64("generation", env.Generation),
		zap.Int("nodes", len(env.Nodes)),
	)
	if listener != nil {
		listener(env)
	}
	return nil
}

func (e *Engine) layoutOf(nodes []Node) (*LayoutResult, error) {
	if len(nodes) == 0 {
		return &LayoutResult{Nodes: []Node{}}, nil
	}
	return e.layout.ComputePositions(nodes, "")
}

// commit installs a layout result and rebuilds everything derived from it
func (e *Engine) commit(res *LayoutResult) {
	e.nodes = res.Nodes
	e.levels = res.Levels
	e.edges = SynthesizeEdges(e.nodes)
	e.actions = buildActions(e, e.nodes)
	for id := range e.drafts {
		if indexOf(e.nodes, id) < 0 {
			delete(e.drafts, id)
		}
	}
}

// provisionalPosition places a new node between its future neighbors so the
// next layout pass keeps it at the resolved sibling rank.
func (e *Engine) provisionalPosition(nodes []Node, ins Insertion) *Position {
	siblings := ChildrenOf(nodes, ins.ParentID, ins.Direction)
	var x float64
	if p := indexOf(nodes, ins.ParentID); p >= 0 && nodes[p].Position != nil {
		x = nodes[p].Position.X
	}
	x += ins.Direction.Sign() * e.cfg.HorizontalSpacing

	half := e.cfg.VerticalSpacing / 2
	var y float64
	switch {
	case len(siblings) == 0:
		return &Position{X: x}
	case ins.SiblingIndex >= len(siblings):
		last := siblings[len(siblings)-1]
		if last.Position == nil {
			return nil
		}
		y = last.Position.Y + half
	case siblings[ins.SiblingIndex].Position == nil:
		return nil
	case ins.SiblingIndex == 0:
		y = siblings[0].Position.Y - half
	default:
		above, below := siblings[ins.SiblingIndex-1], siblings[ins.SiblingIndex]
		y = (above.Position.Y + below.Position.Y) / 2
	}
	return &Position{X: x, Y: y}
}

// childSide picks the side for a new child of parent
func childSide(nodes []Node, parent Node) Direction {
	if parent.ParentID != nil {
		if parent.Direction.Valid() {
			return parent.Direction
		}
		return DirectionRight
	}
	var left, right int
	for _, n := range nodes {
		if n.ParentID == nil || *n.ParentID != parent.ID {
			continue
		}
		if n.Direction == DirectionLeft {
			left++
		} else {
			right++
		}
	}
	if left < right {
		return DirectionLeft
	}
	return DirectionRight
}

func indexOf(nodes []Node, id string) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
