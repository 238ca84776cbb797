package mindmap

import (
	"go.uber.org/zap"
)

// Origin tags where a node snapshot came from
type Origin string

const (
	OriginInternal Origin = "internal"
	OriginExternal Origin = "external"
)

// Envelope carries a node snapshot together with its origin. Internal
// envelopes are stamped with the generation of the mutation that produced
// them; a host echoing one back passes it through unchanged.
type Envelope struct {
	Origin     Origin `json:"origin"`
	Generation uint64 `json:"generation,omitempty"`
	Nodes      []Node `json:"nodes"`
}

// State is the reconciler's position in its cycle
type State int

const (
	StateIdle State = iota
	StateInternalMutation
	StateExternalApply
	StateSelectionOnlySync
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInternalMutation:
		return "internal_mutation"
	case StateExternalApply:
		return "external_apply"
	case StateSelectionOnlySync:
		return "selection_only_sync"
	default:
		return "unknown"
	}
}

// Outcome is what the reconciler decided to do with a snapshot
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeApplied
	OutcomeSelectionSynced
	OutcomeEchoSkipped
	OutcomeStaleSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeSelectionSynced:
		return "selection_synced"
	case OutcomeEchoSkipped:
		return "echo_skipped"
	case OutcomeStaleSkipped:
		return "stale_skipped"
	default:
		return "unchanged"
	}
}

// nodeKey is the value of a node as far as reconciliation is concerned.
// Positions are derived and deliberately excluded.
type nodeKey struct {
	Label     string
	Parent    string
	HasParent bool
	Direction Direction
	Selected  bool
}

type fingerprint map[string]nodeKey

func fingerprintOf(nodes []Node) fingerprint {
	fp := make(fingerprint, len(nodes))
	for _, n := range nodes {
		fp[n.ID] = nodeKey{
			Label:     n.Label,
			Parent:    n.Parent(),
			HasParent: n.ParentID != nil,
			Direction: n.Direction,
			Selected:  n.Selected,
		}
	}
	return fp
}

// diff classifies the difference between two fingerprints
func (fp fingerprint) diff(other fingerprint) (equal, selectionOnly bool) {
	if len(fp) != len(other) {
		return false, false
	}
	selectionOnly = true
	equal = true
	for id, a := range fp {
		b, ok := other[id]
		if !ok {
			return false, false
		}
		if a == b {
			continue
		}
		equal = false
		a.Selected, b.Selected = false, false
		if a != b {
			selectionOnly = false
		}
	}
	return equal, selectionOnly && !equal
}

// reconciler decides how an incoming snapshot relates to local state. It
// compares by value and tracks the generation of the last internal mutation
// so that the host echoing that mutation back is not mistaken for news.
type reconciler struct {
	state      State
	known      fingerprint
	generation uint64 // last generation handed out
	pending    uint64 // generation whose echo has not arrived yet, 0 if none
	logger     *zap.Logger
}

func newReconciler(logger *zap.Logger) *reconciler {
	return &reconciler{known: fingerprint{}, logger: logger}
}

// classify picks the outcome for env and moves the state machine. It does
// not touch node data; the caller performs the work and then calls adopt.
func (r *reconciler) classify(env Envelope) Outcome {
	if env.Origin == OriginInternal {
		switch {
		case r.pending != 0 && env.Generation == r.pending:
			r.pending = 0
			r.state = StateIdle
			return OutcomeEchoSkipped
		case env.Generation != 0 && env.Generation <= r.generation:
			r.logger.Debug("dropping echo of superseded mutation",
				zap.Uint64("generation", env.Generation),
				zap.Uint64("latest", r.generation),
			)
			return OutcomeStaleSkipped
		}
		r.logger.Warn("internal envelope with unknown generation treated as external",
			zap.Uint64("generation", env.Generation))
	}

	equal, selectionOnly := r.known.diff(fingerprintOf(env.Nodes))
	switch {
	case equal:
		if r.pending != 0 {
			// The host re-sent our own last mutation as a plain snapshot.
			r.pending = 0
			r.state = StateIdle
			return OutcomeEchoSkipped
		}
		return OutcomeUnchanged
	case selectionOnly:
		r.state = StateSelectionOnlySync
		return OutcomeSelectionSynced
	case r.pending != 0:
		// A local edit is in flight: the next snapshot is taken as its
		// echo, even if it predates the edit, and local nodes are kept.
		r.logger.Debug("snapshot during local mutation treated as echo",
			zap.Uint64("pending", r.pending))
		r.pending = 0
		r.state = StateIdle
		return OutcomeEchoSkipped
	default:
		r.state = StateExternalApply
		return OutcomeApplied
	}
}

// adopt records nodes as the last known state after an external apply or a
// selection sync. A mutation still waiting for its echo stays in flight.
func (r *reconciler) adopt(nodes []Node) {
	r.known = fingerprintOf(nodes)
	if r.pending != 0 {
		r.state = StateInternalMutation
		return
	}
	r.state = StateIdle
}

// begin enters InternalMutation for a local edit
func (r *reconciler) begin() {
	r.state = StateInternalMutation
}

// abort leaves InternalMutation after a failed local edit
func (r *reconciler) abort() {
	if r.pending == 0 {
		r.state = StateIdle
	}
}

// emit stamps the result of a local edit and waits for its echo
func (r *reconciler) emit(nodes []Node) Envelope {
	r.generation++
	r.pending = r.generation
	r.known = fingerprintOf(nodes)
	r.state = StateInternalMutation
	return Envelope{
		Origin:     OriginInternal,
		Generation: r.generation,
		Nodes:      CloneNodes(nodes),
	}
}
