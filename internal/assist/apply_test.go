package assist

import (
	"errors"
	"testing"

	"inkmap/internal/mindmap"
)

func TestApply_RoutesThroughAddChild(t *testing.T) {
	engine := mindmap.NewEngine(mindmap.DefaultConfig())
	if _, err := engine.Load(sampleNodes()); err != nil {
		t.Fatal(err)
	}

	results := Apply(engine, []Suggestion{
		{ParentID: "A", Label: "Tent"},
		{ParentID: "ghost", Label: "Lost"},
		{ParentID: "root", Label: "Budget"},
	}, nil)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if Applied(results) != 2 {
		t.Errorf("applied = %d, want 2", Applied(results))
	}
	if !errors.Is(results[1].Err, mindmap.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound for unknown parent, got %v", results[1].Err)
	}

	nodes := engine.Nodes()
	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(nodes))
	}
	for _, n := range nodes {
		if n.ID != results[0].NodeID {
			continue
		}
		if n.Parent() != "A" || n.Direction != mindmap.DirectionRight || !n.IsNew {
			t.Errorf("suggested node not placed like a manual child: %+v", n)
		}
	}
	if err := mindmap.Validate(nodes); err != nil {
		t.Errorf("tree invalid after suggestions: %v", err)
	}
}

func TestApply_Empty(t *testing.T) {
	engine := mindmap.NewEngine(mindmap.DefaultConfig())
	if got := Apply(engine, nil, nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}
