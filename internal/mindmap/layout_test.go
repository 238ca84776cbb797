package mindmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePositions_Empty(t *testing.T) {
	res, err := ComputePositions(nil, "")
	require.NoError(t, err)
	assert.Empty(t, res.Nodes)
	assert.Empty(t, SynthesizeEdges(res.Nodes))
}

func TestComputePositions_SingleRoot(t *testing.T) {
	res, err := ComputePositions([]Node{{ID: "r"}}, "")
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, &Position{X: 0, Y: 0}, res.Nodes[0].Position)
	assert.Empty(t, SynthesizeEdges(res.Nodes))
}

func TestComputePositions_TwoLevelRightBranch(t *testing.T) {
	nodes := []Node{
		{ID: "root"},
		{ID: "A", ParentID: StrPtr("root"), Direction: DirectionRight},
		{ID: "B", ParentID: StrPtr("A"), Direction: DirectionRight},
	}
	res, err := ComputePositions(nodes, "root")
	require.NoError(t, err)
	got := byID(res.Nodes)

	assert.Equal(t, got["A"].Direction, got["B"].Direction)
	assert.Equal(t, 250.0, got["A"].Position.X)
	assert.Equal(t, 500.0, got["B"].Position.X)

	edges := SynthesizeEdges(res.Nodes)
	require.Len(t, edges, 2)
	for _, e := range edges {
		assert.Equal(t, AnchorRight, e.SourceAnchor)
		assert.Equal(t, AnchorLeft, e.TargetAnchor)
	}
	assert.Equal(t, "e-root-A", edges[0].ID)
	assert.Equal(t, "e-A-B", edges[1].ID)
}

func TestComputePositions_VerticalCentering(t *testing.T) {
	res, err := ComputePositions(sampleTree(), "")
	require.NoError(t, err)
	got := byID(res.Nodes)

	assert.Equal(t, Position{X: 0, Y: 0}, *got["root"].Position)
	assert.Equal(t, Position{X: 250, Y: -50}, *got["A"].Position)
	assert.Equal(t, Position{X: 500, Y: -50}, *got["B"].Position)
	assert.Equal(t, Position{X: 250, Y: 50}, *got["D"].Position)
	assert.Equal(t, Position{X: -250, Y: 0}, *got["C"].Position)
}

func TestComputePositions_Deterministic(t *testing.T) {
	first, err := ComputePositions(sampleTree(), "")
	require.NoError(t, err)
	second, err := ComputePositions(sampleTree(), "")
	require.NoError(t, err)
	assert.Equal(t, first.Nodes, second.Nodes)

	// Laying out the output again does not move anything.
	third, err := ComputePositions(first.Nodes, "")
	require.NoError(t, err)
	assert.Equal(t, first.Nodes, third.Nodes)
}

func TestComputePositions_IgnoresStaleDirections(t *testing.T) {
	nodes := sampleTree()
	nodes[2].Direction = DirectionLeft // B under a right-side A
	res, err := ComputePositions(nodes, "")
	require.NoError(t, err)
	assert.Equal(t, 500.0, byID(res.Nodes)["B"].Position.X)
}

func TestComputePositions_DropsUnreachable(t *testing.T) {
	nodes := append(sampleTree(), Node{ID: "orphan", ParentID: StrPtr("ghost"), Direction: DirectionRight})
	res, err := ComputePositions(nodes, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan"}, res.Dropped)

	ids := make(map[string]bool)
	for _, n := range res.Nodes {
		ids[n.ID] = true
	}
	for _, n := range res.Nodes {
		if n.ParentID != nil {
			assert.True(t, ids[*n.ParentID], "parent of %s missing from output", n.ID)
		}
	}
}

func TestComputePositions_MissingRoot(t *testing.T) {
	nodes := []Node{{ID: "a", ParentID: StrPtr("b"), Direction: DirectionRight}}
	_, err := ComputePositions(nodes, "")
	assert.True(t, errors.Is(err, ErrRootNotFound))

	_, err = ComputePositions(sampleTree(), "A")
	var topo *TopologyError
	assert.True(t, errors.As(err, &topo))
}

func TestComputePositions_SiblingOrderFollowsY(t *testing.T) {
	nodes := []Node{
		{ID: "root"},
		{ID: "A", ParentID: StrPtr("root"), Direction: DirectionRight, Position: &Position{X: 250, Y: 80}},
		{ID: "B", ParentID: StrPtr("root"), Direction: DirectionRight, Position: &Position{X: 250, Y: -80}},
	}
	res, err := ComputePositions(nodes, "")
	require.NoError(t, err)
	got := byID(res.Nodes)
	assert.Less(t, got["B"].Position.Y, got["A"].Position.Y)
}

func TestComputePositions_CustomConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HorizontalSpacing = 100
	cfg.VerticalSpacing = 20
	cfg.Origin = Position{X: 10, Y: 10}
	res, err := NewLayoutEngine(cfg, nil).ComputePositions(sampleTree(), "")
	require.NoError(t, err)
	got := byID(res.Nodes)
	assert.Equal(t, Position{X: 10, Y: 10}, *got["root"].Position)
	assert.Equal(t, Position{X: 210, Y: 0}, *got["B"].Position)
	assert.Equal(t, Position{X: -90, Y: 10}, *got["C"].Position)
}

func TestLevelGroups(t *testing.T) {
	levels, err := LevelGroups(sampleTree(), "")
	require.NoError(t, err)
	assert.Equal(t, []LevelGroup{
		{Depth: 0, NodeIDs: []string{"root"}},
		{Side: DirectionLeft, Depth: 1, NodeIDs: []string{"C"}},
		{Side: DirectionRight, Depth: 1, NodeIDs: []string{"A", "D"}},
		{Side: DirectionRight, Depth: 2, NodeIDs: []string{"B"}},
	}, levels)
}

func TestSynthesizeEdges_Idempotent(t *testing.T) {
	nodes := sampleTree()
	first := SynthesizeEdges(nodes)
	second := SynthesizeEdges(nodes)
	assert.Equal(t, first, second)
	assert.Len(t, first, 4)

	for _, e := range first {
		if e.Target == "C" {
			assert.Equal(t, AnchorLeft, e.SourceAnchor)
			assert.Equal(t, AnchorRight, e.TargetAnchor)
			assert.Equal(t, DirectionLeft, e.Direction)
		}
	}
}
