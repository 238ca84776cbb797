package db

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database with the real schema.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// Every pooled connection would get its own empty :memory: database.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		t.Fatal(err)
	}
	d := &DB{conn: conn, Path: ":memory:"}
	if err := d.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func strPtr(s string) *string { return &s }

func sampleNodes() []MapNode {
	return []MapNode{
		{ID: "root", Label: "Trip"},
		{ID: "a", Label: "Packing", ParentID: strPtr("root"), Direction: strPtr("right"), PosX: 250, PosY: -50, HasPosition: true},
		{ID: "b", Label: "Budget", ParentID: strPtr("root"), Direction: strPtr("left"), IsNew: true},
		{ID: "c", Label: "Tent", ParentID: strPtr("a"), Direction: strPtr("right")},
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	d := setupTestDB(t)
	if err := d.Migrate(); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestCreateAndGetMap(t *testing.T) {
	d := setupTestDB(t)
	nowMillis = func() int64 { return 1000 }
	t.Cleanup(func() { nowMillis = defaultNow })

	m, err := d.CreateMap("Trip")
	if err != nil {
		t.Fatalf("CreateMap: %v", err)
	}
	if len(m.ID) != 36 {
		t.Errorf("expected uuid id, got %q", m.ID)
	}

	got, err := d.GetMap(m.ID)
	if err != nil {
		t.Fatalf("GetMap: %v", err)
	}
	if got.Title != "Trip" || got.CreatedAt != 1000 || got.UpdatedAt != 1000 {
		t.Errorf("unexpected map: %+v", got)
	}
	if got.NodeCount != 0 {
		t.Errorf("expected 0 nodes, got %d", got.NodeCount)
	}
}

func TestGetMap_NotFound(t *testing.T) {
	d := setupTestDB(t)
	_, err := d.GetMap("missing")
	if !errors.Is(err, ErrMapNotFound) {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
}

func TestSaveMapNodes_RoundTrip(t *testing.T) {
	d := setupTestDB(t)
	m, err := d.CreateMap("Trip")
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SaveMapNodes(m.ID, sampleNodes()); err != nil {
		t.Fatalf("SaveMapNodes: %v", err)
	}

	nodes, err := d.MapNodes(m.ID)
	if err != nil {
		t.Fatalf("MapNodes: %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(nodes))
	}
	wantOrder := []string{"root", "a", "b", "c"}
	for i, n := range nodes {
		if n.ID != wantOrder[i] {
			t.Errorf("node %d: got %s, want %s", i, n.ID, wantOrder[i])
		}
		if n.SortOrder != i {
			t.Errorf("node %s: sort_order %d, want %d", n.ID, n.SortOrder, i)
		}
	}
	if nodes[0].ParentID != nil || nodes[0].Direction != nil {
		t.Errorf("root should have NULL parent and direction: %+v", nodes[0])
	}
	if !nodes[1].HasPosition || nodes[1].PosX != 250 || nodes[1].PosY != -50 {
		t.Errorf("position not preserved: %+v", nodes[1])
	}
	if !nodes[2].IsNew || *nodes[2].Direction != "left" {
		t.Errorf("flags not preserved: %+v", nodes[2])
	}

	got, err := d.GetMap(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NodeCount != 4 {
		t.Errorf("expected node count 4, got %d", got.NodeCount)
	}
}

func TestSaveMapNodes_ReplacesPreviousSet(t *testing.T) {
	d := setupTestDB(t)
	m, _ := d.CreateMap("Trip")
	if err := d.SaveMapNodes(m.ID, sampleNodes()); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveMapNodes(m.ID, sampleNodes()[:1]); err != nil {
		t.Fatal(err)
	}
	nodes, err := d.MapNodes(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].ID != "root" {
		t.Errorf("expected only root, got %+v", nodes)
	}
}

func TestSaveMapNodes_UnknownMap(t *testing.T) {
	d := setupTestDB(t)
	err := d.SaveMapNodes("missing", sampleNodes())
	if !errors.Is(err, ErrMapNotFound) {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
}

func TestSaveMapNodes_DuplicateIDRollsBack(t *testing.T) {
	d := setupTestDB(t)
	m, _ := d.CreateMap("Trip")
	if err := d.SaveMapNodes(m.ID, sampleNodes()); err != nil {
		t.Fatal(err)
	}
	dup := append(sampleNodes(), MapNode{ID: "a", Label: "again"})
	if err := d.SaveMapNodes(m.ID, dup); err == nil {
		t.Fatal("expected primary key violation")
	}
	nodes, err := d.MapNodes(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 4 {
		t.Errorf("failed save should leave the previous 4 nodes, got %d", len(nodes))
	}
}

func TestDeleteMap_CascadesNodes(t *testing.T) {
	d := setupTestDB(t)
	m, _ := d.CreateMap("Trip")
	if err := d.SaveMapNodes(m.ID, sampleNodes()); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteMap(m.ID); err != nil {
		t.Fatalf("DeleteMap: %v", err)
	}
	nodes, err := d.MapNodes(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 0 {
		t.Errorf("expected nodes to cascade, got %d", len(nodes))
	}
	if err := d.DeleteMap(m.ID); !errors.Is(err, ErrMapNotFound) {
		t.Errorf("second delete: expected ErrMapNotFound, got %v", err)
	}
}

func TestListMaps_OrderedByUpdate(t *testing.T) {
	d := setupTestDB(t)
	clock := int64(1000)
	nowMillis = func() int64 { clock++; return clock }
	t.Cleanup(func() { nowMillis = defaultNow })

	first, _ := d.CreateMap("First")
	second, _ := d.CreateMap("Second")
	if err := d.SaveMapNodes(first.ID, sampleNodes()); err != nil {
		t.Fatal(err)
	}

	maps, err := d.ListMaps()
	if err != nil {
		t.Fatal(err)
	}
	if len(maps) != 2 {
		t.Fatalf("expected 2 maps, got %d", len(maps))
	}
	if maps[0].ID != first.ID || maps[1].ID != second.ID {
		t.Errorf("expected recently saved map first, got %s then %s", maps[0].Title, maps[1].Title)
	}
}

func TestSearchMaps(t *testing.T) {
	d := setupTestDB(t)
	trip, _ := d.CreateMap("Summer trip to the coast")
	d.CreateMap("Quarterly roadmap")

	byTitle, err := d.SearchMapsByTitle("TRIP coast")
	if err != nil {
		t.Fatal(err)
	}
	if len(byTitle) != 1 || byTitle[0].ID != trip.ID {
		t.Errorf("title search: got %+v", byTitle)
	}

	byPrefix, err := d.SearchMapsByIDPrefix(trip.ID[:8], 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byPrefix) != 1 || byPrefix[0].ID != trip.ID {
		t.Errorf("prefix search: got %+v", byPrefix)
	}

	none, err := d.SearchMapsByTitle("!!")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("expected no results, got %d", len(none))
	}
}

func TestRenameMap(t *testing.T) {
	d := setupTestDB(t)
	m, _ := d.CreateMap("Draft")
	if err := d.RenameMap(m.ID, "Final"); err != nil {
		t.Fatal(err)
	}
	got, _ := d.GetMap(m.ID)
	if got.Title != "Final" {
		t.Errorf("expected Final, got %s", got.Title)
	}
	if err := d.RenameMap("missing", "x"); !errors.Is(err, ErrMapNotFound) {
		t.Errorf("expected ErrMapNotFound, got %v", err)
	}
}
