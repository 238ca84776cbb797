package mindmap

import (
	"fmt"

	"inkmap/internal/db"
)

// Document is the on-disk JSON form of a mind-map used by import, export and
// watch.
type Document struct {
	Title string `json:"title"`
	Nodes []Node `json:"nodes"`
}

// SnapshotFromDB loads the nodes of a stored mind-map
func SnapshotFromDB(d *db.DB, mapID string) ([]Node, error) {
	rows, err := d.MapNodes(mapID)
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", mapID, err)
	}
	nodes := make([]Node, 0, len(rows))
	for _, r := range rows {
		n := Node{
			ID:    r.ID,
			Label: r.Label,
			IsNew: r.IsNew,
		}
		if r.ParentID != nil {
			n.ParentID = StrPtr(*r.ParentID)
		}
		if r.Direction != nil {
			n.Direction = Direction(*r.Direction)
		}
		if r.HasPosition {
			n.Position = &Position{X: r.PosX, Y: r.PosY}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// SaveSnapshot replaces the stored nodes of a mind-map. Selection is view
// state and is not persisted.
func SaveSnapshot(d *db.DB, mapID string, nodes []Node) error {
	rows := make([]db.MapNode, 0, len(nodes))
	for _, n := range nodes {
		r := db.MapNode{
			ID:    n.ID,
			MapID: mapID,
			Label: n.Label,
			IsNew: n.IsNew,
		}
		if n.ParentID != nil {
			r.ParentID = StrPtr(*n.ParentID)
		}
		if n.Direction != "" {
			r.Direction = StrPtr(string(n.Direction))
		}
		if n.Position != nil {
			r.PosX, r.PosY, r.HasPosition = n.Position.X, n.Position.Y, true
		}
		rows = append(rows, r)
	}
	if err := d.SaveMapNodes(mapID, rows); err != nil {
		return fmt.Errorf("saving map %s: %w", mapID, err)
	}
	return nil
}
