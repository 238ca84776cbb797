package db

import (
	"fmt"
)

// scanMapNode scans a row into a MapNode. The row must have all 10 columns in standard order.
func scanMapNode(scanner interface{ Scan(dest ...any) error }) (MapNode, error) {
	var n MapNode
	err := scanner.Scan(
		&n.ID, &n.MapID, &n.Label, &n.ParentID, &n.Direction,
		&n.PosX, &n.PosY, &n.HasPosition, &n.IsNew, &n.SortOrder,
	)
	return n, err
}

// MapNodes returns the nodes of a mind-map in saved order
func (d *DB) MapNodes(mapID string) ([]MapNode, error) {
	rows, err := d.conn.Query(`
		SELECT id, map_id, label, parent_id, direction,
		       pos_x, pos_y, has_position, is_new, sort_order
		FROM map_nodes WHERE map_id = ? ORDER BY sort_order, id
	`, mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []MapNode
	for rows.Next() {
		n, err := scanMapNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// SaveMapNodes replaces the node set of a mind-map in one transaction and
// bumps its updated_at. sort_order records the slice order.
func (d *DB) SaveMapNodes(mapID string, nodes []MapNode) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE mindmaps SET updated_at = ? WHERE id = ?`, nowMillis(), mapID)
	if err != nil {
		return fmt.Errorf("touching map: %w", err)
	}
	if err := requireRow(res, mapID); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM map_nodes WHERE map_id = ?`, mapID); err != nil {
		return fmt.Errorf("clearing nodes: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO map_nodes (id, map_id, label, parent_id, direction,
		                       pos_x, pos_y, has_position, is_new, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range nodes {
		_, err := stmt.Exec(
			n.ID, mapID, n.Label, n.ParentID, n.Direction,
			n.PosX, n.PosY, n.HasPosition, n.IsNew, i,
		)
		if err != nil {
			return fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing nodes: %w", err)
	}
	return nil
}
