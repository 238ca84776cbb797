package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// nowMillis is swapped in tests that need stable timestamps
var nowMillis = defaultNow

func defaultNow() int64 { return time.Now().UnixMilli() }

const mapColumns = `
	m.id, m.title, m.created_at, m.updated_at,
	(SELECT COUNT(*) FROM map_nodes n WHERE n.map_id = m.id)`

// scanMap scans a row into a Map. The row must have the mapColumns in order.
func scanMap(scanner interface{ Scan(dest ...any) error }) (Map, error) {
	var m Map
	err := scanner.Scan(&m.ID, &m.Title, &m.CreatedAt, &m.UpdatedAt, &m.NodeCount)
	return m, err
}

func (d *DB) queryMaps(query string, args ...any) ([]Map, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var maps []Map
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// CreateMap inserts an empty mind-map and returns it
func (d *DB) CreateMap(title string) (*Map, error) {
	now := nowMillis()
	m := &Map{ID: uuid.NewString(), Title: title, CreatedAt: now, UpdatedAt: now}
	_, err := d.conn.Exec(
		`INSERT INTO mindmaps (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		m.ID, m.Title, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating map: %w", err)
	}
	return m, nil
}

// GetMap returns a single mind-map by id, or ErrMapNotFound
func (d *DB) GetMap(id string) (*Map, error) {
	row := d.conn.QueryRow(`SELECT `+mapColumns+` FROM mindmaps m WHERE m.id = ?`, id)
	m, err := scanMap(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrMapNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMaps returns all mind-maps, most recently updated first
func (d *DB) ListMaps() ([]Map, error) {
	return d.queryMaps(`SELECT ` + mapColumns + ` FROM mindmaps m ORDER BY m.updated_at DESC, m.id`)
}

// SearchMapsByIDPrefix finds mind-maps whose id starts with the given prefix.
func (d *DB) SearchMapsByIDPrefix(prefix string, limit int) ([]Map, error) {
	return d.queryMaps(
		`SELECT `+mapColumns+` FROM mindmaps m WHERE m.id LIKE ? ORDER BY m.id LIMIT ?`,
		prefix+"%", limit,
	)
}

// SearchMapsByTitle finds mind-maps whose title contains every search term,
// case-insensitively. Returns an empty slice if the query has no usable terms.
func (d *DB) SearchMapsByTitle(query string) ([]Map, error) {
	terms := SearchTerms(query)
	if len(terms) == 0 {
		return []Map{}, nil
	}
	where := ""
	args := make([]any, 0, len(terms))
	for i, term := range terms {
		if i > 0 {
			where += " AND "
		}
		where += "m.title LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(term)+"%")
	}
	return d.queryMaps(`SELECT `+mapColumns+` FROM mindmaps m WHERE `+where+` ORDER BY m.updated_at DESC`, args...)
}

// RenameMap changes a mind-map title
func (d *DB) RenameMap(id, title string) error {
	res, err := d.conn.Exec(`UPDATE mindmaps SET title = ?, updated_at = ? WHERE id = ?`, title, nowMillis(), id)
	if err != nil {
		return fmt.Errorf("renaming map: %w", err)
	}
	return requireRow(res, id)
}

// DeleteMap removes a mind-map and, through the foreign key, its nodes
func (d *DB) DeleteMap(id string) error {
	res, err := d.conn.Exec(`DELETE FROM mindmaps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting map: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrMapNotFound)
	}
	return nil
}
