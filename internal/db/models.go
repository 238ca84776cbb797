package db

// Map represents a row in the mindmaps table
type Map struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"` // Unix millis
	UpdatedAt int64  `json:"updated_at"` // Unix millis
	NodeCount int    `json:"node_count"`
}

// MapNode represents a row in the map_nodes table
type MapNode struct {
	ID          string  `json:"id"`
	MapID       string  `json:"map_id"`
	Label       string  `json:"label"`
	ParentID    *string `json:"parent_id"`
	Direction   *string `json:"direction"` // "left", "right", NULL for the root
	PosX        float64 `json:"pos_x"`
	PosY        float64 `json:"pos_y"`
	HasPosition bool    `json:"has_position"`
	IsNew       bool    `json:"is_new"`
	SortOrder   int     `json:"sort_order"`
}
