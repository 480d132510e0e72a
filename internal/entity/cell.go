package entity

// CellKind classifies what occupies a board cell.
type CellKind string

const (
	CellEmpty CellKind = "empty"
	CellSnake CellKind = "snake"
	CellFood  CellKind = "food"
	CellWall  CellKind = "wall"
)

// Cell describes the content of one board cell. Cells are derived from the
// authoritative player and food state and rebuilt every tick, never mutated
// on their own.
type Cell struct {
	Kind     CellKind `json:"kind"`
	PlayerID string   `json:"player_id,omitempty"`
	Color    string   `json:"color,omitempty"`
}

// IsEmpty - reports whether nothing occupies the cell.
func (that Cell) IsEmpty() bool {
	return that.Kind == CellEmpty
}
