package entity

import "errors"

const (
	TypeHuman = "human"
	TypeCPU   = "cpu"
)

var ErrReversalNotAllowed = errors.New("direction reverses current movement")

// World is the read-only view of a running game that move selection is
// allowed to see. The simulation state implements it.
type World interface {
	GridSize() int
	EntityAt(p Point) Cell
	FoodPositions() []Point
	ActivePlayers() []*Player
}

// Mover selects the next direction for a player each logical step. Human
// players carry a manual mover that keeps whatever the input buffer set;
// CPU players carry a pathfinding mover, one instance per player.
type Mover interface {
	NextDirection(world World, player *Player) Direction
}

// Player is one snake in a room. It is owned exclusively by the room's game
// state; nothing outside the room's loop goroutine mutates it.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	Type     string `json:"type,omitempty"`
	Score    int    `json:"score"`
	GamesWon int    `json:"games_won"`
	Alive    bool   `json:"alive"`

	// Segments holds the snake body, head first. It is never empty while
	// the player is part of a round.
	Segments []Point `json:"segments"`

	Direction        Direction `json:"direction"`
	PendingDirection Direction `json:"-"`

	// GrowthQueue counts extra segments still owed from eaten food.
	GrowthQueue int `json:"-"`

	Mover Mover `json:"-"`
}

// IsCPU - reports whether the player is machine controlled.
func (that *Player) IsCPU() bool {
	return that.Type == TypeCPU
}

// Head - returns the head segment.
func (that *Player) Head() Point {
	return that.Segments[0]
}

// NextHeadPosition - returns where the head lands after one step in the
// current direction.
func (that *Player) NextHeadPosition() Point {
	return that.Head().Add(that.Direction.Offset())
}

// SetPendingDirection - buffers a direction change for the next step. An
// exact reversal of the current direction is rejected so a snake can never
// fold into its own neck mid-tick.
func (that *Player) SetPendingDirection(dir Direction) error {
	if dir == that.Direction.Opposite() {
		return ErrReversalNotAllowed
	}

	that.PendingDirection = dir

	return nil
}

// ApplyPendingDirection - promotes the buffered direction, if any.
func (that *Player) ApplyPendingDirection() {
	if that.PendingDirection == "" {
		return
	}

	if that.PendingDirection != that.Direction.Opposite() {
		that.Direction = that.PendingDirection
	}

	that.PendingDirection = ""
}

// Advance - moves the player one step in its current direction. The tail is
// kept when growth is owed, which is how eaten food turns into length.
func (that *Player) Advance() {
	head := that.NextHeadPosition()
	that.Segments = append([]Point{head}, that.Segments...)

	if that.GrowthQueue > 0 {
		that.GrowthQueue--
		return
	}

	that.Segments = that.Segments[:len(that.Segments)-1]
}

// Grow - enqueues owed segments.
func (that *Player) Grow(amount int) {
	if amount > 0 {
		that.GrowthQueue += amount
	}
}

// OccupiesCell - reports whether any segment sits on the point.
func (that *Player) OccupiesCell(p Point) bool {
	for _, seg := range that.Segments {
		if seg == p {
			return true
		}
	}

	return false
}

// ResetForRound - places the player at a fresh spawn with the given facing
// and body length. Score and games won survive; round-local state does not.
func (that *Player) ResetForRound(spawn Point, facing Direction, length int) {
	if length < 1 {
		length = 1
	}

	tailward := facing.Opposite().Offset()

	segments := make([]Point, 0, length)
	for i := 0; i < length; i++ {
		segments = append(segments, Point{X: spawn.X + tailward.X*i, Y: spawn.Y + tailward.Y*i})
	}

	that.Segments = segments
	that.Direction = facing
	that.PendingDirection = ""
	that.GrowthQueue = 0
	that.Alive = true
}
