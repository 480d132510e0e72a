package entity

import "strconv"

// Point is a cell coordinate on the board. Points are compared by value and
// keyed as "x,y" when used as map keys.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key - returns the canonical map key for the point.
func (that Point) Key() string {
	return strconv.Itoa(that.X) + "," + strconv.Itoa(that.Y)
}

// Add - returns the point translated by the given offset.
func (that Point) Add(offset Point) Point {
	return Point{X: that.X + offset.X, Y: that.Y + offset.Y}
}

// ManhattanTo - returns the manhattan distance to another point.
func (that Point) ManhattanTo(other Point) int {
	return abs(that.X-other.X) + abs(that.Y-other.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

// Direction is one of the four cardinal movement directions.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Directions lists every valid direction in a stable order.
var Directions = []Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

// IsValid - reports whether the direction is one of the four cardinals.
func (that Direction) IsValid() bool {
	switch that {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return true
	default:
		return false
	}
}

// Opposite - returns the reverse direction.
func (that Direction) Opposite() Direction {
	switch that {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	case DirectionLeft:
		return DirectionRight
	case DirectionRight:
		return DirectionLeft
	default:
		return that
	}
}

// Offset - returns the unit offset one step in the direction. The board
// origin is the top-left corner, so "up" decreases Y.
func (that Direction) Offset() Point {
	switch that {
	case DirectionUp:
		return Point{X: 0, Y: -1}
	case DirectionDown:
		return Point{X: 0, Y: 1}
	case DirectionLeft:
		return Point{X: -1, Y: 0}
	case DirectionRight:
		return Point{X: 1, Y: 0}
	default:
		return Point{}
	}
}
