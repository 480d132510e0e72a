package snake

import (
	"container/heap"
	"math/rand"
	"sort"

	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

// ManualMover is the move selection for human players: it keeps whatever
// direction the input buffer already applied.
type ManualMover struct{}

// NextDirection - returns the player's current direction unchanged.
func (that *ManualMover) NextDirection(_ entity.World, player *entity.Player) entity.Direction {
	return player.Direction
}

// AStarMover drives a CPU player toward the nearest food with A* search.
// The computed path is cached and reused across ticks until the board
// invalidates it. One instance belongs to exactly one player.
type AStarMover struct {
	rng  *rand.Rand
	path []entity.Point
}

// NewAStarMover - creates a mover drawing fallback randomness from rng.
func NewAStarMover(rng *rand.Rand) *AStarMover {
	return &AStarMover{rng: rng}
}

// NextDirection - picks the CPU player's move for this logical step.
//
// The cached path is revalidated first: it must still start adjacent to the
// head, end on a cell that is still food, and cross only empty cells.
// Invalid or missing paths are recomputed toward the nearest food by
// manhattan distance. Whatever step comes out is then checked against every
// other active player's head extrapolated one tick; a predicted overlap
// discards the path and falls back to a random safe direction.
func (that *AStarMover) NextDirection(world entity.World, player *entity.Player) entity.Direction {
	head := player.Head()

	if !that.pathStillValid(world, head) {
		that.path = that.computePath(world, head)
	}

	if len(that.path) > 0 {
		next := that.path[0]
		if that.isPredictedOccupied(world, player, next) {
			that.path = nil
			return that.randomSafeDirection(world, player, directionTo(head, next))
		}

		that.path = that.path[1:]

		return directionTo(head, next)
	}

	return that.randomSafeDirection(world, player, "")
}

// pathStillValid - checks the cached path against the current board.
func (that *AStarMover) pathStillValid(world entity.World, head entity.Point) bool {
	if len(that.path) == 0 {
		return false
	}

	if head.ManhattanTo(that.path[0]) != 1 {
		return false
	}

	last := len(that.path) - 1
	if world.EntityAt(that.path[last]).Kind != entity.CellFood {
		return false
	}

	for _, p := range that.path[:last] {
		if !world.EntityAt(p).IsEmpty() {
			return false
		}
	}

	return true
}

// computePath - targets food items nearest first and returns the first path
// A* finds, excluding the head cell itself. Nil when every search exhausts.
func (that *AStarMover) computePath(world entity.World, head entity.Point) []entity.Point {
	foods := world.FoodPositions()
	sort.Slice(foods, func(i, j int) bool {
		return head.ManhattanTo(foods[i]) < head.ManhattanTo(foods[j])
	})

	for _, food := range foods {
		if path := findPath(world, head, food); len(path) > 0 {
			return path
		}
	}

	return nil
}

// isPredictedOccupied - reports whether any other active player's head is
// expected on the cell next tick, extrapolating their current direction.
func (that *AStarMover) isPredictedOccupied(world entity.World, player *entity.Player, cell entity.Point) bool {
	for _, other := range world.ActivePlayers() {
		if other.ID == player.ID {
			continue
		}

		if other.NextHeadPosition() == cell {
			return true
		}
	}

	return false
}

// randomSafeDirection - picks a random direction whose next cell is in
// bounds, not occupied by a snake, and not predicted to hold another head.
// The rejected direction, if any, is excluded up front. With no safe option
// left the current direction comes back; the player is not savable then.
func (that *AStarMover) randomSafeDirection(world entity.World, player *entity.Player, rejected entity.Direction) entity.Direction {
	var safe []entity.Direction

	for _, dir := range entity.Directions {
		if dir == rejected || dir == player.Direction.Opposite() {
			continue
		}

		next := player.Head().Add(dir.Offset())

		cell := world.EntityAt(next)
		if cell.Kind == entity.CellWall || cell.Kind == entity.CellSnake {
			continue
		}

		if that.isPredictedOccupied(world, player, next) {
			continue
		}

		safe = append(safe, dir)
	}

	if len(safe) == 0 {
		return player.Direction
	}

	return safe[that.rng.Intn(len(safe))]
}

// directionTo - returns the cardinal step from a cell to an adjacent cell.
func directionTo(from, to entity.Point) entity.Direction {
	switch {
	case to.X > from.X:
		return entity.DirectionRight
	case to.X < from.X:
		return entity.DirectionLeft
	case to.Y > from.Y:
		return entity.DirectionDown
	default:
		return entity.DirectionUp
	}
}

// pathNode is one A* search node.
type pathNode struct {
	point  entity.Point
	g      int
	f      int
	parent *pathNode
	index  int
}

// nodeQueue is the open set, a min-heap ordered by f = g + h.
type nodeQueue []*pathNode

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool { return q[i].f < q[j].f }

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x any) {
	node := x.(*pathNode)
	node.index = len(*q)
	*q = append(*q, node)
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*q = old[:n-1]

	return node
}

// findPath - A* over the grid with a manhattan heuristic and 4-directional
// steps. Obstacles are any non-empty cell other than the target; walls fall
// out of neighbor generation. The returned path excludes the start cell and
// ends on the target, or is nil when the search exhausts.
func findPath(world entity.World, start, target entity.Point) []entity.Point {
	startNode := &pathNode{point: start, g: 0, f: start.ManhattanTo(target)}

	openSet := make(nodeQueue, 0)
	heap.Push(&openSet, startNode)

	gScore := map[string]int{start.Key(): 0}
	closed := make(map[string]bool)

	for openSet.Len() > 0 {
		current := heap.Pop(&openSet).(*pathNode)

		if current.point == target {
			return reconstructPath(current)
		}

		closed[current.point.Key()] = true

		for _, dir := range entity.Directions {
			neighbor := current.point.Add(dir.Offset())
			key := neighbor.Key()

			if closed[key] {
				continue
			}

			cell := world.EntityAt(neighbor)
			if cell.Kind == entity.CellWall {
				continue
			}

			if !cell.IsEmpty() && neighbor != target {
				continue
			}

			tentative := current.g + 1

			if known, ok := gScore[key]; ok && tentative >= known {
				continue
			}

			gScore[key] = tentative
			heap.Push(&openSet, &pathNode{
				point:  neighbor,
				g:      tentative,
				f:      tentative + neighbor.ManhattanTo(target),
				parent: current,
			})
		}
	}

	return nil
}

func reconstructPath(node *pathNode) []entity.Point {
	var reversed []entity.Point
	for node.parent != nil {
		reversed = append(reversed, node.point)
		node = node.parent
	}

	path := make([]entity.Point, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}

	return path
}
