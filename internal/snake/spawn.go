package snake

import (
	"math/rand"

	"github.com/rocketscienceinc/snake-arena-backend/internal/apperror"
	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

// spawnColumnInset keeps spawn columns far enough from the wall that an
// initial body of a few segments fits on the board.
const spawnColumnInset = 2

// Spawner owns all placement decisions: deterministic spawn layouts for
// players and initial food, and uniform random selection over free cells.
type Spawner struct {
	rng *rand.Rand
}

// NewSpawner - creates a spawner drawing from the given source.
func NewSpawner(rng *rand.Rand) *Spawner {
	return &Spawner{rng: rng}
}

// PlayerSpawn - returns the spawn point and facing for the player occupying
// the given join slot. Slots alternate between a left and a right column,
// rows descending with every pair, and always face away from the near wall.
func (that *Spawner) PlayerSpawn(slot, gridSize, capacity int) (entity.Point, entity.Direction) {
	rowsPerSide := capacity / 2
	if rowsPerSide < 1 {
		rowsPerSide = 1
	}

	rowSpacing := gridSize / rowsPerSide
	if rowSpacing < 1 {
		rowSpacing = 1
	}

	row := (slot / 2) * rowSpacing
	if row >= gridSize {
		row = gridSize - 1
	}

	if slot%2 == 0 {
		return entity.Point{X: spawnColumnInset, Y: row}, entity.DirectionRight
	}

	return entity.Point{X: gridSize - 1 - spawnColumnInset, Y: row}, entity.DirectionLeft
}

// InitialFoodLayout - returns the deterministic staggered single-column
// layout for round-start food, spaced evenly by count.
func (that *Spawner) InitialFoodLayout(gridSize, count int) []entity.Point {
	if count < 1 {
		return nil
	}

	spacing := gridSize / count
	if spacing < 1 {
		spacing = 1
	}

	column := gridSize / 2

	positions := make([]entity.Point, 0, count)
	for i := 0; i < count; i++ {
		y := i * spacing
		if y >= gridSize {
			y = gridSize - 1
		}

		positions = append(positions, entity.Point{X: column + i%2, Y: y})
	}

	return positions
}

// RandomFreeCell - picks one free cell uniformly at random: count the free
// cells, draw one index, then scan row-major counting only free cells until
// the index is reached. Every free cell ends up equally likely, with no
// first-fit bias.
//
// Returns apperror.ErrNoAvailablePosition when the board is saturated. That
// is a configuration bug (capacity margins should make it impossible) and
// callers must abort the placement.
func (that *Spawner) RandomFreeCell(state *State) (entity.Point, error) {
	gridSize := state.GridSize()

	free := 0
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			if !state.IsOccupied(entity.Point{X: x, Y: y}) {
				free++
			}
		}
	}

	if free <= 0 {
		return entity.Point{}, apperror.ErrNoAvailablePosition
	}

	target := that.rng.Intn(free)

	index := 0
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			p := entity.Point{X: x, Y: y}
			if state.IsOccupied(p) {
				continue
			}

			if index == target {
				return p, nil
			}
			index++
		}
	}

	// Unreachable while the free count above is accurate.
	return entity.Point{}, apperror.ErrNoAvailablePosition
}
