package snake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

func newTestPlayer(id string, segments ...entity.Point) *entity.Player {
	return &entity.Player{
		ID:        id,
		Name:      id,
		Type:      entity.TypeHuman,
		Alive:     true,
		Segments:  segments,
		Direction: entity.DirectionRight,
	}
}

func TestState_UpdateGrid(t *testing.T) {
	t.Run("Grid size equals active segments plus food after rebuild", func(t *testing.T) {
		// Given: two snakes and two food items on distinct cells
		state := NewState(10)
		state.AddPlayer(newTestPlayer("a", entity.Point{X: 1, Y: 1}, entity.Point{X: 0, Y: 1}))
		state.AddPlayer(newTestPlayer("b", entity.Point{X: 5, Y: 5}))
		state.AddFood(entity.Point{X: 8, Y: 8})
		state.AddFood(entity.Point{X: 9, Y: 9})

		// When: rebuilding the grid
		state.UpdateGrid()

		// Then: every segment and every food cell is represented exactly once
		assert.Len(t, state.Grid(), 5)
	})

	t.Run("Snake segments win over food on the same cell", func(t *testing.T) {
		// Given: food underneath a snake segment
		state := NewState(10)
		state.AddPlayer(newTestPlayer("a", entity.Point{X: 2, Y: 2}))
		state.AddFood(entity.Point{X: 2, Y: 2})

		// When: rebuilding the grid
		state.UpdateGrid()

		// Then: the cell belongs to the snake
		cell := state.Grid()["2,2"]
		assert.Equal(t, entity.CellSnake, cell.Kind)
		assert.Equal(t, "a", cell.PlayerID)
	})

	t.Run("Dead players leave the grid", func(t *testing.T) {
		// Given: one live and one dead snake
		state := NewState(10)
		state.AddPlayer(newTestPlayer("alive", entity.Point{X: 1, Y: 1}))
		state.AddPlayer(newTestPlayer("dead", entity.Point{X: 3, Y: 3}))
		state.KillPlayer("dead")

		// When: rebuilding the grid
		state.UpdateGrid()

		// Then: only the live snake occupies cells
		assert.Len(t, state.Grid(), 1)
	})
}

func TestState_EntityAt(t *testing.T) {
	t.Run("Out of bounds classifies as wall", func(t *testing.T) {
		state := NewState(10)

		assert.Equal(t, entity.CellWall, state.EntityAt(entity.Point{X: -1, Y: 0}).Kind)
		assert.Equal(t, entity.CellWall, state.EntityAt(entity.Point{X: 0, Y: 10}).Kind)
	})

	t.Run("Classifies snake, food and empty cells", func(t *testing.T) {
		state := NewState(10)
		state.AddPlayer(newTestPlayer("a", entity.Point{X: 1, Y: 1}))
		state.AddFood(entity.Point{X: 2, Y: 2})

		assert.Equal(t, entity.CellSnake, state.EntityAt(entity.Point{X: 1, Y: 1}).Kind)
		assert.Equal(t, entity.CellFood, state.EntityAt(entity.Point{X: 2, Y: 2}).Kind)
		assert.Equal(t, entity.CellEmpty, state.EntityAt(entity.Point{X: 5, Y: 5}).Kind)
	})
}

func TestState_GrowPlayer(t *testing.T) {
	t.Run("Score and growth queue both increase by the amount", func(t *testing.T) {
		// Given: a player with no score
		state := NewState(10)
		state.AddPlayer(newTestPlayer("a", entity.Point{X: 1, Y: 1}))

		// When: crediting a food pickup worth three
		state.GrowPlayer("a", 3)

		// Then: both counters moved together
		player, ok := state.Player("a")
		require.True(t, ok)
		assert.Equal(t, 3, player.Score)
		assert.Equal(t, 3, player.GrowthQueue)
	})
}

func TestState_RoundTransitions(t *testing.T) {
	t.Run("BeginWaiting advances the round and clears food", func(t *testing.T) {
		// Given: an active round with food on the board
		state := NewState(10)
		state.AddFood(entity.Point{X: 1, Y: 1})
		state.BeginRound()

		// When: returning to waiting
		state.BeginWaiting()

		// Then: the next round is staged with a clean board
		assert.Equal(t, RoundWaiting, state.RoundState())
		assert.Equal(t, 2, state.RoundNumber())
		assert.Zero(t, state.FoodCount())
	})

	t.Run("ResetMatch clears scores and restarts at round one", func(t *testing.T) {
		// Given: a finished match with scores on the board
		state := NewState(10)
		state.AddPlayer(newTestPlayer("a", entity.Point{X: 1, Y: 1}))
		state.GrowPlayer("a", 9)
		state.BeginWaiting()
		state.BeginWaiting()

		// When: resetting the match
		state.ResetMatch()

		// Then: scores are gone and the round counter is back to one
		player, _ := state.Player("a")
		assert.Zero(t, player.Score)
		assert.Equal(t, 1, state.RoundNumber())
		assert.Equal(t, RoundWaiting, state.RoundState())
	})
}

func TestState_MatchWinners(t *testing.T) {
	t.Run("Sole max score wins alone", func(t *testing.T) {
		state := NewState(10)
		state.AddPlayer(newTestPlayer("a", entity.Point{X: 1, Y: 1}))
		state.AddPlayer(newTestPlayer("b", entity.Point{X: 2, Y: 2}))
		state.GrowPlayer("a", 5)

		winners := state.MatchWinners()

		require.Len(t, winners, 1)
		assert.Equal(t, "a", winners[0].ID)
	})

	t.Run("Equal scores tie with more than one winner", func(t *testing.T) {
		state := NewState(10)
		state.AddPlayer(newTestPlayer("a", entity.Point{X: 1, Y: 1}))
		state.AddPlayer(newTestPlayer("b", entity.Point{X: 2, Y: 2}))
		state.GrowPlayer("a", 5)
		state.GrowPlayer("b", 5)

		winners := state.MatchWinners()

		assert.Len(t, winners, 2)
	})
}
