package snake

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/snake-arena-backend/internal/apperror"
	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

func newTestSpawner() *Spawner {
	return NewSpawner(rand.New(rand.NewSource(42))) //nolint: gosec // deterministic test randomness
}

func TestSpawner_PlayerSpawn(t *testing.T) {
	t.Run("Even slots spawn on the left facing right", func(t *testing.T) {
		spawner := newTestSpawner()

		spawn, facing := spawner.PlayerSpawn(0, 30, 10)

		assert.Equal(t, spawnColumnInset, spawn.X)
		assert.Equal(t, entity.DirectionRight, facing)
	})

	t.Run("Odd slots spawn on the right facing left", func(t *testing.T) {
		spawner := newTestSpawner()

		spawn, facing := spawner.PlayerSpawn(1, 30, 10)

		assert.Equal(t, 30-1-spawnColumnInset, spawn.X)
		assert.Equal(t, entity.DirectionLeft, facing)
	})

	t.Run("Rows descend with each pair of slots", func(t *testing.T) {
		spawner := newTestSpawner()

		first, _ := spawner.PlayerSpawn(0, 30, 10)
		third, _ := spawner.PlayerSpawn(2, 30, 10)
		fifth, _ := spawner.PlayerSpawn(4, 30, 10)

		assert.Less(t, first.Y, third.Y)
		assert.Less(t, third.Y, fifth.Y)
	})

	t.Run("Every slot up to capacity stays in bounds", func(t *testing.T) {
		spawner := newTestSpawner()

		for slot := 0; slot < 10; slot++ {
			spawn, _ := spawner.PlayerSpawn(slot, 30, 10)
			assert.GreaterOrEqual(t, spawn.X, 0)
			assert.Less(t, spawn.X, 30)
			assert.GreaterOrEqual(t, spawn.Y, 0)
			assert.Less(t, spawn.Y, 30)
		}
	})
}

func TestSpawner_InitialFoodLayout(t *testing.T) {
	t.Run("Lays out the requested count on distinct in-bounds cells", func(t *testing.T) {
		spawner := newTestSpawner()

		positions := spawner.InitialFoodLayout(30, 5)

		require.Len(t, positions, 5)

		seen := make(map[string]bool)
		for _, p := range positions {
			assert.False(t, seen[p.Key()], "cells must not repeat")
			seen[p.Key()] = true
			assert.GreaterOrEqual(t, p.Y, 0)
			assert.Less(t, p.Y, 30)
		}
	})
}

func TestSpawner_RandomFreeCell(t *testing.T) {
	t.Run("Returns an unoccupied cell", func(t *testing.T) {
		// Given: a small board with one snake on it
		state := NewState(4)
		state.AddPlayer(newTestPlayer("a", entity.Point{X: 0, Y: 0}, entity.Point{X: 1, Y: 0}))
		spawner := newTestSpawner()

		// When: sampling many times
		for i := 0; i < 50; i++ {
			p, err := spawner.RandomFreeCell(state)

			// Then: the cell is always free
			require.NoError(t, err)
			assert.False(t, state.IsOccupied(p))
		}
	})

	t.Run("Samples free cells uniformly", func(t *testing.T) {
		// Given: a 3x3 board with the center occupied, leaving 8 free cells
		state := NewState(3)
		state.AddPlayer(newTestPlayer("a", entity.Point{X: 1, Y: 1}))
		spawner := newTestSpawner()

		// When: sampling many times
		const trials = 8000
		counts := make(map[string]int)
		for i := 0; i < trials; i++ {
			p, err := spawner.RandomFreeCell(state)
			require.NoError(t, err)
			counts[p.Key()]++
		}

		// Then: every free cell shows up near the expected 1/8 frequency
		require.Len(t, counts, 8)
		expected := trials / 8
		for key, count := range counts {
			assert.InDelta(t, expected, count, float64(expected)/4, "cell %s drawn %d times", key, count)
		}
	})

	t.Run("Saturated grid fails with ErrNoAvailablePosition", func(t *testing.T) {
		// Given: a 2x2 board fully covered by one snake
		state := NewState(2)
		state.AddPlayer(newTestPlayer("a",
			entity.Point{X: 0, Y: 0},
			entity.Point{X: 1, Y: 0},
			entity.Point{X: 0, Y: 1},
			entity.Point{X: 1, Y: 1},
		))
		spawner := newTestSpawner()

		// When: asking for a free cell
		_, err := spawner.RandomFreeCell(state)

		// Then: the placement fails hard
		require.ErrorIs(t, err, apperror.ErrNoAvailablePosition)
	})
}
