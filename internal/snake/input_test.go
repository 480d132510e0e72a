package snake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/snake-arena-backend/internal/apperror"
	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

func TestInputBuffer(t *testing.T) {
	t.Run("A full queue rejects the new intent and keeps the queued ones", func(t *testing.T) {
		// Given: a buffer filled to its depth
		buffer := NewInputBuffer(3)
		base := time.Now()
		for i := 0; i < 3; i++ {
			require.True(t, buffer.Push("a", Intent{Direction: entity.DirectionUp, Timestamp: base.Add(time.Duration(i) * time.Millisecond)}))
		}

		// When: one more intent arrives
		ok := buffer.Push("a", Intent{Direction: entity.DirectionLeft, Timestamp: base.Add(time.Second)})

		// Then: the push is rejected and the queue length is unchanged
		assert.False(t, ok)
		assert.Equal(t, 3, buffer.Len("a"))
	})

	t.Run("Pop returns the oldest intent by timestamp", func(t *testing.T) {
		// Given: intents pushed out of timestamp order
		buffer := NewInputBuffer(3)
		base := time.Now()
		buffer.Push("a", Intent{Direction: entity.DirectionLeft, Timestamp: base.Add(20 * time.Millisecond)})
		buffer.Push("a", Intent{Direction: entity.DirectionUp, Timestamp: base})
		buffer.Push("a", Intent{Direction: entity.DirectionDown, Timestamp: base.Add(10 * time.Millisecond)})

		// When: popping one intent
		intent, ok := buffer.Pop("a")

		// Then: the earliest one comes out first, the rest stay queued
		require.True(t, ok)
		assert.Equal(t, entity.DirectionUp, intent.Direction)
		assert.Equal(t, 2, buffer.Len("a"))
	})

	t.Run("Pop on an empty queue reports nothing", func(t *testing.T) {
		buffer := NewInputBuffer(3)

		_, ok := buffer.Pop("a")

		assert.False(t, ok)
	})

	t.Run("Queues are independent per player", func(t *testing.T) {
		buffer := NewInputBuffer(1)

		require.True(t, buffer.Push("a", Intent{Direction: entity.DirectionUp, Timestamp: time.Now()}))
		require.True(t, buffer.Push("b", Intent{Direction: entity.DirectionDown, Timestamp: time.Now()}))

		assert.Equal(t, 1, buffer.Len("a"))
		assert.Equal(t, 1, buffer.Len("b"))
	})

	t.Run("Clear drops everything the player had queued", func(t *testing.T) {
		buffer := NewInputBuffer(3)
		buffer.Push("a", Intent{Direction: entity.DirectionUp, Timestamp: time.Now()})

		buffer.Clear("a")

		assert.Zero(t, buffer.Len("a"))
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("Allows up to the budget and rejects the excess", func(t *testing.T) {
		// Given: a limiter of three events per second
		limiter := NewRateLimiter(time.Second, 3)
		now := time.Now()

		// When: four events land inside one window
		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("a", now.Add(time.Duration(i)*time.Millisecond)))
		}

		// Then: the fourth is over budget
		assert.False(t, limiter.Allow("a", now.Add(4*time.Millisecond)))
	})

	t.Run("The window slides and old events stop counting", func(t *testing.T) {
		// Given: a player who exhausted the budget
		limiter := NewRateLimiter(time.Second, 2)
		now := time.Now()
		limiter.Allow("a", now)
		limiter.Allow("a", now)
		require.False(t, limiter.Allow("a", now))

		// When: the window has fully passed
		later := now.Add(time.Second + time.Millisecond)

		// Then: the player is back under budget
		assert.True(t, limiter.Allow("a", later))
	})

	t.Run("Players are limited independently", func(t *testing.T) {
		limiter := NewRateLimiter(time.Second, 1)
		now := time.Now()

		assert.True(t, limiter.Allow("a", now))
		assert.True(t, limiter.Allow("b", now))
		assert.False(t, limiter.Allow("a", now))
	})

	t.Run("Forget wipes the player's history", func(t *testing.T) {
		limiter := NewRateLimiter(time.Second, 1)
		now := time.Now()
		limiter.Allow("a", now)

		limiter.Forget("a")

		assert.True(t, limiter.Allow("a", now))
	})
}

func TestValidateDirection(t *testing.T) {
	t.Run("Accepts the four cardinals", func(t *testing.T) {
		for _, raw := range []string{"up", "down", "left", "right"} {
			dir, err := ValidateDirection(raw)
			require.NoError(t, err)
			assert.Equal(t, entity.Direction(raw), dir)
		}
	})

	t.Run("Rejects anything else with ErrInvalidDirection", func(t *testing.T) {
		for _, raw := range []string{"", "UP", "north", "upleft"} {
			_, err := ValidateDirection(raw)
			assert.ErrorIs(t, err, apperror.ErrInvalidDirection)
		}
	})
}
