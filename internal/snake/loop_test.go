package snake

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoop(t *testing.T) {
	t.Run("Ticks repeatedly at the configured interval", func(t *testing.T) {
		// Given: a loop counting its ticks
		var ticks atomic.Int64
		loop := NewLoop(5*time.Millisecond, func(time.Duration) {
			ticks.Add(1)
		})

		// When: running briefly
		loop.Start()
		defer loop.Stop()

		// Then: several ticks land
		assert.Eventually(t, func() bool {
			return ticks.Load() >= 3
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("Scheduled tasks fire once after their delay", func(t *testing.T) {
		// Given: a running loop with a one-shot task
		var fired atomic.Int64
		loop := NewLoop(5*time.Millisecond, func(time.Duration) {})
		loop.Start()
		defer loop.Stop()

		loop.Schedule(20*time.Millisecond, func() {
			fired.Add(1)
		})

		// Then: the task runs exactly once
		assert.Eventually(t, func() bool {
			return fired.Load() == 1
		}, time.Second, 5*time.Millisecond)

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int64(1), fired.Load())
	})

	t.Run("Cancelled tasks never fire", func(t *testing.T) {
		// Given: a scheduled task that gets cancelled in time
		var fired atomic.Int64
		loop := NewLoop(5*time.Millisecond, func(time.Duration) {})
		loop.Start()
		defer loop.Stop()

		id := loop.Schedule(50*time.Millisecond, func() {
			fired.Add(1)
		})
		loop.Cancel(id)

		// Then: the delay passes without the task running
		time.Sleep(100 * time.Millisecond)
		assert.Zero(t, fired.Load())
	})

	t.Run("Stop is idempotent and halts ticking", func(t *testing.T) {
		// Given: a running loop
		var ticks atomic.Int64
		loop := NewLoop(5*time.Millisecond, func(time.Duration) {
			ticks.Add(1)
		})
		loop.Start()

		// When: stopping twice
		loop.Stop()
		loop.Stop()

		// Then: the tick count settles
		settled := ticks.Load()
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, settled, ticks.Load())
	})
}
