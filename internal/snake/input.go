package snake

import (
	"sync"
	"time"

	"github.com/rocketscienceinc/snake-arena-backend/internal/apperror"
	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

// Intent is one validated directional command awaiting its logical tick.
type Intent struct {
	Direction entity.Direction
	Timestamp time.Time
}

// InputBuffer is a per-player mailbox of pending directional intents.
// Network goroutines push into it as messages arrive; the room loop drains
// at most one intent per player per logical tick. Within one player's queue
// ordering is strict FIFO by timestamp; across players there is none.
type InputBuffer struct {
	mu     sync.Mutex
	depth  int
	queues map[string][]Intent
}

// NewInputBuffer - creates a buffer holding at most depth intents per player.
func NewInputBuffer(depth int) *InputBuffer {
	return &InputBuffer{
		depth:  depth,
		queues: make(map[string][]Intent),
	}
}

// Push - appends an intent to the player's queue. When the queue is full the
// new intent is dropped and the queued ones are preserved; returns false in
// that case.
func (that *InputBuffer) Push(playerID string, intent Intent) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	queue := that.queues[playerID]
	if len(queue) >= that.depth {
		return false
	}

	that.queues[playerID] = append(queue, intent)

	return true
}

// Pop - removes and returns the player's oldest intent by timestamp. The
// rest of the queue stays put for later ticks.
func (that *InputBuffer) Pop(playerID string) (Intent, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	queue := that.queues[playerID]
	if len(queue) == 0 {
		return Intent{}, false
	}

	oldest := 0
	for i := 1; i < len(queue); i++ {
		if queue[i].Timestamp.Before(queue[oldest].Timestamp) {
			oldest = i
		}
	}

	intent := queue[oldest]
	that.queues[playerID] = append(queue[:oldest], queue[oldest+1:]...)

	return intent, true
}

// Len - returns the player's queue length.
func (that *InputBuffer) Len(playerID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.queues[playerID])
}

// Clear - drops every queued intent for the player, used when they leave.
func (that *InputBuffer) Clear(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.queues, playerID)
}

// RateLimiter is a sliding-window limiter gating input admission per player.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	events map[string][]time.Time
}

// NewRateLimiter - allows at most max events per window per player.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		window: window,
		max:    max,
		events: make(map[string][]time.Time),
	}
}

// Allow - records an event at now and reports whether the player is still
// within its budget. A false return is the excess-rate signal the transport
// layer converts into a ban or disconnect.
func (that *RateLimiter) Allow(playerID string, now time.Time) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	cutoff := now.Add(-that.window)

	recent := that.events[playerID][:0]
	for _, at := range that.events[playerID] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= that.max {
		that.events[playerID] = recent
		return false
	}

	that.events[playerID] = append(recent, now)

	return true
}

// Forget - drops the player's rate-limit history.
func (that *RateLimiter) Forget(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.events, playerID)
}

// ValidateDirection - parses a raw direction value, rejecting anything
// outside the four cardinals.
func ValidateDirection(raw string) (entity.Direction, error) {
	dir := entity.Direction(raw)
	if !dir.IsValid() {
		return "", apperror.ErrInvalidDirection
	}

	return dir, nil
}
