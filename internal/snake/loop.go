package snake

import (
	"sync"
	"time"
)

// scheduledTask is one deferred job owned by a room's loop.
type scheduledTask struct {
	id  int64
	due time.Time
	fn  func()
}

// Loop drives one room at a fixed physical rate. The tick callback and every
// scheduled task run on the loop goroutine, so room state needs no locking
// against them: a tick always runs to completion before anything else for
// the same room may fire.
//
// Deferred jobs (countdown steps, round-over delays) are one-shot tasks on
// the loop's own schedule, cancelable as a group on teardown so nothing
// fires into a room that no longer exists.
type Loop struct {
	interval time.Duration
	tick     func(delta time.Duration)

	mu     sync.Mutex
	tasks  []scheduledTask
	nextID int64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewLoop - creates a loop invoking tick every interval once started.
func NewLoop(interval time.Duration, tick func(delta time.Duration)) *Loop {
	return &Loop{
		interval: interval,
		tick:     tick,
		nextID:   1,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start - runs the loop on its own goroutine until Stop.
func (that *Loop) Start() {
	go that.run()
}

// Schedule - registers fn to run on the loop goroutine after delay. Returns
// an id usable with Cancel.
func (that *Loop) Schedule(delay time.Duration, fn func()) int64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := that.nextID
	that.nextID++

	that.tasks = append(that.tasks, scheduledTask{id: id, due: time.Now().Add(delay), fn: fn})

	return id
}

// Cancel - drops a scheduled task if it has not fired yet.
func (that *Loop) Cancel(id int64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, task := range that.tasks {
		if task.id == id {
			that.tasks = append(that.tasks[:i], that.tasks[i+1:]...)
			return
		}
	}
}

// Stop - halts the loop and discards every outstanding task. Safe to call
// more than once; blocks until the loop goroutine has exited.
func (that *Loop) Stop() {
	that.stopOnce.Do(func() {
		close(that.stop)
	})

	<-that.done
}

func (that *Loop) run() {
	defer close(that.done)

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	last := time.Now()

	for {
		select {
		case now := <-ticker.C:
			that.runDueTasks(now)
			that.tick(now.Sub(last))
			last = now
		case <-that.stop:
			that.mu.Lock()
			that.tasks = nil
			that.mu.Unlock()
			return
		}
	}
}

func (that *Loop) runDueTasks(now time.Time) {
	that.mu.Lock()

	var due []scheduledTask
	remaining := that.tasks[:0]
	for _, task := range that.tasks {
		if task.due.After(now) {
			remaining = append(remaining, task)
			continue
		}
		due = append(due, task)
	}
	that.tasks = remaining

	that.mu.Unlock()

	for _, task := range due {
		task.fn()
	}
}
