package snake

import "time"

// Config carries every server-side simulation constant. Values come from the
// application config; nothing here is tunable by clients at runtime.
type Config struct {
	GridSize     int
	RoomCapacity int

	TickInterval time.Duration
	StepInterval time.Duration

	InitialSnakeLength int
	MinFood            int
	GrowthPerFood      int
	SurvivalBonus      int
	RoundsPerMatch     int

	InputBufferDepth int
	RateLimitWindow  time.Duration
	RateLimitMax     int

	CountdownSteps        int
	CountdownStepInterval time.Duration
	RoundOverDelay        time.Duration
	GameOverDelay         time.Duration
}

// DefaultConfig - returns the constants the server ships with.
func DefaultConfig() Config {
	return Config{
		GridSize:              30,
		RoomCapacity:          10,
		TickInterval:          15 * time.Millisecond,
		StepInterval:          150 * time.Millisecond,
		InitialSnakeLength:    3,
		MinFood:               5,
		GrowthPerFood:         3,
		SurvivalBonus:         10,
		RoundsPerMatch:        3,
		InputBufferDepth:      3,
		RateLimitWindow:       time.Second,
		RateLimitMax:          20,
		CountdownSteps:        5,
		CountdownStepInterval: time.Second,
		RoundOverDelay:        3 * time.Second,
		GameOverDelay:         5 * time.Second,
	}
}
