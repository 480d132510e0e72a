package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/snake-arena-backend/internal/snake"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Game holds every simulation constant. None of these are tunable by
// clients at runtime.
type Game struct {
	GridSize     int `yaml:"grid-size" env-default:"30"`
	RoomCapacity int `yaml:"room-capacity" env-default:"10"`

	TickInterval time.Duration `yaml:"tick-interval" env-default:"15ms"`
	StepInterval time.Duration `yaml:"step-interval" env-default:"150ms"`

	InitialSnakeLength int `yaml:"initial-snake-length" env-default:"3"`
	MinFood            int `yaml:"min-food" env-default:"5"`
	GrowthPerFood      int `yaml:"growth-per-food" env-default:"3"`
	SurvivalBonus      int `yaml:"survival-bonus" env-default:"10"`
	RoundsPerMatch     int `yaml:"rounds-per-match" env-default:"3"`

	InputBufferDepth int           `yaml:"input-buffer-depth" env-default:"3"`
	RateLimitWindow  time.Duration `yaml:"rate-limit-window" env-default:"1s"`
	RateLimitMax     int           `yaml:"rate-limit-max" env-default:"20"`

	CountdownSteps        int           `yaml:"countdown-steps" env-default:"5"`
	CountdownStepInterval time.Duration `yaml:"countdown-step-interval" env-default:"1s"`
	RoundOverDelay        time.Duration `yaml:"round-over-delay" env-default:"3s"`
	GameOverDelay         time.Duration `yaml:"game-over-delay" env-default:"5s"`
}

// MustLoad - load all configurations from the config file, environment
// filling in anything missing.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		if envErr := cleanenv.ReadEnv(config); envErr != nil {
			panic(fmt.Errorf("unable to load config: %w", err))
		}
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Simulation - maps the config section onto the simulation's constant set.
func (that *Game) Simulation() snake.Config {
	return snake.Config{
		GridSize:              that.GridSize,
		RoomCapacity:          that.RoomCapacity,
		TickInterval:          that.TickInterval,
		StepInterval:          that.StepInterval,
		InitialSnakeLength:    that.InitialSnakeLength,
		MinFood:               that.MinFood,
		GrowthPerFood:         that.GrowthPerFood,
		SurvivalBonus:         that.SurvivalBonus,
		RoundsPerMatch:        that.RoundsPerMatch,
		InputBufferDepth:      that.InputBufferDepth,
		RateLimitWindow:       that.RateLimitWindow,
		RateLimitMax:          that.RateLimitMax,
		CountdownSteps:        that.CountdownSteps,
		CountdownStepInterval: that.CountdownStepInterval,
		RoundOverDelay:        that.RoundOverDelay,
		GameOverDelay:         that.GameOverDelay,
	}
}
