package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

const (
	gamesWonKeyPrefix  = "stats:games_won:"
	careerScoreBoard   = "stats:career_scores"
	recordOpTimeout    = 5 * time.Second
	leaderboardMaxSize = 100
)

var ErrPlayerStatsNotFound = errors.New("player stats not found")

// CareerEntry is one row of the cross-room career leaderboard.
type CareerEntry struct {
	PlayerName string  `json:"player_name"`
	Score      float64 `json:"score"`
}

// StatsRepository persists career aggregates that outlive a room: games won
// per player and a global cumulative score board. In-round state is never
// written here; a process restart forgets running games by design.
type StatsRepository interface {
	IncrementGamesWon(ctx context.Context, playerName string) error
	AddCareerScore(ctx context.Context, playerName string, score int) error
	GamesWon(ctx context.Context, playerName string) (int64, error)
	TopCareerScores(ctx context.Context, limit int64) ([]CareerEntry, error)

	RecordGameOver(winner *entity.Player, players []*entity.Player)
}

type statsRepository struct {
	logger *slog.Logger
	client *redis.Client
}

// NewStatsRepository - creates the redis-backed stats repository.
func NewStatsRepository(logger *slog.Logger, client *redis.Client) StatsRepository {
	return &statsRepository{
		logger: logger.With("component", "stats_repository"),
		client: client,
	}
}

func (that *statsRepository) IncrementGamesWon(ctx context.Context, playerName string) error {
	if err := that.client.Incr(ctx, gamesWonKeyPrefix+playerName).Err(); err != nil {
		return fmt.Errorf("failed to increment games won: %w", err)
	}

	return nil
}

func (that *statsRepository) AddCareerScore(ctx context.Context, playerName string, score int) error {
	if err := that.client.ZIncrBy(ctx, careerScoreBoard, float64(score), playerName).Err(); err != nil {
		return fmt.Errorf("failed to add career score: %w", err)
	}

	return nil
}

func (that *statsRepository) GamesWon(ctx context.Context, playerName string) (int64, error) {
	count, err := that.client.Get(ctx, gamesWonKeyPrefix+playerName).Int64()

	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: %s", ErrPlayerStatsNotFound, playerName)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get games won: %w", err)
	}

	return count, nil
}

func (that *statsRepository) TopCareerScores(ctx context.Context, limit int64) ([]CareerEntry, error) {
	if limit <= 0 || limit > leaderboardMaxSize {
		limit = leaderboardMaxSize
	}

	rows, err := that.client.ZRevRangeWithScores(ctx, careerScoreBoard, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get top career scores: %w", err)
	}

	entries := make([]CareerEntry, 0, len(rows))
	for _, row := range rows {
		name, ok := row.Member.(string)
		if !ok {
			continue
		}

		entries = append(entries, CareerEntry{PlayerName: name, Score: row.Score})
	}

	return entries, nil
}

// RecordGameOver - best-effort persistence hook for a finished match. CPU
// players are skipped; failures are logged and never reach the simulation.
func (that *statsRepository) RecordGameOver(winner *entity.Player, players []*entity.Player) {
	ctx, cancel := context.WithTimeout(context.Background(), recordOpTimeout)
	defer cancel()

	if winner != nil && !winner.IsCPU() {
		if err := that.IncrementGamesWon(ctx, winner.Name); err != nil {
			that.logger.Error("failed to record game winner", "player", winner.Name, "error", err)
		}
	}

	for _, player := range players {
		if player.IsCPU() || player.Score == 0 {
			continue
		}

		if err := that.AddCareerScore(ctx, player.Name, player.Score); err != nil {
			that.logger.Error("failed to record career score", "player", player.Name, "error", err)
		}
	}
}
