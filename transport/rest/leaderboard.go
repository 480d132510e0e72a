package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/snake-arena-backend/internal/repository"
)

const defaultLeaderboardLimit = 10

type leaderboardHandler struct {
	logger *slog.Logger
	stats  repository.StatsRepository
}

func newLeaderboardHandler(logger *slog.Logger, stats repository.StatsRepository) *leaderboardHandler {
	return &leaderboardHandler{
		logger: logger.With("component", "leaderboard_handler"),
		stats:  stats,
	}
}

// ServeHTTP - returns the top career scores as JSON. The limit query
// parameter caps the row count.
func (that *leaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultLeaderboardLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := that.stats.TopCareerScores(r.Context(), limit)
	if err != nil {
		that.logger.Error("failed to load leaderboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(entries); err != nil {
		that.logger.Error("failed to encode leaderboard", "error", err)
	}
}
