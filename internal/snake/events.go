package snake

import (
	"sort"
	"time"

	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

// EventType tags outbound events for the transport layer.
type EventType string

const (
	EventState       EventType = "state"
	EventLeaderboard EventType = "leaderboard"
	EventMessage     EventType = "message"
	EventOverlay     EventType = "overlay"
	EventPlayer      EventType = "player"
	EventRateLimited EventType = "rate_limited"
)

// OverlayKind tags full-screen overlay messages.
type OverlayKind string

const (
	OverlayWaiting   OverlayKind = "waiting"
	OverlayCountdown OverlayKind = "countdown"
	OverlayRoundOver OverlayKind = "round_over"
	OverlayGameOver  OverlayKind = "game_over"
	OverlayClear     OverlayKind = "clear"
)

// PlayerData is the wire view of a player.
type PlayerData struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Color    string         `json:"color,omitempty"`
	Score    int            `json:"score"`
	GamesWon int            `json:"games_won"`
	Alive    bool           `json:"alive"`
	Segments []entity.Point `json:"segments"`
}

// RoundInfo is the wire view of round progress.
type RoundInfo struct {
	State           RoundState `json:"round_state"`
	IntermissionEnd int64      `json:"round_intermission_end_time,omitempty"`
	Number          int        `json:"round_number"`
}

// StateSnapshot is the full board broadcast every logical tick.
type StateSnapshot struct {
	GridSize  int                    `json:"grid_size"`
	Grid      map[string]entity.Cell `json:"grid"`
	Players   []PlayerData           `json:"players"`
	Round     RoundInfo              `json:"round_info"`
	Timestamp int64                  `json:"timestamp"`
}

// GameMessage is a templated chat-line event. Templates reference players by
// the {playerName} and {otherPlayerName} placeholders; the referenced player
// data rides along so clients can render names and colors themselves.
type GameMessage struct {
	Template string      `json:"template"`
	Player   *PlayerData `json:"player,omitempty"`
	Other    *PlayerData `json:"other_player,omitempty"`
}

// Overlay is a full-screen status message.
type Overlay struct {
	Kind      OverlayKind `json:"kind"`
	Text      string      `json:"text,omitempty"`
	Countdown int         `json:"countdown,omitempty"`
	Winner    *PlayerData `json:"winner,omitempty"`
}

// PlayerUpdate carries per-player-targeted data.
type PlayerUpdate struct {
	Alive *bool         `json:"alive,omitempty"`
	Spawn *entity.Point `json:"spawn,omitempty"`
}

// Event is one outbound message from a room's simulation. TargetID is empty
// for room-wide broadcasts and names a single player otherwise. The
// simulation core never sees sockets; the transport layer subscribes to the
// room's event channel and fans out.
type Event struct {
	Type     EventType `json:"type"`
	TargetID string    `json:"-"`

	State        *StateSnapshot `json:"state,omitempty"`
	Leaderboard  []PlayerData   `json:"leaderboard,omitempty"`
	Message      *GameMessage   `json:"message,omitempty"`
	Overlay      *Overlay       `json:"overlay,omitempty"`
	PlayerUpdate *PlayerUpdate  `json:"player_update,omitempty"`
}

func playerData(player *entity.Player) PlayerData {
	segments := make([]entity.Point, len(player.Segments))
	copy(segments, player.Segments)

	return PlayerData{
		ID:       player.ID,
		Name:     player.Name,
		Color:    player.Color,
		Score:    player.Score,
		GamesWon: player.GamesWon,
		Alive:    player.Alive,
		Segments: segments,
	}
}

func snapshotOf(state *State, now time.Time) *StateSnapshot {
	players := make([]PlayerData, 0, len(state.Players()))
	for _, player := range state.Players() {
		players = append(players, playerData(player))
	}

	grid := make(map[string]entity.Cell, len(state.Grid()))
	for key, cell := range state.Grid() {
		grid[key] = cell
	}

	var intermission int64
	if !state.IntermissionEnd().IsZero() {
		intermission = state.IntermissionEnd().UnixMilli()
	}

	return &StateSnapshot{
		GridSize: state.GridSize(),
		Grid:     grid,
		Players:  players,
		Round: RoundInfo{
			State:           state.RoundState(),
			IntermissionEnd: intermission,
			Number:          state.RoundNumber(),
		},
		Timestamp: now.UnixMilli(),
	}
}

func leaderboardOf(state *State) []PlayerData {
	players := make([]PlayerData, 0, len(state.Players()))
	for _, player := range state.Players() {
		players = append(players, playerData(player))
	}

	// Score descending, ties by name for a stable order.
	sort.Slice(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		return players[i].Name < players[j].Name
	})

	return players
}
