package snake

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/snake-arena-backend/internal/apperror"
	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

const eventBufferSize = 256

// GameOverFunc is called once per finished match with the sole winner (nil
// on a tie) and every player present at the end.
type GameOverFunc func(winner *entity.Player, players []*entity.Player)

// Game is one room's complete simulation: state, input plumbing, the round
// state machine and the loop driving it. All mutation happens under mu; the
// loop goroutine and the network-facing API never interleave mid-tick.
type Game struct {
	id     string
	logger *slog.Logger
	cfg    Config
	rng    *rand.Rand

	mu      sync.Mutex
	state   *State
	spawner *Spawner
	loop    *Loop

	inputs  *InputBuffer
	limiter *RateLimiter

	eventsMu     sync.Mutex
	eventsClosed bool
	events       chan Event

	// Round machine flags. spawnedForRound makes the waiting-phase spawn
	// idempotent; roundEnding makes round end fire once even when several
	// players die on the same tick.
	spawnedForRound  bool
	countdownStarted bool
	roundEnding      bool
	stepAccum        time.Duration

	humans int
	closed bool

	onGameOver GameOverFunc
}

// NewGame - creates a room simulation. Call Start to begin ticking.
func NewGame(id string, logger *slog.Logger, cfg Config, rng *rand.Rand, onGameOver GameOverFunc) *Game {
	game := &Game{
		id:         id,
		logger:     logger.With("component", "game", "room_id", id),
		cfg:        cfg,
		rng:        rng,
		state:      NewState(cfg.GridSize),
		spawner:    NewSpawner(rng),
		inputs:     NewInputBuffer(cfg.InputBufferDepth),
		limiter:    NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax),
		events:     make(chan Event, eventBufferSize),
		onGameOver: onGameOver,
	}

	game.loop = NewLoop(cfg.TickInterval, game.tick)

	return game
}

// ID - returns the room id.
func (that *Game) ID() string {
	return that.id
}

// Events - returns the room's outbound event channel. A single subscriber,
// the transport layer, is expected to drain it.
func (that *Game) Events() <-chan Event {
	return that.events
}

// Start - starts the room's loop.
func (that *Game) Start() {
	that.loop.Start()
}

// Stop - shuts the room down: the loop halts, outstanding deferred tasks are
// discarded and the event channel closes.
func (that *Game) Stop() {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return
	}
	that.closed = true
	that.mu.Unlock()

	that.loop.Stop()

	that.eventsMu.Lock()
	that.eventsClosed = true
	close(that.events)
	that.eventsMu.Unlock()
}

// HumanCount - returns the number of connected human players. A room is
// empty, and eligible for teardown, only when this reaches zero.
func (that *Game) HumanCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.humans
}

// PlayerCount - returns the total player count, CPU players included.
func (that *Game) PlayerCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.state.Players())
}

// Join - adds a player to the room. Humans beyond the room capacity are
// rejected with apperror.ErrRoomFull. Players joining during the waiting or
// countdown phase are spawned immediately at their slot; players joining
// mid-round sit out until the next round starts.
func (that *Game) Join(player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return apperror.ErrRoomNotFound
	}

	if !player.IsCPU() && that.humans >= that.cfg.RoomCapacity {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.id)
	}

	if player.Mover == nil {
		if player.IsCPU() {
			player.Mover = NewAStarMover(rand.New(rand.NewSource(that.rng.Int63())))
		} else {
			player.Mover = &ManualMover{}
		}
	}

	player.Alive = false
	that.state.AddPlayer(player)

	if !player.IsCPU() {
		that.humans++
	}

	if that.spawnedForRound && that.state.RoundState() != RoundActive {
		that.spawnPlayer(player)
	}

	that.logger.Info("player joined", "player_id", player.ID, "name", player.Name, "type", player.Type)

	that.emitMessage(msgPlayerJoined, player, nil)
	that.emitLeaderboard()

	return nil
}

// Leave - removes a player. Only that player's queued input and rate-limit
// history go with them; the rest of the room is untouched. Returns
// apperror.ErrPlayerNotFound for ids the room does not know.
func (that *Game) Leave(playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.state.Player(playerID)
	if !ok {
		return fmt.Errorf("%w: %s in room %s", apperror.ErrPlayerNotFound, playerID, that.id)
	}

	that.state.RemovePlayer(playerID)
	that.inputs.Clear(playerID)
	that.limiter.Forget(playerID)

	if !player.IsCPU() && that.humans > 0 {
		that.humans--
	}

	that.logger.Info("player left", "player_id", playerID)

	that.emitMessage(msgPlayerLeft, player, nil)
	that.emitLeaderboard()

	return nil
}

// HandleMove - admits one directional intent from the network. Invalid
// directions are silently dropped and reversal attempts are filtered later
// at application time; a full queue drops the new intent, keeping the
// queued ones. A rate-limit hit drops the intent and raises the excess-rate
// signal for the transport layer to act on.
func (that *Game) HandleMove(playerID, rawDirection string, timestamp time.Time) error {
	dir, err := ValidateDirection(rawDirection)
	if err != nil {
		that.logger.Debug("invalid direction dropped", "player_id", playerID, "direction", rawDirection)
		return nil
	}

	if !that.limiter.Allow(playerID, time.Now()) {
		that.emit(Event{Type: EventRateLimited, TargetID: playerID})
		return fmt.Errorf("%w: player %s", apperror.ErrRateLimitExceeded, playerID)
	}

	if !that.inputs.Push(playerID, Intent{Direction: dir, Timestamp: timestamp}) {
		that.logger.Debug("input buffer full, intent dropped", "player_id", playerID)
	}

	return nil
}

// emit - hands an event to the transport subscriber without ever blocking
// the simulation. An overrun subscriber loses events, which is logged.
func (that *Game) emit(event Event) {
	that.eventsMu.Lock()
	defer that.eventsMu.Unlock()

	if that.eventsClosed {
		return
	}

	select {
	case that.events <- event:
	default:
		that.logger.Warn("event channel full, event dropped", "event_type", event.Type)
	}
}

func (that *Game) emitMessage(template string, player, other *entity.Player) {
	message := &GameMessage{Template: template}

	if player != nil {
		data := playerData(player)
		message.Player = &data
	}

	if other != nil {
		data := playerData(other)
		message.Other = &data
	}

	that.emit(Event{Type: EventMessage, Message: message})
}

func (that *Game) emitLeaderboard() {
	that.emit(Event{Type: EventLeaderboard, Leaderboard: leaderboardOf(that.state)})
}

func (that *Game) emitSnapshot() {
	that.emit(Event{Type: EventState, State: snapshotOf(that.state, time.Now())})
}

func (that *Game) emitAliveness(player *entity.Player) {
	alive := player.Alive
	that.emit(Event{
		Type:         EventPlayer,
		TargetID:     player.ID,
		PlayerUpdate: &PlayerUpdate{Alive: &alive},
	})
}

// spawnPlayer - places one player at the spawn slot derived from join order
// and tells them where they landed.
func (that *Game) spawnPlayer(player *entity.Player) {
	slot := that.state.JoinSlot(player.ID)
	if slot < 0 {
		return
	}

	spawn, facing := that.spawner.PlayerSpawn(slot, that.cfg.GridSize, that.cfg.RoomCapacity)
	player.ResetForRound(spawn, facing, that.cfg.InitialSnakeLength)

	alive := player.Alive
	that.emit(Event{
		Type:         EventPlayer,
		TargetID:     player.ID,
		PlayerUpdate: &PlayerUpdate{Alive: &alive, Spawn: &spawn},
	})
}
