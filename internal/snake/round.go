package snake

import (
	"errors"
	"strconv"
	"time"

	"github.com/rocketscienceinc/snake-arena-backend/internal/apperror"
	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

const (
	msgPlayerJoined  = "{playerName} joined the room"
	msgPlayerLeft    = "{playerName} left the room"
	msgHitWall       = "{playerName} crashed into the wall"
	msgHitSelf       = "{playerName} ran into themselves"
	msgHitSnake      = "{playerName} crashed into {otherPlayerName}"
	msgHeadOn        = "{playerName} and {otherPlayerName} collided head-on"
	msgRoundSurvivor = "{playerName} survived the round"
	msgGameWinner    = "{playerName} won the game"
)

// tick - one physical tick of the room. Dispatches on the round phase; the
// loop goroutine is the only caller.
func (that *Game) tick(delta time.Duration) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	switch that.state.RoundState() {
	case RoundWaiting:
		that.tickWaiting()
	case RoundCountdown:
		that.tickCountdown()
	case RoundActive:
		that.tickActive(delta)
	}
}

// tickWaiting - the WAITING phase: spawn everything exactly once per entry,
// show the waiting overlay until a second player arrives, kick off the
// countdown once the room has two, and keep broadcasting the board so
// players see their pre-game placement.
func (that *Game) tickWaiting() {
	if !that.spawnedForRound {
		that.spawnedForRound = true
		that.spawnRound()
	}

	players := that.state.Players()

	if len(players) < 2 {
		that.emit(Event{Type: EventOverlay, Overlay: &Overlay{
			Kind: OverlayWaiting,
			Text: "Waiting for players...",
		}})
	} else if !that.countdownStarted {
		that.startCountdown()
	}

	that.state.UpdateGrid()
	that.emitSnapshot()
}

// tickCountdown - countdown decrements ride on scheduled tasks; the tick
// itself just keeps the board flowing to clients.
func (that *Game) tickCountdown() {
	that.state.UpdateGrid()
	that.emitSnapshot()
}

// tickActive - the ACTIVE phase. Real delta time accumulates and the
// simulation only steps once a full logical interval is banked, decoupling
// game speed from the physical tick rate.
func (that *Game) tickActive(delta time.Duration) {
	if that.roundEnding {
		return
	}

	that.stepAccum += delta

	for that.stepAccum >= that.cfg.StepInterval {
		that.stepAccum -= that.cfg.StepInterval

		that.logicalStep()

		if that.roundEnding {
			return
		}
	}
}

// spawnRound - places initial food on the deterministic layout and every
// player at their join-order slot.
func (that *Game) spawnRound() {
	that.state.ClearFood()
	for _, p := range that.spawner.InitialFoodLayout(that.cfg.GridSize, that.cfg.MinFood) {
		that.state.AddFood(p)
	}

	for _, player := range that.state.Players() {
		that.spawnPlayer(player)
	}
}

// startCountdown - enters the countdown phase and schedules one task per
// decrement on the room's own scheduler. Each task re-checks the phase so a
// stale countdown never fires into a room that moved on.
func (that *Game) startCountdown() {
	that.countdownStarted = true

	steps := that.cfg.CountdownSteps
	interval := that.cfg.CountdownStepInterval

	that.state.BeginCountdown(time.Now().Add(time.Duration(steps) * interval))

	that.emitCountdown(steps)

	for i := 1; i <= steps; i++ {
		remaining := steps - i
		that.loop.Schedule(time.Duration(i)*interval, func() {
			that.onCountdownStep(remaining)
		})
	}
}

// onCountdownStep - one scheduled countdown decrement. Runs on the loop
// goroutine; zero remaining starts the round.
func (that *Game) onCountdownStep(remaining int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed || that.state.RoundState() != RoundCountdown {
		return
	}

	if remaining > 0 {
		that.emitCountdown(remaining)
		return
	}

	that.beginRound()
}

func (that *Game) emitCountdown(remaining int) {
	that.emit(Event{Type: EventOverlay, Overlay: &Overlay{
		Kind:      OverlayCountdown,
		Text:      strconv.Itoa(remaining),
		Countdown: remaining,
	}})
}

// beginRound - flips the room to ACTIVE and tells every player they are
// live.
func (that *Game) beginRound() {
	that.state.BeginRound()
	that.stepAccum = 0

	for _, player := range that.state.Players() {
		player.Alive = true
		that.emitAliveness(player)
	}

	that.emit(Event{Type: EventOverlay, Overlay: &Overlay{Kind: OverlayClear}})

	that.logger.Info("round started", "round", that.state.RoundNumber())
}

// logicalStep - one logical step of the ACTIVE phase: drain one input per
// player, let CPU players pick a move, advance everyone, resolve collisions,
// apply effects, top up food, rebuild the grid and broadcast.
func (that *Game) logicalStep() {
	that.drainInputs()

	for _, player := range that.state.ActivePlayers() {
		if player.IsCPU() && player.Mover != nil {
			if err := player.SetPendingDirection(player.Mover.NextDirection(that.state, player)); err != nil {
				// A reversal pick is ignored; the snake keeps going.
				continue
			}
		}
	}

	for _, player := range that.state.ActivePlayers() {
		player.ApplyPendingDirection()
		player.Advance()
	}

	collisions := DetectCollisions(that.state)
	that.applyCollisions(collisions)

	that.replenishFood()

	that.state.UpdateGrid()
	that.emitSnapshot()

	if len(that.state.ActivePlayers()) <= 1 {
		that.endRound()
	}
}

// drainInputs - applies at most one buffered intent per player, oldest
// first. Reversal attempts die quietly here.
func (that *Game) drainInputs() {
	for _, player := range that.state.ActivePlayers() {
		intent, ok := that.inputs.Pop(player.ID)
		if !ok {
			continue
		}

		if err := player.SetPendingDirection(intent.Direction); err != nil {
			if !errors.Is(err, entity.ErrReversalNotAllowed) {
				that.logger.Debug("input rejected", "player_id", player.ID, "error", err)
			}
		}
	}
}

// applyCollisions - turns collision events into state effects and messages.
// Lethal hits kill; food hits consume, grow and score. A symmetric head-on
// pair produces exactly one combined message.
func (that *Game) applyCollisions(collisions []Collision) {
	headOnSeen := make(map[string]bool)
	scoreChanged := false

	for _, collision := range collisions {
		player, ok := that.state.Player(collision.PlayerID)
		if !ok {
			continue
		}

		switch collision.Kind {
		case CollisionWall:
			that.state.KillPlayer(player.ID)
			that.emitAliveness(player)
			that.emitMessage(msgHitWall, player, nil)

		case CollisionSelf:
			that.state.KillPlayer(player.ID)
			that.emitAliveness(player)
			that.emitMessage(msgHitSelf, player, nil)

		case CollisionSnake:
			that.state.KillPlayer(player.ID)
			that.emitAliveness(player)

			other, _ := that.state.Player(collision.OtherID)

			if collision.HeadOn {
				if !headOnSeen[collision.PlayerID] {
					headOnSeen[collision.OtherID] = true
					that.emitMessage(msgHeadOn, player, other)
				}
				continue
			}

			that.emitMessage(msgHitSnake, player, other)

		case CollisionFood:
			that.state.RemoveFood(collision.At)
			that.state.GrowPlayer(player.ID, that.cfg.GrowthPerFood)
			scoreChanged = true
		}
	}

	if scoreChanged {
		that.emitLeaderboard()
	}
}

// replenishFood - tops the board back up to the configured minimum with
// uniformly sampled free cells. A saturated grid aborts the top-up; that is
// a configuration bug and is logged loudly.
func (that *Game) replenishFood() {
	for that.state.FoodCount() < that.cfg.MinFood {
		p, err := that.spawner.RandomFreeCell(that.state)
		if err != nil {
			if errors.Is(err, apperror.ErrNoAvailablePosition) {
				that.logger.Error("grid saturated, food placement aborted", "error", err)
			}
			return
		}

		that.state.AddFood(p)
	}
}

// endRound - the ROUND_OVER sequence. The roundEnding guard makes it
// idempotent: several deaths on one tick still end the round exactly once.
func (that *Game) endRound() {
	if that.roundEnding {
		return
	}
	that.roundEnding = true

	var survivor *entity.Player
	if survivors := that.state.ActivePlayers(); len(survivors) == 1 {
		survivor = survivors[0]
		survivor.Score += that.cfg.SurvivalBonus
		that.emitMessage(msgRoundSurvivor, survivor, nil)
		that.emitLeaderboard()
	}

	that.logger.Info("round over", "round", that.state.RoundNumber(), "had_survivor", survivor != nil)

	if that.state.RoundNumber() >= that.cfg.RoundsPerMatch {
		that.endMatch()
		return
	}

	overlay := &Overlay{Kind: OverlayRoundOver, Text: "Round over"}
	if survivor != nil {
		data := playerData(survivor)
		overlay.Winner = &data
	}
	that.emit(Event{Type: EventOverlay, Overlay: overlay})

	that.loop.Schedule(that.cfg.RoundOverDelay, that.onRoundOverDelayDone)
}

// onRoundOverDelayDone - scheduled transition back to WAITING with the round
// counter advanced and transient round state cleared.
func (that *Game) onRoundOverDelayDone() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed || !that.roundEnding {
		return
	}

	that.state.BeginWaiting()
	that.resetRoundFlags()

	that.emit(Event{Type: EventOverlay, Overlay: &Overlay{Kind: OverlayClear}})
}

// endMatch - the GAME_OVER sequence: pick winners by max score, credit a
// sole winner, notify persistence and schedule the match reset.
func (that *Game) endMatch() {
	winners := that.state.MatchWinners()

	var winner *entity.Player
	if len(winners) == 1 {
		winner = winners[0]
		winner.GamesWon++
		that.emitMessage(msgGameWinner, winner, nil)
	}

	overlay := &Overlay{Kind: OverlayGameOver, Text: "Game over"}
	if winner != nil {
		data := playerData(winner)
		overlay.Winner = &data
	}
	that.emit(Event{Type: EventOverlay, Overlay: overlay})
	that.emitLeaderboard()

	that.logger.Info("game over", "winner", winner != nil)

	if that.onGameOver != nil {
		// The callback runs off the loop goroutine, so it gets detached
		// copies rather than live simulation state.
		players := make([]*entity.Player, 0, len(that.state.Players()))
		for _, player := range that.state.Players() {
			players = append(players, detachPlayer(player))
		}

		var winnerCopy *entity.Player
		if winner != nil {
			winnerCopy = detachPlayer(winner)
		}

		callback := that.onGameOver
		go callback(winnerCopy, players)
	}

	that.loop.Schedule(that.cfg.GameOverDelay, that.onGameOverDelayDone)
}

// onGameOverDelayDone - scheduled match reset: scores cleared, round counter
// back to one, phase back to WAITING.
func (that *Game) onGameOverDelayDone() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed || !that.roundEnding {
		return
	}

	that.state.ResetMatch()
	that.resetRoundFlags()

	that.emit(Event{Type: EventOverlay, Overlay: &Overlay{Kind: OverlayClear}})
	that.emitLeaderboard()
}

func detachPlayer(player *entity.Player) *entity.Player {
	detached := *player
	detached.Mover = nil
	detached.Segments = nil
	detached.PendingDirection = ""

	return &detached
}

func (that *Game) resetRoundFlags() {
	that.spawnedForRound = false
	that.countdownStarted = false
	that.roundEnding = false
	that.stepAccum = 0
}
