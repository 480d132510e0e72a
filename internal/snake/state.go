package snake

import (
	"time"

	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
)

// RoundState is the round-layer phase of a room.
type RoundState string

const (
	RoundWaiting   RoundState = "waiting"
	RoundCountdown RoundState = "countdown"
	RoundActive    RoundState = "active"
)

// State is the authoritative per-room aggregate: players, food, the derived
// occupancy grid and round metadata. It is owned by the room's loop
// goroutine and must never be touched from outside it.
type State struct {
	gridSize int

	players   map[string]*entity.Player
	joinOrder []string

	food map[string]entity.Point

	// grid is a derived cache rebuilt from players and food every tick.
	// It is never a second source of truth.
	grid map[string]entity.Cell

	roundState      RoundState
	roundNumber     int
	intermissionEnd time.Time
}

// NewState - creates an empty state for a fresh room.
func NewState(gridSize int) *State {
	return &State{
		gridSize:    gridSize,
		players:     make(map[string]*entity.Player),
		food:        make(map[string]entity.Point),
		grid:        make(map[string]entity.Cell),
		roundState:  RoundWaiting,
		roundNumber: 1,
	}
}

// GridSize - returns the board side length.
func (that *State) GridSize() int {
	return that.gridSize
}

// Player - returns a player by id.
func (that *State) Player(id string) (*entity.Player, bool) {
	player, ok := that.players[id]
	return player, ok
}

// Players - returns every player in join order.
func (that *State) Players() []*entity.Player {
	players := make([]*entity.Player, 0, len(that.players))
	for _, id := range that.joinOrder {
		if player, ok := that.players[id]; ok {
			players = append(players, player)
		}
	}

	return players
}

// ActivePlayers - returns the players still alive this round, in join order.
func (that *State) ActivePlayers() []*entity.Player {
	players := make([]*entity.Player, 0, len(that.players))
	for _, player := range that.Players() {
		if player.Alive {
			players = append(players, player)
		}
	}

	return players
}

// AddPlayer - registers a player with the room.
func (that *State) AddPlayer(player *entity.Player) {
	if _, exists := that.players[player.ID]; exists {
		return
	}

	that.players[player.ID] = player
	that.joinOrder = append(that.joinOrder, player.ID)
}

// RemovePlayer - drops a player from the room entirely.
func (that *State) RemovePlayer(id string) {
	delete(that.players, id)

	for i, joined := range that.joinOrder {
		if joined == id {
			that.joinOrder = append(that.joinOrder[:i], that.joinOrder[i+1:]...)
			break
		}
	}
}

// JoinSlot - returns the player's position in join order, used by spawn
// placement. Returns -1 for unknown players.
func (that *State) JoinSlot(id string) int {
	for i, joined := range that.joinOrder {
		if joined == id {
			return i
		}
	}

	return -1
}

// KillPlayer - marks a player dead. Segments are kept until the round
// resets so the corpse stays visible on the board.
func (that *State) KillPlayer(id string) {
	if player, ok := that.players[id]; ok {
		player.Alive = false
	}
}

// GrowPlayer - credits a food pickup: score and owed growth both increase by
// the configured amount.
func (that *State) GrowPlayer(id string, amount int) {
	player, ok := that.players[id]
	if !ok {
		return
	}

	player.Score += amount
	player.Grow(amount)
}

// FoodPositions - returns the current food cells.
func (that *State) FoodPositions() []entity.Point {
	positions := make([]entity.Point, 0, len(that.food))
	for _, p := range that.food {
		positions = append(positions, p)
	}

	return positions
}

// FoodCount - returns how many food cells are on the board.
func (that *State) FoodCount() int {
	return len(that.food)
}

// HasFoodAt - reports whether a food item sits on the point.
func (that *State) HasFoodAt(p entity.Point) bool {
	_, ok := that.food[p.Key()]
	return ok
}

// AddFood - places a food item.
func (that *State) AddFood(p entity.Point) {
	that.food[p.Key()] = p
}

// RemoveFood - consumes a food item.
func (that *State) RemoveFood(p entity.Point) {
	delete(that.food, p.Key())
}

// ClearFood - drops all food, used at round boundaries.
func (that *State) ClearFood() {
	that.food = make(map[string]entity.Point)
}

// InBounds - reports whether the point lies on the board.
func (that *State) InBounds(p entity.Point) bool {
	return p.X >= 0 && p.X < that.gridSize && p.Y >= 0 && p.Y < that.gridSize
}

// IsOccupied - reports whether any active player's segment or a food item
// claims the point. The check runs against authoritative state, not the
// derived grid.
func (that *State) IsOccupied(p entity.Point) bool {
	for _, player := range that.players {
		if player.Alive && player.OccupiesCell(p) {
			return true
		}
	}

	return that.HasFoodAt(p)
}

// EntityAt - classifies the cell at a point. Out-of-bounds is a wall.
func (that *State) EntityAt(p entity.Point) entity.Cell {
	if !that.InBounds(p) {
		return entity.Cell{Kind: entity.CellWall}
	}

	for _, player := range that.players {
		if player.Alive && player.OccupiesCell(p) {
			return entity.Cell{Kind: entity.CellSnake, PlayerID: player.ID, Color: player.Color}
		}
	}

	if that.HasFoodAt(p) {
		return entity.Cell{Kind: entity.CellFood}
	}

	return entity.Cell{Kind: entity.CellEmpty}
}

// UpdateGrid - rebuilds the derived occupancy grid from scratch: every
// active player's segments first, then food into cells not already claimed.
// The fixed write order makes overlap resolution deterministic: a snake
// segment is never overwritten by food.
func (that *State) UpdateGrid() {
	that.grid = make(map[string]entity.Cell, len(that.grid))

	for _, player := range that.Players() {
		if !player.Alive {
			continue
		}

		for _, seg := range player.Segments {
			that.grid[seg.Key()] = entity.Cell{
				Kind:     entity.CellSnake,
				PlayerID: player.ID,
				Color:    player.Color,
			}
		}
	}

	for key := range that.food {
		if _, claimed := that.grid[key]; claimed {
			continue
		}
		that.grid[key] = entity.Cell{Kind: entity.CellFood}
	}
}

// Grid - returns the derived grid as rebuilt by the last UpdateGrid call.
func (that *State) Grid() map[string]entity.Cell {
	return that.grid
}

// RoundState - returns the current round phase.
func (that *State) RoundState() RoundState {
	return that.roundState
}

// RoundNumber - returns the 1-based round counter within the match.
func (that *State) RoundNumber() int {
	return that.roundNumber
}

// IntermissionEnd - returns when the current countdown or intermission ends.
// Zero when no intermission is running.
func (that *State) IntermissionEnd() time.Time {
	return that.intermissionEnd
}

// BeginCountdown - enters the countdown phase ending at the given time.
func (that *State) BeginCountdown(end time.Time) {
	that.roundState = RoundCountdown
	that.intermissionEnd = end
}

// BeginRound - enters the active phase and clears the intermission clock.
func (that *State) BeginRound() {
	that.roundState = RoundActive
	that.intermissionEnd = time.Time{}
}

// BeginWaiting - returns to the waiting phase for the next round. Scores
// carry over; food does not.
func (that *State) BeginWaiting() {
	that.roundState = RoundWaiting
	that.roundNumber++
	that.intermissionEnd = time.Time{}
	that.ClearFood()
}

// ResetMatch - resets the match after a game over: scores cleared, round
// counter back to 1, phase back to waiting.
func (that *State) ResetMatch() {
	that.roundState = RoundWaiting
	that.roundNumber = 1
	that.intermissionEnd = time.Time{}
	that.ClearFood()

	for _, player := range that.players {
		player.Score = 0
		player.GrowthQueue = 0
		player.Alive = false
	}
}

// MatchWinners - returns the players holding the maximum score. More than
// one entry means a tie.
func (that *State) MatchWinners() []*entity.Player {
	var winners []*entity.Player
	best := 0

	for _, player := range that.Players() {
		switch {
		case len(winners) == 0 || player.Score > best:
			winners = []*entity.Player{player}
			best = player.Score
		case player.Score == best:
			winners = append(winners, player)
		}
	}

	return winners
}
