package service

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/snake-arena-backend/internal/apperror"
	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
	"github.com/rocketscienceinc/snake-arena-backend/internal/snake"
)

// cpuColor is the display color CPU opponents always get.
const cpuColor = "#9e9e9e"

// Monitor is the slice of metrics the room service reports into.
type Monitor interface {
	SetActiveRooms(count int)
	IncOnlinePlayers()
	DecOnlinePlayers()
}

// StatsRecorder persists career results once a match ends.
type StatsRecorder interface {
	RecordGameOver(winner *entity.Player, players []*entity.Player)
}

// RoomService multiplexes every room in the process: greedy assignment of
// joining players, room creation on demand, cleanup of emptied rooms and a
// periodic sweep as a backstop against removal races.
type RoomService struct {
	logger  *slog.Logger
	cfg     snake.Config
	stats   StatsRecorder
	monitor Monitor

	mu        sync.RWMutex
	rooms     map[string]*snake.Game
	roomOrder []string
	private   map[string]bool

	sweepStop chan struct{}
	sweepOnce sync.Once
}

// NewRoomService - creates the registry. stats and monitor may be nil.
func NewRoomService(logger *slog.Logger, cfg snake.Config, stats StatsRecorder, monitor Monitor) *RoomService {
	return &RoomService{
		logger:    logger.With("component", "room_service"),
		cfg:       cfg,
		stats:     stats,
		monitor:   monitor,
		rooms:     make(map[string]*snake.Game),
		private:   make(map[string]bool),
		sweepStop: make(chan struct{}),
	}
}

// JoinRequest is the connect handshake the transport layer forwards.
type JoinRequest struct {
	PlayerName  string
	PlayerColor string
	IsCPUGame   bool
}

// Join - places a player into a room. CPU games always get a fresh private
// room with one CPU opponent; everyone else is assigned greedily, first room
// with a vacancy in creation order, or a brand-new room when all are full.
func (that *RoomService) Join(req JoinRequest) (*snake.Game, *entity.Player, error) {
	player := &entity.Player{
		ID:    uuid.NewString(),
		Name:  req.PlayerName,
		Color: req.PlayerColor,
		Type:  entity.TypeHuman,
	}

	if req.IsCPUGame {
		room, err := that.createCPURoom(player)
		if err != nil {
			return nil, nil, err
		}

		that.playerJoined()

		return room, player, nil
	}

	room, err := that.assignGreedy(player)
	if err != nil {
		return nil, nil, err
	}

	that.playerJoined()

	return room, player, nil
}

func (that *RoomService) assignGreedy(player *entity.Player) (*snake.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, id := range that.roomOrder {
		room := that.rooms[id]
		if that.private[id] || room.HumanCount() >= that.cfg.RoomCapacity {
			continue
		}

		if err := room.Join(player); err != nil {
			continue
		}

		return room, nil
	}

	room := that.createRoomLocked(false)
	if err := room.Join(player); err != nil {
		return nil, fmt.Errorf("failed to join fresh room: %w", err)
	}

	return room, nil
}

func (that *RoomService) createCPURoom(player *entity.Player) (*snake.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room := that.createRoomLocked(true)

	if err := room.Join(player); err != nil {
		return nil, fmt.Errorf("failed to join cpu room: %w", err)
	}

	cpu := &entity.Player{
		ID:    uuid.NewString(),
		Name:  "CPU",
		Color: cpuColor,
		Type:  entity.TypeCPU,
	}
	if err := room.Join(cpu); err != nil {
		return nil, fmt.Errorf("failed to add cpu player: %w", err)
	}

	return room, nil
}

func (that *RoomService) createRoomLocked(private bool) *snake.Game {
	id := uuid.NewString()

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // placement randomness, not security

	room := snake.NewGame(id, that.logger, that.cfg, rng, that.onGameOver)
	room.Start()

	that.rooms[id] = room
	that.roomOrder = append(that.roomOrder, id)
	if private {
		that.private[id] = true
	}

	that.logger.Info("room created", "room_id", id, "rooms", len(that.rooms))
	that.reportRoomCount()

	return room
}

// Room - returns a room by id.
func (that *RoomService) Room(id string) (*snake.Game, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]

	return room, ok
}

// Rooms - returns every live room.
func (that *RoomService) Rooms() []*snake.Game {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]*snake.Game, 0, len(that.rooms))
	for _, id := range that.roomOrder {
		rooms = append(rooms, that.rooms[id])
	}

	return rooms
}

// RemovePlayer - removes a player from a room and tears the room down if it
// emptied. A room id the registry does not know is an integration bug on
// the caller's side and comes back as a hard error.
func (that *RoomService) RemovePlayer(roomID, playerID string) error {
	that.mu.Lock()
	room, ok := that.rooms[roomID]
	that.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	if err := room.Leave(playerID); err != nil {
		return fmt.Errorf("failed to remove player from room %s: %w", roomID, err)
	}

	if that.monitor != nil {
		that.monitor.DecOnlinePlayers()
	}

	if room.HumanCount() == 0 {
		that.removeRoom(roomID)
	}

	return nil
}

// StartSweep - starts the periodic sweep that removes any room found empty,
// a defense against races around direct removal. Stops when Close is called.
func (that *RoomService) StartSweep(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				that.sweepEmptyRooms()
			case <-that.sweepStop:
				return
			}
		}
	}()
}

func (that *RoomService) sweepEmptyRooms() {
	for _, room := range that.Rooms() {
		if room.HumanCount() == 0 {
			that.logger.Info("sweep removing empty room", "room_id", room.ID())
			that.removeRoom(room.ID())
		}
	}
}

func (that *RoomService) removeRoom(id string) {
	that.mu.Lock()

	room, ok := that.rooms[id]
	if !ok {
		that.mu.Unlock()
		return
	}

	delete(that.rooms, id)
	delete(that.private, id)
	for i, ordered := range that.roomOrder {
		if ordered == id {
			that.roomOrder = append(that.roomOrder[:i], that.roomOrder[i+1:]...)
			break
		}
	}

	that.reportRoomCount()
	that.mu.Unlock()

	room.Stop()

	that.logger.Info("room removed", "room_id", id)
}

// Close - stops the sweep and every room.
func (that *RoomService) Close() {
	that.sweepOnce.Do(func() {
		close(that.sweepStop)
	})

	for _, room := range that.Rooms() {
		that.removeRoom(room.ID())
	}
}

func (that *RoomService) onGameOver(winner *entity.Player, players []*entity.Player) {
	if that.stats == nil {
		return
	}

	that.stats.RecordGameOver(winner, players)
}

func (that *RoomService) playerJoined() {
	if that.monitor != nil {
		that.monitor.IncOnlinePlayers()
	}
}

func (that *RoomService) reportRoomCount() {
	if that.monitor != nil {
		that.monitor.SetActiveRooms(len(that.rooms))
	}
}
