package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/snake-arena-backend/internal/apperror"
	"github.com/rocketscienceinc/snake-arena-backend/internal/entity"
	"github.com/rocketscienceinc/snake-arena-backend/internal/service"
	"github.com/rocketscienceinc/snake-arena-backend/internal/snake"
)

const readLimit = 4096

// roomService is what the transport needs from the room layer.
type roomService interface {
	Join(req service.JoinRequest) (*snake.Game, *entity.Player, error)
	RemovePlayer(roomID, playerID string) error
}

// inputMonitor counts input traffic; may be nil.
type inputMonitor interface {
	IncInputsReceived()
	IncInputsDropped()
}

// Server bridges WebSocket connections and the simulation: the connect
// handshake assigns a room, move messages feed the room's input buffer, and
// each room's event stream fans out through a hub.
type Server struct {
	logger  *slog.Logger
	rooms   roomService
	monitor inputMonitor

	upgrader websocket.Upgrader

	mu   sync.Mutex
	hubs map[string]*roomHub
}

// New - creates the WebSocket server. monitor may be nil.
func New(logger *slog.Logger, rooms roomService, monitor inputMonitor) *Server {
	return &Server{
		logger:  logger.With("component", "ws_server"),
		rooms:   rooms,
		monitor: monitor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is the reverse proxy's problem.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		hubs: make(map[string]*roomHub),
	}
}

// Start - starts the WebSocket server and blocks until it fails or the
// context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.handleSocket)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 0, // connections are long-lived
		IdleTimeout: 0,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleSocket", "remote", r.RemoteAddr)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn.SetReadLimit(readLimit)

	room, player, err := that.awaitConnect(conn)
	if err != nil {
		log.Error("connect handshake failed", "error", err)
		that.writeError(conn, err)
		_ = conn.Close()
		return
	}

	log = log.With("player_id", player.ID, "room_id", room.ID())
	log.Info("player connected")

	c := newClient(player.ID, that.logger, conn)

	hub := that.hubFor(room)
	hub.addClient(c)

	c.enqueueAction(actionConnect, ConnectResponse{PlayerID: player.ID, RoomID: room.ID()})

	that.readLoop(conn, room, player.ID)

	hub.removeClient(player.ID)

	if err := that.rooms.RemovePlayer(room.ID(), player.ID); err != nil {
		// An unknown room here means the registry and the transport
		// disagree about what exists; that is a bug, not a user error.
		log.Error("failed to remove player from room", "error", err)
	}

	log.Info("player disconnected")
}

// awaitConnect - the first client message must be the connect handshake.
func (that *Server) awaitConnect(conn *websocket.Conn) (*snake.Game, *entity.Player, error) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read handshake: %w", err)
	}

	var message Message
	if err = json.Unmarshal(raw, &message); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal handshake: %w", err)
	}

	if message.Action != actionConnect {
		return nil, nil, fmt.Errorf("expected %q action, got %q", actionConnect, message.Action)
	}

	var payload ConnectPayload
	if err = json.Unmarshal(message.Payload, &payload); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal connect payload: %w", err)
	}

	if payload.PlayerName == "" {
		return nil, nil, errors.New("player name is required")
	}

	room, player, err := that.rooms.Join(service.JoinRequest{
		PlayerName:  payload.PlayerName,
		PlayerColor: payload.PlayerColor,
		IsCPUGame:   payload.IsCPUGame,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to join a room: %w", err)
	}

	return room, player, nil
}

// writeError - sends one error envelope before the socket closes.
func (that *Server) writeError(conn *websocket.Conn, cause error) {
	payload, err := json.Marshal(ErrorPayload{Error: cause.Error()})
	if err != nil {
		return
	}

	message, err := json.Marshal(Message{Action: actionError, Payload: payload})
	if err != nil {
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, message)
}

// readLoop - feeds move messages into the room until the socket dies or the
// player gets banned for flooding.
func (that *Server) readLoop(conn *websocket.Conn, room *snake.Game, playerID string) {
	log := that.logger.With("method", "readLoop", "player_id", playerID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			continue
		}

		if message.Action != actionMove {
			log.Debug("unexpected action", "action", message.Action)
			continue
		}

		var payload MovePayload
		if err = json.Unmarshal(message.Payload, &payload); err != nil {
			log.Debug("failed to unmarshal move payload", "error", err)
			continue
		}

		if that.monitor != nil {
			that.monitor.IncInputsReceived()
		}

		timestamp := time.UnixMilli(payload.Timestamp)
		if err = room.HandleMove(playerID, payload.Direction, timestamp); err != nil {
			if errors.Is(err, apperror.ErrRateLimitExceeded) {
				// The hub delivers the targeted signal and drops the
				// socket; this loop ends on the resulting read error.
				log.Warn("player exceeded rate limit")
			}

			if that.monitor != nil {
				that.monitor.IncInputsDropped()
			}
		}
	}
}

// hubFor - returns the fan-out hub for a room, creating it on first use.
func (that *Server) hubFor(room *snake.Game) *roomHub {
	that.mu.Lock()
	defer that.mu.Unlock()

	if hub, ok := that.hubs[room.ID()]; ok {
		return hub
	}

	hub := newRoomHub(that.logger, room, that.dropHub)
	that.hubs[room.ID()] = hub

	return hub
}

func (that *Server) dropHub(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.hubs, roomID)
}
