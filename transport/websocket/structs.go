package websocket

import "encoding/json"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	actionConnect = "connect"
	actionMove    = "move"
	actionError   = "error"
)

// ConnectPayload is the connect handshake sent by a client.
type ConnectPayload struct {
	PlayerName  string `json:"player_name"`
	PlayerColor string `json:"player_color,omitempty"`
	IsCPUGame   bool   `json:"is_cpu_game,omitempty"`
}

// ConnectResponse acknowledges a successful connect.
type ConnectResponse struct {
	PlayerID string `json:"player_id"`
	RoomID   string `json:"room_id"`
}

// MovePayload is one directional command from a client. Timestamp is client
// milliseconds since epoch and orders the player's own queue.
type MovePayload struct {
	Direction string `json:"direction"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorPayload carries a human-readable failure back to the client.
type ErrorPayload struct {
	Error string `json:"error"`
}
