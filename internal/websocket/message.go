package websocket

type OutgoingMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// IncomingMessage is a client frame. From is filled by the server from the
// authenticated connection, never trusted from the client.
type IncomingMessage struct {
	From  string `json:"from"`
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Server events.
const (
	EventSnapshot = "snapshot"
	EventError    = "error"
	EventGameOver = "game_over"
	EventMatched  = "matched"
	EventChat     = "chat"
)
