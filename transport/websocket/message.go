package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const (
	actionSessionNew     = "session:new"
	actionSessionGet     = "session:get"
	actionGameTurn       = "game:turn"
	actionGameOpponent   = "game:opponent"
	actionGameDifficulty = "game:difficulty"
	actionGameStarter    = "game:starter"
	actionGameAgain      = "game:again"
	actionScoreReset     = "score:reset"
	actionError          = "error"
)

var errCellRequired = errors.New("cell is required")

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload - request fields sent by the client and the session pushed back.
type Payload struct {
	SessionID  string `json:"session_id,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Starter    string `json:"starter,omitempty"`
	Cell       *int   `json:"cell,omitempty"`

	Session *entity.SessionView `json:"session,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// connection - one client socket; writes are serialized, gorilla allows a single writer.
type connection struct {
	ws *websocket.Conn

	writeMu   sync.Mutex
	sessionMu sync.Mutex
	sessionID string

	// set while a computer move is pending
	replying atomic.Bool
}

func (that *connection) send(action string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.ws.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) bind(sessionID string) {
	that.sessionMu.Lock()
	defer that.sessionMu.Unlock()

	that.sessionID = sessionID
}

// session - the id named in the payload, or the one bound to the connection.
func (that *connection) session(payload Payload) string {
	if payload.SessionID != "" {
		return payload.SessionID
	}

	that.sessionMu.Lock()
	defer that.sessionMu.Unlock()

	return that.sessionID
}
