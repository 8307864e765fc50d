package websocket

import (
	"encoding/json"

	"github.com/hotseatgames/tictactoe-service/internal/game"
)

const (
	actionConnect      = "connect"
	actionGameState    = "game:state"
	actionGameTurn     = "game:turn"
	actionGameReset    = "game:reset"
	actionPlayerRename = "player:rename"
	actionError        = "error"
)

const (
	codeGameOver        = "game_over"
	codeOutOfBounds     = "out_of_bounds"
	codeCellOccupied    = "cell_occupied"
	codeStaleState      = "stale_state"
	codeSessionNotFound = "session_not_found"
	codeUnknownSlot     = "unknown_slot"
	codeInvalidName     = "invalid_name"
	codeBadRequest      = "bad_request"
	codeInternal        = "internal"
)

// Message represents one socket frame: an action name and its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ConnectPayload - an empty session_id asks for a fresh session, a known one
// resumes it.
type ConnectPayload struct {
	SessionID string `json:"session_id,omitempty"`
}

// TurnPayload carries a move intent. Row and col are pointers so a missing
// coordinate is told apart from a zero one.
type TurnPayload struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type RenamePayload struct {
	Symbol game.Mark `json:"symbol"`
	Name   string    `json:"name"`
}

// ErrorPayload goes only to the client whose intent was rejected; everyone
// else never learns it happened.
type ErrorPayload struct {
	Action  string `json:"action"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
