package entity

import (
	"github.com/hotseatgames/tictactoe-service/internal/game"
)

// Session is one rendered board together with its two local player slots.
// The game state inside it is an immutable snapshot; the session manager
// replaces it wholesale on every accepted mutation. Version counts accepted
// mutations and is the token the storage layer compares on writes.
type Session struct {
	ID      string     `json:"id"`
	Game    game.State `json:"game"`
	Version uint64     `json:"version"`
	Players []*Player  `json:"players,omitempty"`
}

// NewSession - returns a session holding a fresh game.
func NewSession(id string) *Session {
	return &Session{
		ID:   id,
		Game: game.NewGame(),
	}
}

// PlayerBySymbol - returns the identity slot playing the given mark, or nil.
func (that *Session) PlayerBySymbol(symbol game.Mark) *Player {
	for _, player := range that.Players {
		if player.Symbol == symbol {
			return player
		}
	}

	return nil
}
