package entity

import "github.com/hotseatgames/tictactoe-service/internal/game"

// Player is the identity of one board slot: which mark it plays and what the
// label next to the board shows. Each slot owns its record; renaming it never
// touches game state.
type Player struct {
	Symbol game.Mark `json:"symbol"`
	Name   string    `json:"name"`
}

// DefaultPlayers - the two slots every fresh session starts with. Each call
// returns new records so sessions never share identity state.
func DefaultPlayers() []*Player {
	return []*Player{
		{Symbol: game.MarkX, Name: "Player 1"},
		{Symbol: game.MarkO, Name: "Player 2"},
	}
}
