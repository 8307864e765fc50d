package game

// Mark is the content of a single board cell.
type Mark string

const (
	EmptyCell Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"
)

// Status describes where a game stands.
type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusWon     Status = "won"
	StatusDraw    Status = "draw"
)

// BoardSide is the edge length of the grid; moves address cells as
// (row, col) pairs in [0, BoardSide).
const BoardSide = 3

// Board holds the 9 cells of the grid in row-major order.
type Board [BoardSide * BoardSide]Mark

// State is one snapshot of a game. It is a plain value: every accepted
// move produces a fresh copy and the previous snapshot stays valid, so
// holders can diff old against new or compare snapshots with ==.
type State struct {
	Board        Board  `json:"board"`
	ActivePlayer Mark   `json:"active_player"`
	Status       Status `json:"status"`
	Winner       Mark   `json:"winner,omitempty"`
}
