package game

import (
	"fmt"

	"github.com/hotseatgames/tictactoe-service/internal/apperror"
)

// winLines - the 8 lines that decide a game: 3 rows, 3 columns, 2 diagonals.
var winLines = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// NewGame - returns the initial state: empty board, X to move, game ongoing.
func NewGame() State {
	return State{
		Board:        Board{},
		ActivePlayer: MarkX,
		Status:       StatusOngoing,
	}
}

// ApplyMove - places the active player's mark at (row, col) and returns the
// resulting state. The receiver is never modified; callers keep a valid
// snapshot even when the move is rejected. The mark to place derives from the
// mark counts on the board, not from the stored ActivePlayer field, so turn
// parity cannot drift out of sync with the cells.
func (that State) ApplyMove(row, col int) (State, error) {
	if that.IsFinished() {
		return that, apperror.ErrGameOver
	}

	if !inBounds(row, col) {
		return that, fmt.Errorf("%w: row %d, col %d", apperror.ErrOutOfBounds, row, col)
	}

	cell := row*BoardSide + col
	if that.Board[cell] != EmptyCell {
		return that, fmt.Errorf("%w: row %d, col %d", apperror.ErrCellOccupied, row, col)
	}

	mark := nextMark(that.Board)

	next := that
	next.Board[cell] = mark
	next.ActivePlayer = mark

	switch winner := lineWinner(next.Board); {
	// one player completed a line
	case winner != EmptyCell:
		next.Status = StatusWon
		next.Winner = winner
	// board is full with no line
	case boardFull(next.Board):
		next.Status = StatusDraw
	// game continues, the turn passes
	default:
		next.ActivePlayer = toggleMark(mark)
	}

	return next, nil
}

// Cell - returns the mark at (row, col).
func (that State) Cell(row, col int) (Mark, error) {
	if !inBounds(row, col) {
		return EmptyCell, fmt.Errorf("%w: row %d, col %d", apperror.ErrOutOfBounds, row, col)
	}

	return that.Board[row*BoardSide+col], nil
}

// StatusLine - renders the one-line summary a board header shows.
func (that State) StatusLine() string {
	switch that.Status {
	case StatusWon:
		return fmt.Sprintf("%s wins", that.Winner)
	case StatusDraw:
		return "Draw"
	default:
		return fmt.Sprintf("%s's turn", that.ActivePlayer)
	}
}

func (that State) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that State) IsWon() bool {
	return that.Status == StatusWon
}

func (that State) IsDraw() bool {
	return that.Status == StatusDraw
}

// IsFinished reports whether the game reached a terminal state; only a reset
// leaves it.
func (that State) IsFinished() bool {
	return that.IsWon() || that.IsDraw()
}

// Validate - checks that a state produced outside the engine is one the engine
// could have reached. Snapshots cross the storage boundary as JSON; a record
// that was tampered with or corrupted there must not flow back into play.
func (that State) Validate() error {
	xs, os := countMarks(that.Board)
	for _, cell := range that.Board {
		if cell != EmptyCell && cell != MarkX && cell != MarkO {
			return fmt.Errorf("%w: unknown mark %q", apperror.ErrInvalidState, cell)
		}
	}

	if diff := xs - os; diff < 0 || diff > 1 {
		return fmt.Errorf("%w: %d X marks against %d O marks", apperror.ErrInvalidState, xs, os)
	}

	winner := lineWinner(that.Board)

	switch that.Status {
	case StatusOngoing:
		if winner != EmptyCell || boardFull(that.Board) {
			return fmt.Errorf("%w: board is terminal but status is ongoing", apperror.ErrInvalidState)
		}
		if that.Winner != EmptyCell {
			return fmt.Errorf("%w: ongoing game has winner %q", apperror.ErrInvalidState, that.Winner)
		}
		if that.ActivePlayer != nextMark(that.Board) {
			return fmt.Errorf("%w: active player %q does not match mark counts", apperror.ErrInvalidState, that.ActivePlayer)
		}
	case StatusWon:
		if winner == EmptyCell || winner != that.Winner {
			return fmt.Errorf("%w: no winning line for %q", apperror.ErrInvalidState, that.Winner)
		}
		if (winner == MarkX && xs != os+1) || (winner == MarkO && xs != os) {
			return fmt.Errorf("%w: winner %q does not match mark counts", apperror.ErrInvalidState, winner)
		}
	case StatusDraw:
		if winner != EmptyCell || !boardFull(that.Board) {
			return fmt.Errorf("%w: board is not a draw", apperror.ErrInvalidState)
		}
		if that.Winner != EmptyCell {
			return fmt.Errorf("%w: draw has winner %q", apperror.ErrInvalidState, that.Winner)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", apperror.ErrInvalidState, that.Status)
	}

	return nil
}

func inBounds(row, col int) bool {
	return row >= 0 && row < BoardSide && col >= 0 && col < BoardSide
}

// nextMark - derives whose turn it is from the mark counts alone: X moves when
// the counts are level, O when X is one ahead.
func nextMark(board Board) Mark {
	xs, os := countMarks(board)
	if xs > os {
		return MarkO
	}

	return MarkX
}

func countMarks(board Board) (xs, os int) {
	for _, cell := range board {
		switch cell {
		case MarkX:
			xs++
		case MarkO:
			os++
		}
	}

	return xs, os
}

func toggleMark(mark Mark) Mark {
	if mark == MarkX {
		return MarkO
	}

	return MarkX
}

// lineWinner - scans the 8 winning lines in a fixed order; a line wins iff all
// three cells are equal and non-empty. A move adds exactly one mark, so at most
// one symbol can hold a line and the first match is the only match.
func lineWinner(board Board) Mark {
	for _, line := range winLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

func boardFull(board Board) bool {
	for _, cell := range board {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}
