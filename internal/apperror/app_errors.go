package apperror

import "errors"

var (
	ErrGameOver     = errors.New("game is already finished")
	ErrOutOfBounds  = errors.New("cell is out of bounds")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidState = errors.New("game state is inconsistent")
	ErrStaleState   = errors.New("game state has changed since it was read")
)
