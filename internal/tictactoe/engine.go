package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

// Engine - owns one board and enforces move legality on it.
type Engine struct {
	board entity.Board
}

func NewEngine() *Engine {
	return &Engine{}
}

// Restore - builds an engine around a previously saved board.
func Restore(board entity.Board) *Engine {
	return &Engine{board: board}
}

// ApplyMove - places mark on cell; never overwrites an existing mark.
func (that *Engine) ApplyMove(cell int, mark entity.Mark) error {
	if err := validateMove(&that.board, cell, mark); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrIllegalMove, err)
	}

	that.board[cell] = mark

	return nil
}

func (that *Engine) Evaluate() (entity.Outcome, entity.WinningLine) {
	return that.board.Evaluate()
}

func (that *Engine) Reset() {
	that.board = entity.Board{}
}

// Board - returns a copy of the current board.
func (that *Engine) Board() entity.Board {
	return that.board
}

// validateMove - checks if the move is valid.
func validateMove(board *entity.Board, cell int, mark entity.Mark) error {
	if cell < 0 || cell >= len(board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if !mark.IsValid() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if board[cell] != entity.EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return nil
}
