package service

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const (
	scoreWin  = 1
	scoreLoss = -1
	scoreDraw = 0
)

// BestMove - exhaustive minimax for the side holding mark.
// Scores carry no depth discount and ties keep the lowest index.
func BestMove(board entity.Board, mark entity.Mark) (int, error) {
	if !mark.IsValid() {
		return 0, apperror.ErrInvalidMark
	}

	bestScore := math.MinInt
	bestCell := -1

	for cell := range board {
		if board[cell] != entity.EmptyCell {
			continue
		}

		board[cell] = mark
		score := minimax(&board, mark, false)
		board[cell] = entity.EmptyCell

		if score > bestScore {
			bestScore = score
			bestCell = cell
		}
	}

	if bestCell < 0 {
		return 0, apperror.ErrNoLegalMove
	}

	return bestCell, nil
}

// ScoreMoves - minimax value of every empty cell for the side holding mark.
func ScoreMoves(board entity.Board, mark entity.Mark) map[int]int {
	scores := make(map[int]int)

	for _, cell := range board.EmptyCells() {
		board[cell] = mark
		scores[cell] = minimax(&board, mark, false)
		board[cell] = entity.EmptyCell
	}

	return scores
}

// minimax - value of board for me; maximizing is true when me is to move.
func minimax(board *entity.Board, me entity.Mark, maximizing bool) int {
	switch outcome, _ := board.Evaluate(); outcome {
	case entity.InProgress:
	case entity.Draw:
		return scoreDraw
	default:
		if outcome.WinnerMark() == me {
			return scoreWin
		}
		return scoreLoss
	}

	mover := me
	best := math.MinInt
	if !maximizing {
		mover = me.Other()
		best = math.MaxInt
	}

	for cell := range board {
		if board[cell] != entity.EmptyCell {
			continue
		}

		board[cell] = mover
		score := minimax(board, me, !maximizing)
		board[cell] = entity.EmptyCell

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}
