package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

func TestNewEngine(t *testing.T) {
	// When: create a new engine
	engine := NewEngine()

	// Then: the board is empty and the game is in progress
	assert.Equal(t, entity.Board{}, engine.Board())

	outcome, line := engine.Evaluate()
	assert.Equal(t, entity.InProgress, outcome)
	assert.Empty(t, line)
}

func TestEngine_ApplyMove(t *testing.T) {
	t.Run("ApplyMove", func(t *testing.T) {
		// Given: a new engine
		engine := NewEngine()

		// When: the player marks the center
		err := engine.ApplyMove(4, entity.PlayerMark)
		require.NoError(t, err)

		// Then: only that cell holds the mark
		expected := entity.Board{}
		expected[4] = entity.PlayerMark
		assert.Equal(t, expected, engine.Board())
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: the center is taken by the player
		engine := NewEngine()
		require.NoError(t, engine.ApplyMove(4, entity.PlayerMark))

		// When: the opponent tries the same cell
		err := engine.ApplyMove(4, entity.OpponentMark)

		// Then: the move is refused as illegal because of the occupied cell
		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)

		// And: the player's mark is not overwritten
		assert.Equal(t, entity.PlayerMark, engine.Board()[4])
	})

	t.Run("Invalid Cell", func(t *testing.T) {
		engine := NewEngine()

		// When: an index past the board is passed
		err := engine.ApplyMove(9, entity.PlayerMark)

		// Then: ErrIllegalMove wrapping ErrInvalidCell is returned
		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Invalid Negative Cell", func(t *testing.T) {
		engine := NewEngine()

		err := engine.ApplyMove(-1, entity.PlayerMark)

		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Empty mark is rejected", func(t *testing.T) {
		engine := NewEngine()

		err := engine.ApplyMove(0, entity.EmptyCell)

		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.ErrorIs(t, err, apperror.ErrInvalidMark)
		assert.Equal(t, entity.Board{}, engine.Board())
	})
}

func TestEngine_Evaluate(t *testing.T) {
	t.Run("Filling the last cell without a line is a draw", func(t *testing.T) {
		// Given: a board with one empty cell and no line
		engine := Restore(entity.Board{
			entity.PlayerMark, entity.OpponentMark, entity.PlayerMark,
			entity.PlayerMark, entity.OpponentMark, entity.OpponentMark,
			entity.OpponentMark, entity.PlayerMark, entity.EmptyCell,
		})

		// When: the last cell is filled
		require.NoError(t, engine.ApplyMove(8, entity.PlayerMark))

		// Then: the game is a draw
		outcome, line := engine.Evaluate()
		assert.Equal(t, entity.Draw, outcome)
		assert.Empty(t, line)
	})

	t.Run("Completing a line wins", func(t *testing.T) {
		engine := Restore(entity.Board{
			entity.OpponentMark, entity.PlayerMark, entity.EmptyCell,
			entity.OpponentMark, entity.PlayerMark, entity.EmptyCell,
			entity.EmptyCell, entity.EmptyCell, entity.EmptyCell,
		})

		require.NoError(t, engine.ApplyMove(6, entity.OpponentMark))

		outcome, line := engine.Evaluate()
		assert.Equal(t, entity.OpponentWin, outcome)
		assert.Equal(t, entity.WinningLine{0, 3, 6}, line)
	})
}

func TestEngine_Reset(t *testing.T) {
	// Given: a finished game
	engine := Restore(entity.Board{
		entity.PlayerMark, entity.PlayerMark, entity.PlayerMark,
		entity.OpponentMark, entity.OpponentMark, entity.EmptyCell,
		entity.EmptyCell, entity.EmptyCell, entity.EmptyCell,
	})
	outcome, _ := engine.Evaluate()
	require.Equal(t, entity.PlayerWin, outcome)

	// When: resetting the engine
	engine.Reset()

	// Then: all cells are empty and the game is in progress again
	assert.Equal(t, entity.Board{}, engine.Board())

	outcome, line := engine.Evaluate()
	assert.Equal(t, entity.InProgress, outcome)
	assert.Empty(t, line)
}
