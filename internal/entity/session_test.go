package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Phase(t *testing.T) {
	now := time.Now()

	t.Run("Player opens when the player starts", func(t *testing.T) {
		session := NewSession("s1", Hard, StarterPlayer, now)

		assert.Equal(t, AwaitingPlayerMove, session.Phase())

		session.Board[4] = x
		assert.Equal(t, AwaitingOpponentMove, session.Phase())

		session.Board[0] = o
		assert.Equal(t, AwaitingPlayerMove, session.Phase())
	})

	t.Run("Opponent opens when the opponent starts", func(t *testing.T) {
		session := NewSession("s1", Hard, StarterOpponent, now)

		assert.Equal(t, AwaitingOpponentMove, session.Phase())

		session.Board[4] = o
		assert.Equal(t, AwaitingPlayerMove, session.Phase())

		session.Board[0] = x
		assert.Equal(t, AwaitingOpponentMove, session.Phase())
	})

	t.Run("Finished board is terminal", func(t *testing.T) {
		session := NewSession("s1", Hard, StarterPlayer, now)
		session.Board = Board{
			x, x, x,
			o, o, e,
			e, e, e,
		}

		assert.Equal(t, Terminal, session.Phase())
	})
}

func TestSession_View(t *testing.T) {
	now := time.Now()

	t.Run("Only empty cells are enabled on the player's turn", func(t *testing.T) {
		// Given: a session where the player is to move
		session := NewSession("s1", Medium, StarterPlayer, now)
		session.Board = Board{
			x, e, e,
			e, o, e,
			e, e, e,
		}

		// When: building the view
		view := session.View()

		// Then: filled cells are disabled and the rest enabled
		assert.Equal(t, [BoardSize]bool{false, true, true, true, false, true, true, true, true}, view.Enabled)
		assert.Equal(t, AwaitingPlayerMove, view.Phase)
		assert.Equal(t, InProgress, view.Outcome)
		assert.Empty(t, view.WinningLine)
		assert.Empty(t, view.Message)
		assert.Equal(t, Medium, view.Difficulty)
	})

	t.Run("Every cell is disabled while the opponent thinks", func(t *testing.T) {
		session := NewSession("s1", Hard, StarterOpponent, now)

		view := session.View()

		assert.Equal(t, [BoardSize]bool{}, view.Enabled)
		assert.Equal(t, AwaitingOpponentMove, view.Phase)
	})

	t.Run("Finished game exposes the line and message", func(t *testing.T) {
		// Given: a game the opponent won
		session := NewSession("s1", Hard, StarterPlayer, now)
		session.Board = Board{
			x, x, o,
			e, o, x,
			o, e, e,
		}
		session.Score = Score{OpponentWins: 1}

		// When: building the view
		view := session.View()

		// Then: the board is locked and the result is reported
		assert.Equal(t, [BoardSize]bool{}, view.Enabled)
		assert.Equal(t, Terminal, view.Phase)
		assert.Equal(t, OpponentWin, view.Outcome)
		assert.Equal(t, WinningLine{2, 4, 6}, view.WinningLine)
		assert.Equal(t, "Computer wins!", view.Message)
		assert.Equal(t, Score{OpponentWins: 1}, view.Score)
	})

	t.Run("NewGame keeps the score", func(t *testing.T) {
		session := NewSession("s1", Hard, StarterPlayer, now)
		session.Board[0] = x
		session.Score = Score{Draws: 2}

		session.NewGame()

		assert.Equal(t, Board{}, session.Board)
		assert.Equal(t, Score{Draws: 2}, session.Score)
	})
}
