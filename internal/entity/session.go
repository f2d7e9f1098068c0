package entity

import "time"

// Phase - position of a game in its turn cycle.
type Phase string

const (
	AwaitingPlayerMove   Phase = "awaiting_player_move"
	AwaitingOpponentMove Phase = "awaiting_opponent_move"
	Terminal             Phase = "terminal"
)

// Session - one human's running series of games against the computer.
type Session struct {
	ID         string     `json:"id"`
	Board      Board      `json:"board"`
	Difficulty Difficulty `json:"difficulty"`
	Starter    Starter    `json:"starter"`
	Score      Score      `json:"score"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SessionView - everything a view needs to render a session.
type SessionView struct {
	ID          string          `json:"id"`
	Board       Board           `json:"board"`
	Enabled     [BoardSize]bool `json:"enabled"`
	Phase       Phase           `json:"phase"`
	Outcome     Outcome         `json:"outcome"`
	WinningLine WinningLine     `json:"winning_line,omitempty"`
	Message     string          `json:"message,omitempty"`
	Score       Score           `json:"score"`
	Difficulty  Difficulty      `json:"difficulty"`
	Starter     Starter         `json:"starter"`
}

func NewSession(id string, difficulty Difficulty, starter Starter, now time.Time) *Session {
	return &Session{
		ID:         id,
		Difficulty: difficulty,
		Starter:    starter,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Phase - derives whose move it is from the board and the configured starter.
func (that *Session) Phase() Phase {
	if outcome, _ := that.Board.Evaluate(); outcome.IsTerminal() {
		return Terminal
	}

	player, opponent := that.Board.Count(PlayerMark), that.Board.Count(OpponentMark)

	if that.Starter == StarterOpponent {
		if opponent > player {
			return AwaitingPlayerMove
		}
		return AwaitingOpponentMove
	}

	if player == opponent {
		return AwaitingPlayerMove
	}
	return AwaitingOpponentMove
}

// NewGame - clears the board, the score is kept.
func (that *Session) NewGame() {
	that.Board = Board{}
}

func (that *Session) View() SessionView {
	outcome, line := that.Board.Evaluate()
	phase := that.Phase()

	var enabled [BoardSize]bool
	if phase == AwaitingPlayerMove {
		for _, cell := range that.Board.EmptyCells() {
			enabled[cell] = true
		}
	}

	return SessionView{
		ID:          that.ID,
		Board:       that.Board,
		Enabled:     enabled,
		Phase:       phase,
		Outcome:     outcome,
		WinningLine: line,
		Message:     outcome.Message(),
		Score:       that.Score,
		Difficulty:  that.Difficulty,
		Starter:     that.Starter,
	}
}
