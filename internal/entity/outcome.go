package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
)

type Outcome string

const (
	InProgress  Outcome = "in_progress"
	PlayerWin   Outcome = "player_win"
	OpponentWin Outcome = "opponent_win"
	Draw        Outcome = "draw"
)

func (that Outcome) IsTerminal() bool {
	return that == PlayerWin || that == OpponentWin || that == Draw
}

// Message - text shown to the human when the game ends.
func (that Outcome) Message() string {
	switch that {
	case PlayerWin:
		return "You win!"
	case OpponentWin:
		return "Computer wins!"
	case Draw:
		return "It's a draw!"
	default:
		return ""
	}
}

// WinnerMark - mark of the side that won, EmptyCell for a draw or a running game.
func (that Outcome) WinnerMark() Mark {
	switch that {
	case PlayerWin:
		return PlayerMark
	case OpponentWin:
		return OpponentMark
	default:
		return EmptyCell
	}
}

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func ParseDifficulty(value string) (Difficulty, error) {
	switch difficulty := Difficulty(strings.ToLower(strings.TrimSpace(value))); difficulty {
	case Easy, Medium, Hard:
		return difficulty, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, value)
	}
}

// Starter - who makes the first move of every game in a session.
type Starter string

const (
	StarterPlayer   Starter = "player"
	StarterOpponent Starter = "opponent"
)

func ParseStarter(value string) (Starter, error) {
	switch starter := Starter(strings.ToLower(strings.TrimSpace(value))); starter {
	case StarterPlayer, StarterOpponent:
		return starter, nil
	case "computer":
		return StarterOpponent, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownStarter, value)
	}
}
