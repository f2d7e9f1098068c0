package entity

import "fmt"

// Score - running results of one session.
type Score struct {
	PlayerWins   int `json:"player_wins"`
	OpponentWins int `json:"opponent_wins"`
	Draws        int `json:"draws"`
}

// Record - counts a finished game; a game still in progress is ignored.
func (that *Score) Record(outcome Outcome) {
	switch outcome {
	case PlayerWin:
		that.PlayerWins++
	case OpponentWin:
		that.OpponentWins++
	case Draw:
		that.Draws++
	case InProgress:
	}
}

func (that *Score) Reset() {
	*that = Score{}
}

func (that *Score) Total() int {
	return that.PlayerWins + that.OpponentWins + that.Draws
}

func (that Score) String() string {
	return fmt.Sprintf("Player: %d | Computer: %d | Draws: %d", that.PlayerWins, that.OpponentWins, that.Draws)
}
