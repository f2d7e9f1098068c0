package entity

type Mark string

const (
	EmptyCell    Mark = ""
	PlayerMark   Mark = "X"
	OpponentMark Mark = "O"
)

const BoardSize = 9

// WinCombos - every line that wins when uniformly marked: rows, columns, diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - 3x3 grid stored row-major.
type Board [BoardSize]Mark

// WinningLine - cell indices of the line that decided the game, nil if nobody won.
type WinningLine []int

// Other - returns the mark of the other side.
func (that Mark) Other() Mark {
	switch that {
	case PlayerMark:
		return OpponentMark
	case OpponentMark:
		return PlayerMark
	default:
		return EmptyCell
	}
}

// IsValid - reports whether the mark can be placed on the board.
func (that Mark) IsValid() bool {
	return that == PlayerMark || that == OpponentMark
}

// EmptyCells - returns indices of empty cells in ascending order.
func (that *Board) EmptyCells() []int {
	cells := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that *Board) Count(mark Mark) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}

	return count
}

// Evaluate - derives the outcome from the board contents.
// The player's lines are checked before the opponent's, so PlayerWin wins a tie.
func (that *Board) Evaluate() (Outcome, WinningLine) {
	if line, ok := that.lineOf(PlayerMark); ok {
		return PlayerWin, line
	}

	if line, ok := that.lineOf(OpponentMark); ok {
		return OpponentWin, line
	}

	if that.IsFull() {
		return Draw, nil
	}

	return InProgress, nil
}

func (that *Board) lineOf(mark Mark) (WinningLine, bool) {
	for _, combo := range WinCombos {
		if that[combo[0]] == mark && that[combo[1]] == mark && that[combo[2]] == mark {
			return WinningLine{combo[0], combo[1], combo[2]}, true
		}
	}

	return nil, false
}
