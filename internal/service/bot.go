package service

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

// mediumRandomChance - share of Medium moves that are played at random.
const mediumRandomChance = 0.5

type BotService interface {
	ChooseMove(board entity.Board, difficulty entity.Difficulty) (int, error)
	ChooseMoveFor(board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error)
}

type botService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBotService - creates the computer opponent. A nil rnd is replaced by a time-seeded generator.
func NewBotService(rnd *rand.Rand) BotService {
	if rnd == nil {
		seed := uint64(time.Now().UnixNano()) //nolint: gosec // seed only
		rnd = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	return &botService{
		rnd: rnd,
	}
}

// ChooseMove - picks the opponent's cell for the given difficulty.
func (that *botService) ChooseMove(board entity.Board, difficulty entity.Difficulty) (int, error) {
	return that.ChooseMoveFor(board, entity.OpponentMark, difficulty)
}

// ChooseMoveFor - picks a cell for whichever side holds mark.
func (that *botService) ChooseMoveFor(board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error) {
	if !mark.IsValid() {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return 0, apperror.ErrNoLegalMove
	}

	switch difficulty {
	case entity.Easy:
		return that.randomCell(availableCells), nil
	case entity.Medium:
		if that.coinFlip() {
			return that.randomCell(availableCells), nil
		}
		return BestMove(board, mark)
	default:
		return BestMove(board, mark)
	}
}

func (that *botService) randomCell(cells []int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return cells[that.rnd.IntN(len(cells))]
}

func (that *botService) coinFlip() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.Float64() < mediumRandomChance
}
