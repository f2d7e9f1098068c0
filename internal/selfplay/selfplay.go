// Package selfplay pits two computer players against each other and tallies the results.
package selfplay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

type bot interface {
	ChooseMoveFor(board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error)
}

type Config struct {
	// X plays the player's mark, O the opponent's.
	X, O entity.Difficulty

	Games   int
	Threads int
	// Swap alternates the opening side every game, starting with X.
	Swap bool
}

// Result - one finished game.
type Result struct {
	Index   int
	Starter entity.Mark
	Outcome entity.Outcome
	Board   entity.Board
	Moves   int
}

// Summary - score from X's point of view: PlayerWins are X wins, OpponentWins are O wins.
type Summary struct {
	Score   entity.Score
	Results []Result
}

type Runner struct {
	logger *slog.Logger
	bot    bot
}

func NewRunner(logger *slog.Logger, bot bot) *Runner {
	return &Runner{
		logger: logger.With("component", "selfplay"),
		bot:    bot,
	}
}

// Run - plays cfg.Games games over cfg.Threads workers; stops at the first error or when ctx is done.
func (that *Runner) Run(ctx context.Context, cfg Config) (*Summary, error) {
	threads := max(cfg.Threads, 1)

	results := make([]Result, cfg.Games)
	jobs := make(chan int)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(jobs)
		for i := range cfg.Games {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var mu sync.Mutex
	for range threads {
		group.Go(func() error {
			for i := range jobs {
				starter := entity.PlayerMark
				if cfg.Swap && i%2 == 1 {
					starter = entity.OpponentMark
				}

				result, err := that.playOne(cfg, starter)
				if err != nil {
					return fmt.Errorf("game %d: %w", i, err)
				}
				result.Index = i

				mu.Lock()
				results[i] = result
				mu.Unlock()

				that.logger.Debug("game finished", "game", i, "starter", starter, "outcome", result.Outcome)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Results: results}
	for _, result := range results {
		summary.Score.Record(result.Outcome)
	}

	return summary, nil
}

func (that *Runner) playOne(cfg Config, starter entity.Mark) (Result, error) {
	engine := tictactoe.NewEngine()
	mark := starter
	moves := 0

	outcome, _ := engine.Evaluate()
	for !outcome.IsTerminal() {
		difficulty := cfg.X
		if mark == entity.OpponentMark {
			difficulty = cfg.O
		}

		cell, err := that.bot.ChooseMoveFor(engine.Board(), mark, difficulty)
		if err != nil {
			return Result{}, fmt.Errorf("failed to choose move: %w", err)
		}

		if err = engine.ApplyMove(cell, mark); err != nil {
			return Result{}, fmt.Errorf("failed to apply move: %w", err)
		}

		moves++
		mark = mark.Other()
		outcome, _ = engine.Evaluate()
	}

	return Result{
		Starter: starter,
		Outcome: outcome,
		Board:   engine.Board(),
		Moves:   moves,
	}, nil
}
