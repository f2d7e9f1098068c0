package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type botService interface {
	ChooseMove(board entity.Board, difficulty entity.Difficulty) (int, error)
}

// GameManager - drives the turn cycle of every session: human move, opponent move, terminal, new game.
type GameManager struct {
	logger *slog.Logger

	sessionRepo sessionRepo
	bot         botService

	// serializes load-modify-save of sessions
	mu  sync.Mutex
	now func() time.Time
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo, bot botService) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		sessionRepo: sessionRepo,
		bot:         bot,

		now: time.Now,
	}
}

func (that *GameManager) CreateSession(ctx context.Context, difficulty entity.Difficulty, starter entity.Starter) (*entity.SessionView, error) {
	session := entity.NewSession(uuid.NewString(), difficulty, starter, that.now())

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "sessionID", session.ID, "difficulty", difficulty, "starter", starter)

	return viewOf(session), nil
}

func (that *GameManager) GetSession(ctx context.Context, id string) (*entity.SessionView, error) {
	session, err := that.getSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return viewOf(session), nil
}

// MakeTurn - applies the human's move; the opponent does not answer here.
func (that *GameManager) MakeTurn(ctx context.Context, id string, cell int) (*entity.SessionView, error) {
	return that.update(ctx, id, func(session *entity.Session) error {
		if err := confirmPhase(session, entity.AwaitingPlayerMove); err != nil {
			return err
		}

		return that.applyMove(session, cell, entity.PlayerMark)
	})
}

// OpponentTurn - lets the computer move at the session's current difficulty.
func (that *GameManager) OpponentTurn(ctx context.Context, id string) (*entity.SessionView, error) {
	return that.update(ctx, id, func(session *entity.Session) error {
		if err := confirmPhase(session, entity.AwaitingOpponentMove); err != nil {
			return err
		}

		cell, err := that.bot.ChooseMove(session.Board, session.Difficulty)
		if err != nil {
			return fmt.Errorf("bot failed to choose a move: %w", err)
		}

		return that.applyMove(session, cell, entity.OpponentMark)
	})
}

// SetDifficulty - used from the next opponent move on; the board is kept.
func (that *GameManager) SetDifficulty(ctx context.Context, id string, difficulty entity.Difficulty) (*entity.SessionView, error) {
	return that.update(ctx, id, func(session *entity.Session) error {
		session.Difficulty = difficulty
		return nil
	})
}

// SetStarter - switches who opens and starts a new game.
func (that *GameManager) SetStarter(ctx context.Context, id string, starter entity.Starter) (*entity.SessionView, error) {
	return that.update(ctx, id, func(session *entity.Session) error {
		session.Starter = starter
		session.NewGame()
		return nil
	})
}

// PlayAgain - starts a new game; an unfinished game is dropped without scoring.
func (that *GameManager) PlayAgain(ctx context.Context, id string) (*entity.SessionView, error) {
	return that.update(ctx, id, func(session *entity.Session) error {
		session.NewGame()
		return nil
	})
}

// ResetScores - zeroes the scoreboard and starts a new game.
func (that *GameManager) ResetScores(ctx context.Context, id string) (*entity.SessionView, error) {
	return that.update(ctx, id, func(session *entity.Session) error {
		session.Score.Reset()
		session.NewGame()
		return nil
	})
}

func (that *GameManager) CloseSession(ctx context.Context, id string) error {
	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session closed", "sessionID", id)

	return nil
}

func (that *GameManager) update(ctx context.Context, id string, mutate func(session *entity.Session) error) (*entity.SessionView, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.getSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = mutate(session); err != nil {
		return viewOf(session), err
	}

	session.UpdatedAt = that.now()
	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return viewOf(session), nil
}

// applyMove - places mark through the engine and counts the game once it ends.
func (that *GameManager) applyMove(session *entity.Session, cell int, mark entity.Mark) error {
	engine := tictactoe.Restore(session.Board)

	if err := engine.ApplyMove(cell, mark); err != nil {
		return fmt.Errorf("failed to make turn: %w", err)
	}

	session.Board = engine.Board()

	outcome, line := engine.Evaluate()
	if outcome.IsTerminal() {
		session.Score.Record(outcome)
		that.logger.Info("game finished", "sessionID", session.ID, "outcome", outcome, "line", line, "score", session.Score.String())
	}

	return nil
}

func (that *GameManager) getSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// confirmPhase - refuses moves out of turn and moves on a finished game.
func confirmPhase(session *entity.Session, expected entity.Phase) error {
	switch phase := session.Phase(); {
	case phase == expected:
		return nil
	case phase == entity.Terminal:
		return apperror.ErrGameFinished
	default:
		return apperror.ErrNotYourTurn
	}
}

func viewOf(session *entity.Session) *entity.SessionView {
	view := session.View()
	return &view
}
