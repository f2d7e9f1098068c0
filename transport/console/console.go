// Package console is a terminal view of a single session.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

var errUnknownCommand = errors.New("unknown command, type help")

const helpText = `commands:
  1..9                 play a cell, numbered left to right, top to bottom
  difficulty <level>   easy, medium or hard
  first player|computer  choose who opens, starts a new game
  again                start a new game
  reset                zero the scoreboard, starts a new game
  help                 show this text
  quit                 leave
`

type gameManager interface {
	CreateSession(ctx context.Context, difficulty entity.Difficulty, starter entity.Starter) (*entity.SessionView, error)
	MakeTurn(ctx context.Context, id string, cell int) (*entity.SessionView, error)
	OpponentTurn(ctx context.Context, id string) (*entity.SessionView, error)
	SetDifficulty(ctx context.Context, id string, difficulty entity.Difficulty) (*entity.SessionView, error)
	SetStarter(ctx context.Context, id string, starter entity.Starter) (*entity.SessionView, error)
	PlayAgain(ctx context.Context, id string) (*entity.SessionView, error)
	ResetScores(ctx context.Context, id string) (*entity.SessionView, error)
	CloseSession(ctx context.Context, id string) error
}

type Options struct {
	Difficulty    entity.Difficulty
	Starter       entity.Starter
	OpponentDelay time.Duration
}

type Console struct {
	logger      *slog.Logger
	gameManager gameManager
	options     Options

	in  io.Reader
	out io.Writer
}

func New(logger *slog.Logger, gameManager gameManager, options Options, in io.Reader, out io.Writer) *Console {
	return &Console{
		logger:      logger.With("component", "console"),
		gameManager: gameManager,
		options:     options,
		in:          in,
		out:         out,
	}
}

// Run - plays one session until quit, end of input or ctx is done.
func (that *Console) Run(ctx context.Context) error {
	view, err := that.gameManager.CreateSession(ctx, that.options.Difficulty, that.options.Starter)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	defer func() {
		if err := that.gameManager.CloseSession(context.WithoutCancel(ctx), view.ID); err != nil {
			that.logger.Error("failed to close session", "error", err)
		}
	}()

	if view, err = that.opponentReply(ctx, view); err != nil {
		return err
	}

	that.printf("%s", helpText)
	that.render(view)

	scanner := bufio.NewScanner(that.in)
	for scanner.Scan() {
		if err = ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "quit" || line == "exit" {
			return nil
		}

		if line == "help" {
			that.printf("%s", helpText)
			continue
		}

		next, err := that.execute(ctx, view.ID, line)
		if err != nil {
			that.printf("error: %v\n", err)
			continue
		}

		if next, err = that.opponentReply(ctx, next); err != nil {
			return err
		}

		view = next
		that.render(view)
	}

	if err = scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

func (that *Console) execute(ctx context.Context, id, line string) (*entity.SessionView, error) {
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "difficulty":
		difficulty, err := entity.ParseDifficulty(arg)
		if err != nil {
			return nil, err
		}
		return that.gameManager.SetDifficulty(ctx, id, difficulty)
	case "first":
		starter, err := entity.ParseStarter(arg)
		if err != nil {
			return nil, err
		}
		return that.gameManager.SetStarter(ctx, id, starter)
	case "again":
		return that.gameManager.PlayAgain(ctx, id)
	case "reset":
		return that.gameManager.ResetScores(ctx, id)
	}

	// cells are shown 1..9
	number, err := strconv.Atoi(command)
	if err != nil || arg != "" {
		return nil, errUnknownCommand
	}

	return that.gameManager.MakeTurn(ctx, id, number-1)
}

func (that *Console) opponentReply(ctx context.Context, view *entity.SessionView) (*entity.SessionView, error) {
	if view.Phase != entity.AwaitingOpponentMove {
		return view, nil
	}

	if that.options.OpponentDelay > 0 {
		that.printf("Computer is thinking...\n")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(that.options.OpponentDelay):
		}
	}

	view, err := that.gameManager.OpponentTurn(ctx, view.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to make opponent turn: %w", err)
	}

	return view, nil
}

func (that *Console) render(view *entity.SessionView) {
	var b strings.Builder

	b.WriteString("\n")
	for row := range 3 {
		if row > 0 {
			b.WriteString("---+---+---\n")
		}

		cells := make([]string, 3)
		for col := range 3 {
			i := row*3 + col
			cells[col] = cellText(view, i)
		}
		b.WriteString(" " + strings.Join(cells, " | ") + "\n")
	}
	b.WriteString("\n")

	switch view.Phase {
	case entity.Terminal:
		b.WriteString(view.Message + "  (type again to play again)\n")
	case entity.AwaitingPlayerMove:
		b.WriteString("Your move.\n")
	case entity.AwaitingOpponentMove:
		b.WriteString("Computer's move.\n")
	}

	fmt.Fprintf(&b, "%s | Difficulty: %s\n", view.Score.String(), view.Difficulty)

	that.printf("%s", b.String())
}

// cellText - the mark, or the cell number while it can be played; marks on the winning line are lowercase.
func cellText(view *entity.SessionView, i int) string {
	mark := string(view.Board[i])
	if view.Board[i] == entity.EmptyCell {
		if view.Enabled[i] {
			return strconv.Itoa(i + 1)
		}
		return " "
	}

	for _, cell := range view.WinningLine {
		if cell == i {
			return strings.ToLower(mark)
		}
	}

	return mark
}

func (that *Console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(that.out, format, args...); err != nil {
		that.logger.Error("failed to write output", "error", err)
	}
}
