package command

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/subcommands"

	app "github.com/rocketscienceinc/tictactoe-solo/internal"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/transport/console"
)

type Play struct {
	Env *Env

	difficulty string
	starter    string
	seed       uint64
}

func (*Play) Name() string     { return "play" }
func (*Play) Synopsis() string { return "Play against the computer in the terminal" }
func (*Play) Usage() string {
	return `play [flags]
`
}

func (c *Play) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.difficulty, "difficulty", "", "easy, medium or hard (default from config)")
	flags.StringVar(&c.starter, "first", "", "player or computer (default from config)")
	flags.Uint64Var(&c.seed, "seed", 0, "random seed for the computer, 0 picks one")
}

func (c *Play) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.Env.Load()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	defaults, err := app.ParseDefaults(c.Env.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	if c.difficulty != "" {
		if defaults.Difficulty, err = entity.ParseDifficulty(c.difficulty); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}

	if c.starter != "" {
		if defaults.Starter, err = entity.ParseStarter(c.starter); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}

	// the JSON log would garble the board
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	gameManager, release, err := app.NewGameManager(ctx, logger, c.Env.Config, app.NewBot(c.seed))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer release()

	view := console.New(logger, gameManager, console.Options{
		Difficulty:    defaults.Difficulty,
		Starter:       defaults.Starter,
		OpponentDelay: c.Env.Config.OpponentDelay,
	}, os.Stdin, os.Stdout)

	if err = view.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
