package command

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	app "github.com/rocketscienceinc/tictactoe-solo/internal"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/selfplay"
)

type SelfPlay struct {
	Env *Env

	x    string
	o    string
	seed uint64

	games   int
	threads int
	swap    bool
	verbose bool
}

func (*SelfPlay) Name() string     { return "selfplay" }
func (*SelfPlay) Synopsis() string { return "Play two computer players against each other and report results" }
func (*SelfPlay) Usage() string {
	return `selfplay [flags]
`
}

func (c *SelfPlay) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.x, "x", "hard", "difficulty of the X side")
	flags.StringVar(&c.o, "o", "hard", "difficulty of the O side")
	flags.Uint64Var(&c.seed, "seed", 0, "random seed, 0 picks one")
	flags.IntVar(&c.games, "games", 100, "number of games to play")
	flags.IntVar(&c.threads, "threads", runtime.NumCPU(), "number of parallel workers")
	flags.BoolVar(&c.swap, "swap", true, "alternate who opens each game")
	flags.BoolVar(&c.verbose, "v", false, "print every game")
}

func (c *SelfPlay) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.Env.Load()

	x, err := entity.ParseDifficulty(c.x)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	o, err := entity.ParseDifficulty(c.o)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	if c.seed == 0 {
		c.seed = uint64(time.Now().UnixNano()) //nolint: gosec // seed only
	}

	runner := selfplay.NewRunner(c.Env.Logger, app.NewBot(c.seed))

	start := time.Now()
	summary, err := runner.Run(ctx, selfplay.Config{
		X:       x,
		O:       o,
		Games:   c.games,
		Threads: c.threads,
		Swap:    c.swap,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)

	if c.verbose {
		fmt.Fprintf(tw, "game\tfirst\tmoves\toutcome\n")
		for _, result := range summary.Results {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", result.Index, result.Starter, result.Moves, result.Outcome)
		}
		fmt.Fprintf(tw, "\n")
	}

	fmt.Fprintf(tw, "\tdifficulty\twins\n")
	fmt.Fprintf(tw, "X\t%s\t%d\n", x, summary.Score.PlayerWins)
	fmt.Fprintf(tw, "O\t%s\t%d\n", o, summary.Score.OpponentWins)
	fmt.Fprintf(tw, "draws\t\t%d\n", summary.Score.Draws)
	tw.Flush()

	fmt.Printf("%d games in %s, seed=%d\n", summary.Score.Total(), time.Since(start).Round(time.Millisecond), c.seed)

	return subcommands.ExitSuccess
}
