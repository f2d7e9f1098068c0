package command

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	app "github.com/rocketscienceinc/tictactoe-solo/internal"
)

type Serve struct {
	Env *Env
}

func (*Serve) Name() string     { return "serve" }
func (*Serve) Synopsis() string { return "Run the REST and WebSocket servers" }
func (*Serve) Usage() string {
	return `serve
`
}

func (*Serve) SetFlags(*flag.FlagSet) {}

func (c *Serve) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.Env.Load()

	if err := app.RunApp(c.Env.Logger, c.Env.Config); err != nil {
		c.Env.Logger.Error("app run failed", "error", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
