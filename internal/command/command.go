// Package command holds the subcommands of the tictactoe binary.
package command

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-solo/internal/config"
)

// Env - config and logger shared by every subcommand, loaded on first use so help works without a config file.
type Env struct {
	Config *config.Config
	Logger *slog.Logger

	load func() (*config.Config, *slog.Logger)
	once sync.Once
}

func NewEnv(load func() (*config.Config, *slog.Logger)) *Env {
	return &Env{load: load}
}

// Load - runs the loader once; it panics like config.MustLoad when the config is unusable.
func (that *Env) Load() {
	that.once.Do(func() {
		that.Config, that.Logger = that.load()
	})
}
