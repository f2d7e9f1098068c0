package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/rocketscienceinc/tictactoe-solo/internal/command"
	"github.com/rocketscienceinc/tictactoe-solo/internal/config"
)

var configPath = flag.String("config", "./config.yml", "path to the yml config, empty reads the environment only")

// main - is the entry point of the application. It registers the subcommands; the configuration and logger are loaded by the one that runs.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	env := command.NewEnv(func() (*config.Config, *slog.Logger) {
		conf := initConfig(*configPath)
		return conf, initLogger(conf)
	})

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&command.Serve{Env: env}, "")
	subcommands.Register(&command.Play{Env: env}, "")
	subcommands.Register(&command.SelfPlay{Env: env}, "")

	flag.Parse()

	os.Exit(int(subcommands.Execute(context.Background())))
}

// initialize config.
func initConfig(path string) *config.Config {
	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
