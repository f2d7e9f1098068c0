package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-solo/internal/config"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
	"github.com/rocketscienceinc/tictactoe-solo/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-solo/transport/rest"
	"github.com/rocketscienceinc/tictactoe-solo/transport/websocket"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownStorage = errors.New("unknown storage")
)

// Defaults - game settings for new sessions, taken from config.
type Defaults struct {
	Difficulty entity.Difficulty
	Starter    entity.Starter
}

func ParseDefaults(conf *config.Config) (Defaults, error) {
	difficulty, err := entity.ParseDifficulty(conf.Game.Difficulty)
	if err != nil {
		return Defaults{}, fmt.Errorf("invalid game.difficulty: %w", err)
	}

	starter, err := entity.ParseStarter(conf.Game.Starter)
	if err != nil {
		return Defaults{}, fmt.Errorf("invalid game.starter: %w", err)
	}

	return Defaults{Difficulty: difficulty, Starter: starter}, nil
}

// NewGameManager - builds the session controller over the configured storage; the returned func releases it.
func NewGameManager(ctx context.Context, logger *slog.Logger, conf *config.Config, bot service.BotService) (*usecase.GameManager, func(), error) {
	log := logger.With("component", "app")

	var (
		sessionRepo repository.SessionRepository
		release     = func() {}
	)

	switch conf.Storage {
	case config.StorageMemory, "":
		sessionRepo = repository.NewMemorySessionRepository()
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		release = func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}

		sessionRepo = repository.NewSessionRepository(redisStorage.Connection, conf.SessionTTL)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorage, conf.Storage)
	}

	log.Info("session storage ready", "storage", conf.Storage)

	return usecase.NewGameManager(logger, sessionRepo, bot), release, nil
}

// NewBot - a bot seeded for reproducible runs; seed 0 picks a random one.
func NewBot(seed uint64) service.BotService {
	if seed == 0 {
		return service.NewBotService(nil)
	}

	return service.NewBotService(rand.New(rand.NewPCG(seed, seed)))
}

// RunApp - runs the REST and WebSocket servers until SIGINT/SIGTERM or the first server failure.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaults, err := ParseDefaults(conf)
	if err != nil {
		return err
	}

	gameManager, release, err := NewGameManager(ctx, logger, conf, NewBot(0))
	if err != nil {
		return err
	}
	defer release()

	group, ctx := errgroup.WithContext(ctx)

	// run HTTP server
	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)

		router := rest.NewRouter(logger, gameManager, rest.Defaults{
			Difficulty: defaults.Difficulty,
			Starter:    defaults.Starter,
		})

		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}
		return nil
	})

	// run Websocket server
	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)

		wsServer := websocket.New(logger, gameManager, websocket.Options{
			Difficulty:    defaults.Difficulty,
			Starter:       defaults.Starter,
			OpponentDelay: conf.OpponentDelay,
			OpeningDelay:  conf.OpeningDelay,
		})

		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			return fmt.Errorf("WebSocket server error: %w", wsErr)
		}
		return nil
	})

	err = group.Wait()
	log.Info("Application stopped", "error", err)

	return err
}
