package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type gameManager interface {
	CreateSession(ctx context.Context, difficulty entity.Difficulty, starter entity.Starter) (*entity.SessionView, error)
	GetSession(ctx context.Context, id string) (*entity.SessionView, error)
	MakeTurn(ctx context.Context, id string, cell int) (*entity.SessionView, error)
	OpponentTurn(ctx context.Context, id string) (*entity.SessionView, error)
	SetDifficulty(ctx context.Context, id string, difficulty entity.Difficulty) (*entity.SessionView, error)
	SetStarter(ctx context.Context, id string, starter entity.Starter) (*entity.SessionView, error)
	PlayAgain(ctx context.Context, id string) (*entity.SessionView, error)
	ResetScores(ctx context.Context, id string) (*entity.SessionView, error)
}

type Options struct {
	Difficulty entity.Difficulty
	Starter    entity.Starter

	// OpponentDelay - pause before the computer answers a human move.
	OpponentDelay time.Duration
	// OpeningDelay - pause before the computer opens a game.
	OpeningDelay time.Duration
}

type handlerFunc func(ctx context.Context, message *Message, conn *connection) (*entity.SessionView, error)

type Server struct {
	logger      *slog.Logger
	gameManager gameManager
	options     Options

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameManager gameManager, options Options) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameManager: gameManager,
		options:     options,

		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionSessionNew] = server.handleNewSession
	server.handlers[actionSessionGet] = server.handleGetSession
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameDifficulty] = server.handleDifficulty
	server.handlers[actionGameStarter] = server.handleStarter
	server.handlers[actionGameAgain] = server.handlePlayAgain
	server.handlers[actionScoreReset] = server.handleResetScores

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)

	return mux
}

// Start - starts WebSocket server; open connections are closed once ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	conn := &connection{ws: ws}

	go func() {
		<-ctx.Done()
		ws.Close()
	}()

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	var replies sync.WaitGroup
	if err = that.handleMessages(ctx, conn, &replies); err != nil {
		log.Info("connection closed", "error", err)
	}

	cancel()
	replies.Wait()
}

// handleMessages - processes messages from the client until the socket is closed.
func (that *Server) handleMessages(ctx context.Context, conn *connection, replies *sync.WaitGroup) error {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := conn.ws.ReadJSON(&message); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				log.Error("failed to unmarshal message", "error", err)
				if err = conn.send(actionError, Payload{Error: "malformed message"}); err != nil {
					return err
				}
				continue
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			if err := conn.send(message.Action, Payload{Error: "unknown action"}); err != nil {
				return err
			}
			continue
		}

		view, err := handler(ctx, &message, conn)
		if err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
			continue
		}

		conn.bind(view.ID)
		that.scheduleOpponentTurn(ctx, conn, view, replies)
	}
}
