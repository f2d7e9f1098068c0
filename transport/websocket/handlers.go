package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

func (that *Server) handleNewSession(ctx context.Context, msg *Message, conn *connection) (*entity.SessionView, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	difficulty, starter := that.options.Difficulty, that.options.Starter

	if payloadReq.Difficulty != "" {
		if difficulty, err = entity.ParseDifficulty(payloadReq.Difficulty); err != nil {
			return nil, that.sendErrorResponse(conn, msg.Action, err)
		}
	}

	if payloadReq.Starter != "" {
		if starter, err = entity.ParseStarter(payloadReq.Starter); err != nil {
			return nil, that.sendErrorResponse(conn, msg.Action, err)
		}
	}

	view, err := that.gameManager.CreateSession(ctx, difficulty, starter)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	return view, conn.send(msg.Action, Payload{Session: view})
}

// handleGetSession - resumes a session, binding it to this connection.
func (that *Server) handleGetSession(ctx context.Context, msg *Message, conn *connection) (*entity.SessionView, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	view, err := that.gameManager.GetSession(ctx, conn.session(payloadReq))
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	return view, conn.send(msg.Action, Payload{Session: view})
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) (*entity.SessionView, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	if payloadReq.Cell == nil {
		return nil, that.sendErrorResponse(conn, msg.Action, errCellRequired)
	}

	view, err := that.gameManager.MakeTurn(ctx, conn.session(payloadReq), *payloadReq.Cell)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	return view, conn.send(msg.Action, Payload{Session: view})
}

func (that *Server) handleDifficulty(ctx context.Context, msg *Message, conn *connection) (*entity.SessionView, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	difficulty, err := entity.ParseDifficulty(payloadReq.Difficulty)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	view, err := that.gameManager.SetDifficulty(ctx, conn.session(payloadReq), difficulty)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	return view, conn.send(msg.Action, Payload{Session: view})
}

func (that *Server) handleStarter(ctx context.Context, msg *Message, conn *connection) (*entity.SessionView, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	starter, err := entity.ParseStarter(payloadReq.Starter)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	view, err := that.gameManager.SetStarter(ctx, conn.session(payloadReq), starter)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	return view, conn.send(msg.Action, Payload{Session: view})
}

func (that *Server) handlePlayAgain(ctx context.Context, msg *Message, conn *connection) (*entity.SessionView, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	view, err := that.gameManager.PlayAgain(ctx, conn.session(payloadReq))
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	return view, conn.send(msg.Action, Payload{Session: view})
}

func (that *Server) handleResetScores(ctx context.Context, msg *Message, conn *connection) (*entity.SessionView, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	view, err := that.gameManager.ResetScores(ctx, conn.session(payloadReq))
	if err != nil {
		return nil, that.sendErrorResponse(conn, msg.Action, err)
	}

	return view, conn.send(msg.Action, Payload{Session: view})
}

// scheduleOpponentTurn - answers for the computer after the configured pause, one reply at a time per connection.
func (that *Server) scheduleOpponentTurn(ctx context.Context, conn *connection, view *entity.SessionView, replies *sync.WaitGroup) {
	if view.Phase != entity.AwaitingOpponentMove || !conn.replying.CompareAndSwap(false, true) {
		return
	}

	delay := that.options.OpponentDelay
	if view.Board.Count(entity.PlayerMark) == 0 {
		delay = that.options.OpeningDelay
	}

	replies.Add(1)
	go func() {
		defer replies.Done()

		that.opponentTurn(ctx, conn, view.ID, delay)
	}()
}

// opponentTurn - the pending flag is cleared before the answer is written, so a reply to it can schedule the next move.
func (that *Server) opponentTurn(ctx context.Context, conn *connection, sessionID string, delay time.Duration) {
	log := that.logger.With("method", "opponentTurn", "sessionID", sessionID)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		conn.replying.Store(false)
		log.Debug("opponent turn canceled")
		return
	case <-timer.C:
	}

	view, err := that.gameManager.OpponentTurn(ctx, sessionID)
	conn.replying.Store(false)

	if err != nil {
		log.Error("failed to make opponent turn", "error", err)
		if sendErr := conn.send(actionGameOpponent, Payload{Error: err.Error()}); sendErr != nil {
			log.Error("failed to send error", "error", sendErr)
		}
		return
	}

	if err = conn.send(actionGameOpponent, Payload{Session: view}); err != nil {
		log.Error("failed to send opponent turn", "error", err)
	}
}

func (that *Server) sendErrorResponse(conn *connection, action string, cause error) error {
	if err := conn.send(action, Payload{Error: cause.Error()}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return cause
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
