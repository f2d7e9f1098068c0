package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

var errBadBody = errors.New("malformed request body")

type gameManager interface {
	CreateSession(ctx context.Context, difficulty entity.Difficulty, starter entity.Starter) (*entity.SessionView, error)
	GetSession(ctx context.Context, id string) (*entity.SessionView, error)
	MakeTurn(ctx context.Context, id string, cell int) (*entity.SessionView, error)
	OpponentTurn(ctx context.Context, id string) (*entity.SessionView, error)
	SetDifficulty(ctx context.Context, id string, difficulty entity.Difficulty) (*entity.SessionView, error)
	SetStarter(ctx context.Context, id string, starter entity.Starter) (*entity.SessionView, error)
	PlayAgain(ctx context.Context, id string) (*entity.SessionView, error)
	ResetScores(ctx context.Context, id string) (*entity.SessionView, error)
	CloseSession(ctx context.Context, id string) error
}

// Defaults - settings for sessions created without explicit ones.
type Defaults struct {
	Difficulty entity.Difficulty
	Starter    entity.Starter
}

type handlers struct {
	logger      *slog.Logger
	gameManager gameManager
	defaults    Defaults
}

type sessionRequest struct {
	Difficulty string `json:"difficulty"`
	Starter    string `json:"starter"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		that.writeError(w, err)
		return
	}

	difficulty, starter := that.defaults.Difficulty, that.defaults.Starter

	var err error
	if req.Difficulty != "" {
		if difficulty, err = entity.ParseDifficulty(req.Difficulty); err != nil {
			that.writeError(w, err)
			return
		}
	}

	if req.Starter != "" {
		if starter, err = entity.ParseStarter(req.Starter); err != nil {
			that.writeError(w, err)
			return
		}
	}

	view, err := that.gameManager.CreateSession(r.Context(), difficulty, starter)
	if err != nil {
		that.writeError(w, err)
		return
	}

	view, err = that.opponentReply(r.Context(), view)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, view)
}

// GetSession - also finishes a computer move left pending by an earlier failure.
func (that *handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := that.gameManager.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	view, err = that.opponentReply(r.Context(), view)
	that.respond(w, view, err)
}

func (that *handlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := that.gameManager.CloseSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MakeTurn - applies the human move and, when the game goes on, the computer's reply.
func (that *handlers) MakeTurn(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req, false); err != nil {
		that.writeError(w, err)
		return
	}

	if req.Cell == nil {
		that.writeError(w, fmt.Errorf("%w: cell is required", errBadBody))
		return
	}

	view, err := that.gameManager.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeError(w, err)
		return
	}

	view, err = that.opponentReply(r.Context(), view)
	that.respond(w, view, err)
}

func (that *handlers) SetDifficulty(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeBody(r, &req, false); err != nil {
		that.writeError(w, err)
		return
	}

	difficulty, err := entity.ParseDifficulty(req.Difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	view, err := that.gameManager.SetDifficulty(r.Context(), chi.URLParam(r, "id"), difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	view, err = that.opponentReply(r.Context(), view)
	that.respond(w, view, err)
}

func (that *handlers) SetStarter(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeBody(r, &req, false); err != nil {
		that.writeError(w, err)
		return
	}

	starter, err := entity.ParseStarter(req.Starter)
	if err != nil {
		that.writeError(w, err)
		return
	}

	view, err := that.gameManager.SetStarter(r.Context(), chi.URLParam(r, "id"), starter)
	if err != nil {
		that.writeError(w, err)
		return
	}

	view, err = that.opponentReply(r.Context(), view)
	that.respond(w, view, err)
}

func (that *handlers) PlayAgain(w http.ResponseWriter, r *http.Request) {
	view, err := that.gameManager.PlayAgain(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	view, err = that.opponentReply(r.Context(), view)
	that.respond(w, view, err)
}

func (that *handlers) ResetScores(w http.ResponseWriter, r *http.Request) {
	view, err := that.gameManager.ResetScores(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	view, err = that.opponentReply(r.Context(), view)
	that.respond(w, view, err)
}

// opponentReply - lets the computer move when it is its turn.
func (that *handlers) opponentReply(ctx context.Context, view *entity.SessionView) (*entity.SessionView, error) {
	if view.Phase != entity.AwaitingOpponentMove {
		return view, nil
	}

	return that.gameManager.OpponentTurn(ctx, view.ID)
}

func (that *handlers) respond(w http.ResponseWriter, view *entity.SessionView, err error) {
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadBody),
		errors.Is(err, apperror.ErrUnknownDifficulty),
		errors.Is(err, apperror.ErrUnknownStarter):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrIllegalMove),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody - reads a JSON body into dst; an empty body is accepted only when optional.
func decodeBody(r *http.Request, dst any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: %w", errBadBody, err)
	}

	return nil
}
