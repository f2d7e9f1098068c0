package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/usecase"
	mocks "github.com/rocketscienceinc/tictactoe-solo/mocks/usecase"
)

type firstEmptyBot struct{}

func (firstEmptyBot) ChooseMove(board entity.Board, _ entity.Difficulty) (int, error) {
	cells := board.EmptyCells()
	if len(cells) == 0 {
		return 0, apperror.ErrNoLegalMove
	}

	return cells[0], nil
}

var errBotDown = errors.New("bot is down")

// flakyBot - fails its first pick, then plays like firstEmptyBot.
type flakyBot struct {
	calls int
}

func (that *flakyBot) ChooseMove(board entity.Board, difficulty entity.Difficulty) (int, error) {
	that.calls++
	if that.calls == 1 {
		return 0, errBotDown
	}

	return firstEmptyBot{}.ChooseMove(board, difficulty)
}

var testDefaults = Defaults{Difficulty: entity.Hard, Starter: entity.StarterPlayer}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	return newTestRouterWithBot(t, firstEmptyBot{})
}

func newTestRouterWithBot(t *testing.T, bot interface {
	ChooseMove(board entity.Board, difficulty entity.Difficulty) (int, error)
}) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewMemorySessionRepository(), bot)

	return NewRouter(logger, manager, testDefaults)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) entity.SessionView {
	t.Helper()

	var view entity.SessionView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))

	return view
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return resp.Error
}

func createSession(t *testing.T, router http.Handler, body string) entity.SessionView {
	t.Helper()

	rec := do(t, router, http.MethodPost, "/sessions", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	return decodeView(t, rec)
}

func TestPing(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestHandlers_CreateSession(t *testing.T) {
	t.Run("Empty body uses the defaults", func(t *testing.T) {
		// Given: a router
		router := newTestRouter(t)

		// When: creating a session without a body
		view := createSession(t, router, "")

		// Then: an empty board is waiting for the human
		assert.NotEmpty(t, view.ID)
		assert.Equal(t, entity.Hard, view.Difficulty)
		assert.Equal(t, entity.StarterPlayer, view.Starter)
		assert.Equal(t, entity.AwaitingPlayerMove, view.Phase)
		assert.Equal(t, entity.Board{}, view.Board)
		assert.Equal(t, [entity.BoardSize]bool{true, true, true, true, true, true, true, true, true}, view.Enabled)
	})

	t.Run("Computer opens before the response", func(t *testing.T) {
		// Given: a router
		router := newTestRouter(t)

		// When: the computer is asked to start
		view := createSession(t, router, `{"difficulty":"easy","starter":"computer"}`)

		// Then: its opening move is already on the board
		assert.Equal(t, entity.Easy, view.Difficulty)
		assert.Equal(t, entity.StarterOpponent, view.Starter)
		assert.Equal(t, entity.OpponentMark, view.Board[0])
		assert.Equal(t, entity.AwaitingPlayerMove, view.Phase)
		assert.False(t, view.Enabled[0])
	})

	t.Run("Bad input is rejected", func(t *testing.T) {
		router := newTestRouter(t)

		for _, body := range []string{`{"difficulty":"impossible"}`, `{"starter":"nobody"}`, `{not json`} {
			rec := do(t, router, http.MethodPost, "/sessions", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.NotEmpty(t, decodeError(t, rec), body)
		}
	})
}

func TestHandlers_MakeTurn(t *testing.T) {
	t.Run("Human move is answered by the computer", func(t *testing.T) {
		// Given: a fresh session
		router := newTestRouter(t)
		view := createSession(t, router, "")

		// When: the human takes the centre
		rec := do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":4}`)

		// Then: both moves are on the board and it's the human's turn again
		require.Equal(t, http.StatusOK, rec.Code)
		view = decodeView(t, rec)
		assert.Equal(t, entity.PlayerMark, view.Board[4])
		assert.Equal(t, entity.OpponentMark, view.Board[0])
		assert.Equal(t, entity.AwaitingPlayerMove, view.Phase)
	})

	t.Run("Winning move ends the game without a reply", func(t *testing.T) {
		// Given: a session where the human holds 4 and 2
		router := newTestRouter(t)
		view := createSession(t, router, "")
		do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":4}`)
		do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":2}`)

		// When: completing the anti-diagonal
		rec := do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":6}`)

		// Then: the human wins and the board is frozen
		require.Equal(t, http.StatusOK, rec.Code)
		view = decodeView(t, rec)
		assert.Equal(t, entity.PlayerWin, view.Outcome)
		assert.Equal(t, entity.Terminal, view.Phase)
		assert.Equal(t, entity.WinningLine{2, 4, 6}, view.WinningLine)
		assert.Equal(t, "You win!", view.Message)
		assert.Equal(t, entity.Score{PlayerWins: 1}, view.Score)
		assert.Equal(t, 2, view.Board.Count(entity.OpponentMark))

		rec = do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":8}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Illegal moves conflict", func(t *testing.T) {
		router := newTestRouter(t)
		view := createSession(t, router, "")
		do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":4}`)

		for _, body := range []string{`{"cell":4}`, `{"cell":0}`, `{"cell":9}`, `{"cell":-1}`} {
			rec := do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", body)
			assert.Equal(t, http.StatusConflict, rec.Code, body)
		}
	})

	t.Run("Missing cell is a bad request", func(t *testing.T) {
		router := newTestRouter(t)
		view := createSession(t, router, "")

		rec := do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown session", func(t *testing.T) {
		rec := do(t, newTestRouter(t), http.MethodPost, "/sessions/missing/moves", `{"cell":4}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decodeError(t, rec), apperror.ErrSessionNotFound.Error())
	})
}

func TestHandlers_Settings(t *testing.T) {
	t.Run("Difficulty keeps the board", func(t *testing.T) {
		router := newTestRouter(t)
		view := createSession(t, router, "")
		do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":4}`)

		rec := do(t, router, http.MethodPut, "/sessions/"+view.ID+"/difficulty", `{"difficulty":"Medium"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		view = decodeView(t, rec)
		assert.Equal(t, entity.Medium, view.Difficulty)
		assert.Equal(t, entity.PlayerMark, view.Board[4])

		rec = do(t, router, http.MethodPut, "/sessions/"+view.ID+"/difficulty", `{"difficulty":"nightmare"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Starter restarts the game", func(t *testing.T) {
		router := newTestRouter(t)
		view := createSession(t, router, "")
		do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":4}`)

		rec := do(t, router, http.MethodPut, "/sessions/"+view.ID+"/starter", `{"starter":"opponent"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		view = decodeView(t, rec)
		assert.Equal(t, entity.StarterOpponent, view.Starter)
		assert.Equal(t, entity.Board{entity.OpponentMark}, view.Board)
		assert.Equal(t, entity.AwaitingPlayerMove, view.Phase)

		rec = do(t, router, http.MethodPut, "/sessions/"+view.ID+"/starter", `{"starter":"both"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Play again keeps the score, reset clears it", func(t *testing.T) {
		// Given: a won game
		router := newTestRouter(t)
		view := createSession(t, router, "")
		for _, body := range []string{`{"cell":4}`, `{"cell":2}`, `{"cell":6}`} {
			do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", body)
		}

		// When: playing again
		rec := do(t, router, http.MethodPost, "/sessions/"+view.ID+"/play-again", "")

		// Then: the board is cleared and the win is remembered
		require.Equal(t, http.StatusOK, rec.Code)
		view = decodeView(t, rec)
		assert.Equal(t, entity.Board{}, view.Board)
		assert.Equal(t, entity.Score{PlayerWins: 1}, view.Score)

		// When: resetting the scores
		rec = do(t, router, http.MethodPost, "/sessions/"+view.ID+"/reset-scores", "")

		// Then: the scoreboard is zero
		require.Equal(t, http.StatusOK, rec.Code)
		view = decodeView(t, rec)
		assert.Equal(t, entity.Score{}, view.Score)
		assert.Equal(t, entity.InProgress, view.Outcome)
	})
}

func TestHandlers_CloseSession(t *testing.T) {
	router := newTestRouter(t)
	view := createSession(t, router, "")

	rec := do(t, router, http.MethodDelete, "/sessions/"+view.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/sessions/"+view.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/sessions/"+view.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_InternalError(t *testing.T) {
	// Given: a store that is down
	repo := mocks.NewMocksessionRepo(t)
	repo.EXPECT().CreateOrUpdate(mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(logger, usecase.NewGameManager(logger, repo, firstEmptyBot{}), testDefaults)

	// When: creating a session
	rec := do(t, router, http.MethodPost, "/sessions", "")

	// Then: the cause is logged, not leaked
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), decodeError(t, rec))
}

func TestHandlers_PendingOpponentMove(t *testing.T) {
	// stuckSession - a session whose computer reply failed after the human move was saved.
	stuckSession := func(t *testing.T) (http.Handler, string) {
		t.Helper()

		router := newTestRouterWithBot(t, &flakyBot{})
		view := createSession(t, router, "")

		rec := do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":4}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		rec = do(t, router, http.MethodPost, "/sessions/"+view.ID+"/moves", `{"cell":5}`)
		require.Equal(t, http.StatusConflict, rec.Code)

		return router, view.ID
	}

	t.Run("Get finishes the computer move", func(t *testing.T) {
		// Given: a session left waiting for the computer
		router, id := stuckSession(t)

		// When: the client reloads it
		rec := do(t, router, http.MethodGet, "/sessions/"+id, "")

		// Then: the computer has answered and the human can play again
		require.Equal(t, http.StatusOK, rec.Code)
		view := decodeView(t, rec)
		assert.Equal(t, entity.AwaitingPlayerMove, view.Phase)
		assert.Equal(t, entity.PlayerMark, view.Board[4])
		assert.Equal(t, entity.OpponentMark, view.Board[0])

		rec = do(t, router, http.MethodPost, "/sessions/"+id+"/moves", `{"cell":5}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Difficulty change finishes the computer move", func(t *testing.T) {
		// Given: a session left waiting for the computer
		router, id := stuckSession(t)

		// When: the difficulty is changed
		rec := do(t, router, http.MethodPut, "/sessions/"+id+"/difficulty", `{"difficulty":"easy"}`)

		// Then: the game continues on the same board
		require.Equal(t, http.StatusOK, rec.Code)
		view := decodeView(t, rec)
		assert.Equal(t, entity.Easy, view.Difficulty)
		assert.Equal(t, entity.AwaitingPlayerMove, view.Phase)
		assert.Equal(t, entity.PlayerMark, view.Board[4])
		assert.Equal(t, 1, view.Board.Count(entity.OpponentMark))
	})
}
