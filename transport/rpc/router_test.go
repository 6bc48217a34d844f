package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/duel-backend/internal/apperror"
	"github.com/rocketscienceinc/duel-backend/internal/duel"
	"github.com/rocketscienceinc/duel-backend/internal/entity"
	"github.com/rocketscienceinc/duel-backend/internal/usecase"
)

type stubManager struct {
	err error

	gameID      string
	joined      usecase.JoinResult
	isTurn      bool
	summaries   []entity.GameSummary
	stateFilter entity.GameState
	calls       []string
}

func (that *stubManager) CreateGame(_ context.Context, _ string) (string, error) {
	that.calls = append(that.calls, MethodCreateGame)
	return that.gameID, that.err
}

func (that *stubManager) JoinGame(_ context.Context, _, _ string) (usecase.JoinResult, error) {
	that.calls = append(that.calls, MethodJoinGame)
	return that.joined, that.err
}

func (that *stubManager) SelectCharacter(_ context.Context, _, _, _, _ string) error {
	that.calls = append(that.calls, MethodSelectCharacter)
	return that.err
}

func (that *stubManager) DoAction(_ context.Context, _, _, _, _ string) error {
	that.calls = append(that.calls, MethodDoAction)
	return that.err
}

func (that *stubManager) IsTurn(_ context.Context, _, _, _ string) (bool, error) {
	that.calls = append(that.calls, MethodIsTurn)
	return that.isTurn, that.err
}

func (that *stubManager) ListGames(_ context.Context, stateFilter entity.GameState) ([]entity.GameSummary, error) {
	that.calls = append(that.calls, MethodListGames)
	that.stateFilter = stateFilter
	return that.summaries, that.err
}

func (that *stubManager) DestroyGame(_ context.Context, _ string) error {
	that.calls = append(that.calls, MethodDestroyGame)
	return that.err
}

func newTestRouter(manager gameManager) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewRouter(logger, manager).Handler()
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body errorMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Message
}

func TestRouter_TransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "empty body", body: "", message: "Missing request body"},
		{name: "blank body", body: "  \n", message: "Missing request body"},
		{name: "broken json", body: `{"id": 1,`, message: "Invalid JSON format"},
		{name: "not an object", body: `[1, 2]`, message: "Invalid params: Expected object"},
		{name: "missing id", body: `{"method": "create_game", "params": {"name": "x"}}`, message: "Invalid params: id: Required"},
		{name: "object id", body: `{"id": {}, "method": "create_game", "params": {"name": "x"}}`, message: "Invalid params: id: Expected string or number"},
		{name: "missing method", body: `{"id": 1, "params": {}}`, message: "Invalid params: method: Required"},
		{name: "unknown method", body: `{"id": 1, "method": "x", "params": {}}`, message: `Invalid params: method: unknown method "x"`},
		{name: "empty name", body: `{"id": 1, "method": "create_game", "params": {"name": ""}}`, message: "Invalid params: name: Required"},
		{name: "missing params", body: `{"id": 1, "method": "join_game"}`, message: "Invalid params: gameId: Required. name: Required"},
		{name: "wrong param type", body: `{"id": 1, "method": "create_game", "params": {"name": 5}}`, message: "Invalid params: name: Expected string, received number"},
		{
			name:    "bad state filter",
			body:    `{"id": 1, "method": "list_games", "params": {"stateFilter": "LOBBY"}}`,
			message: "Invalid params: stateFilter: Expected one of WAITING_FOR_PLAYERS | SELECTING_CHARACTERS | GAME_LOOP | GAME_OVER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := &stubManager{}

			rec := post(t, newTestRouter(manager), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.message, decodeMessage(t, rec))
			assert.Empty(t, manager.calls, "transport errors must not reach the game handlers")
		})
	}
}

func TestRouter_Results(t *testing.T) {
	manager := &stubManager{
		gameID:    "g1",
		joined:    usecase.JoinResult{PlayerID: "p1", Token: "secret"},
		isTurn:    true,
		summaries: []entity.GameSummary{{ID: "g1", State: entity.StateGameLoop}},
	}
	router := newTestRouter(manager)

	tests := []struct {
		name   string
		body   string
		result string
	}{
		{
			name:   "create_game",
			body:   `{"id": "a", "method": "create_game", "params": {"name": "arena"}}`,
			result: `{"id": "a", "result": {"gameId": "g1"}}`,
		},
		{
			name:   "join_game",
			body:   `{"id": 2, "method": "join_game", "params": {"gameId": "g1", "name": "Alice"}}`,
			result: `{"id": 2, "result": {"token": "secret", "id": "p1"}}`,
		},
		{
			name:   "select_character",
			body:   `{"id": 3, "method": "select_character", "params": {"gameId": "g1", "playerId": "p1", "token": "secret", "character": "knight"}}`,
			result: `{"id": 3, "result": {}}`,
		},
		{
			name:   "do_action",
			body:   `{"id": 4, "method": "do_action", "params": {"gameId": "g1", "playerId": "p1", "token": "secret", "action": "attack"}}`,
			result: `{"id": 4, "result": {}}`,
		},
		{
			name:   "is_turn",
			body:   `{"id": 5, "method": "is_turn", "params": {"gameId": "g1", "playerId": "p1", "token": "secret"}}`,
			result: `{"id": 5, "result": {"isTurn": true}}`,
		},
		{
			name:   "list_games",
			body:   `{"id": 6, "method": "list_games", "params": {"stateFilter": "GAME_LOOP"}}`,
			result: `{"id": 6, "result": {"games": [{"id": "g1", "state": "GAME_LOOP"}]}}`,
		},
		{
			name:   "destroy_game",
			body:   `{"id": 7, "method": "destroy_game", "params": {"gameId": "g1"}}`,
			result: `{"id": 7, "error": {"code": -32601, "message": "not implemented"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, router, tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.JSONEq(t, tt.result, rec.Body.String())
		})
	}

	assert.Equal(t, entity.StateGameLoop, manager.stateFilter)
}

func TestRouter_ListGamesWithoutParams(t *testing.T) {
	// Given: a manager with no games
	manager := &stubManager{summaries: []entity.GameSummary{}}

	// When: list_games is called without params
	rec := post(t, newTestRouter(manager), `{"id": 1, "method": "list_games"}`)

	// Then: every state is requested and an empty list comes back
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id": 1, "result": {"games": []}}`, rec.Body.String())
	assert.Equal(t, entity.GameState(""), manager.stateFilter)
}

func TestRouter_DestroyGameAlwaysAnswersError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "manager rejects", err: duel.NotImplemented()},
		{name: "manager accepts", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a manager with the given destroy outcome
			manager := &stubManager{err: tt.err}

			// When: destroy_game is called
			rec := post(t, newTestRouter(manager), `{"id": 1, "method": "destroy_game", "params": {"gameId": "g1"}}`)

			// Then: the envelope carries the not-implemented error and no result
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"id": 1, "error": {"code": -32601, "message": "not implemented"}}`, rec.Body.String())
		})
	}
}

func TestRouter_BusinessError(t *testing.T) {
	// Given: a manager that rejects the move
	manager := &stubManager{err: duel.GameNotFound("g1")}

	// When: a player acts
	rec := post(t, newTestRouter(manager), `{"id": 9, "method": "do_action", "params": {"gameId": "g1", "playerId": "p1", "token": "t", "action": "win"}}`)

	// Then: the rejection is carried in a normal envelope
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id": 9, "error": {"code": -1, "message": "Game with ID g1 not found"}}`, rec.Body.String())
}

func TestRouter_InternalError(t *testing.T) {
	// Given: a manager whose store is down
	manager := &stubManager{err: errors.New("dial tcp: connection refused")}

	// When: a game is created
	rec := post(t, newTestRouter(manager), `{"id": 1, "method": "create_game", "params": {"name": "arena"}}`)

	// Then: the failure is hidden behind a 500
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decodeMessage(t, rec))
}

func TestRouter_Conflict(t *testing.T) {
	manager := &stubManager{err: apperror.ErrConflict}

	rec := post(t, newTestRouter(manager), `{"id": 1, "method": "join_game", "params": {"gameId": "g1", "name": "Alice"}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_Ping(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubManager{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRouter_Preflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubManager{}).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/rpc", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
