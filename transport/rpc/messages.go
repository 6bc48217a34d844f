package rpc

import (
	"encoding/json"

	"github.com/rocketscienceinc/duel-backend/internal/apperror"
	"github.com/rocketscienceinc/duel-backend/internal/entity"
)

const (
	MethodCreateGame      = "create_game"
	MethodJoinGame        = "join_game"
	MethodSelectCharacter = "select_character"
	MethodDoAction        = "do_action"
	MethodIsTurn          = "is_turn"
	MethodListGames       = "list_games"
	MethodDestroyGame     = "destroy_game"
)

// Request is the JSON-RPC envelope. ID is echoed back untouched.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Response carries exactly one of Result and Error.
type Response struct {
	ID     json.RawMessage    `json:"id"`
	Result any                `json:"result,omitempty"`
	Error  *apperror.RPCError `json:"error,omitempty"`
}

type errorMessage struct {
	Message string `json:"message"`
}

type CreateGameParams struct {
	Name string `json:"name" validate:"required"`
}

type CreateGameResult struct {
	GameID string `json:"gameId"`
}

type JoinGameParams struct {
	GameID string `json:"gameId" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

type JoinGameResult struct {
	Token string `json:"token"`
	ID    string `json:"id"`
}

type SelectCharacterParams struct {
	GameID    string `json:"gameId" validate:"required"`
	PlayerID  string `json:"playerId" validate:"required"`
	Token     string `json:"token" validate:"required"`
	Character string `json:"character" validate:"required"`
}

type DoActionParams struct {
	GameID   string `json:"gameId" validate:"required"`
	PlayerID string `json:"playerId" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Action   string `json:"action" validate:"required"`
}

type IsTurnParams struct {
	GameID   string `json:"gameId" validate:"required"`
	PlayerID string `json:"playerId" validate:"required"`
	Token    string `json:"token" validate:"required"`
}

type IsTurnResult struct {
	IsTurn bool `json:"isTurn"`
}

type ListGamesParams struct {
	StateFilter entity.GameState `json:"stateFilter" validate:"omitempty,oneof=WAITING_FOR_PLAYERS SELECTING_CHARACTERS GAME_LOOP GAME_OVER"`
}

type ListGamesResult struct {
	Games []entity.GameSummary `json:"games"`
}

type DestroyGameParams struct {
	GameID string `json:"gameId" validate:"required"`
}

type emptyResult struct{}
