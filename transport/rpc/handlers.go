package rpc

import (
	"context"
	"encoding/json"

	"github.com/rocketscienceinc/duel-backend/internal/duel"
	"github.com/rocketscienceinc/duel-backend/internal/entity"
	"github.com/rocketscienceinc/duel-backend/internal/usecase"
)

type gameManager interface {
	CreateGame(ctx context.Context, name string) (string, error)
	JoinGame(ctx context.Context, gameID, playerName string) (usecase.JoinResult, error)
	SelectCharacter(ctx context.Context, gameID, playerID, token, character string) error
	DoAction(ctx context.Context, gameID, playerID, token, action string) error
	IsTurn(ctx context.Context, gameID, playerID, token string) (bool, error)
	ListGames(ctx context.Context, stateFilter entity.GameState) ([]entity.GameSummary, error)
	DestroyGame(ctx context.Context, gameID string) error
}

type handlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

func (that *Router) registerHandlers() {
	that.handlers[MethodCreateGame] = that.handleCreateGame
	that.handlers[MethodJoinGame] = that.handleJoinGame
	that.handlers[MethodSelectCharacter] = that.handleSelectCharacter
	that.handlers[MethodDoAction] = that.handleDoAction
	that.handlers[MethodIsTurn] = that.handleIsTurn
	that.handlers[MethodListGames] = that.handleListGames
	that.handlers[MethodDestroyGame] = that.handleDestroyGame
}

func (that *Router) handleCreateGame(ctx context.Context, raw json.RawMessage) (any, error) {
	var params CreateGameParams
	if err := that.decodeParams(raw, &params); err != nil {
		return nil, err
	}

	gameID, err := that.manager.CreateGame(ctx, params.Name)
	if err != nil {
		return nil, err
	}

	return CreateGameResult{GameID: gameID}, nil
}

func (that *Router) handleJoinGame(ctx context.Context, raw json.RawMessage) (any, error) {
	var params JoinGameParams
	if err := that.decodeParams(raw, &params); err != nil {
		return nil, err
	}

	joined, err := that.manager.JoinGame(ctx, params.GameID, params.Name)
	if err != nil {
		return nil, err
	}

	return JoinGameResult{Token: joined.Token, ID: joined.PlayerID}, nil
}

func (that *Router) handleSelectCharacter(ctx context.Context, raw json.RawMessage) (any, error) {
	var params SelectCharacterParams
	if err := that.decodeParams(raw, &params); err != nil {
		return nil, err
	}

	if err := that.manager.SelectCharacter(ctx, params.GameID, params.PlayerID, params.Token, params.Character); err != nil {
		return nil, err
	}

	return emptyResult{}, nil
}

func (that *Router) handleDoAction(ctx context.Context, raw json.RawMessage) (any, error) {
	var params DoActionParams
	if err := that.decodeParams(raw, &params); err != nil {
		return nil, err
	}

	if err := that.manager.DoAction(ctx, params.GameID, params.PlayerID, params.Token, params.Action); err != nil {
		return nil, err
	}

	return emptyResult{}, nil
}

func (that *Router) handleIsTurn(ctx context.Context, raw json.RawMessage) (any, error) {
	var params IsTurnParams
	if err := that.decodeParams(raw, &params); err != nil {
		return nil, err
	}

	isTurn, err := that.manager.IsTurn(ctx, params.GameID, params.PlayerID, params.Token)
	if err != nil {
		return nil, err
	}

	return IsTurnResult{IsTurn: isTurn}, nil
}

func (that *Router) handleListGames(ctx context.Context, raw json.RawMessage) (any, error) {
	var params ListGamesParams
	if err := that.decodeParams(raw, &params); err != nil {
		return nil, err
	}

	games, err := that.manager.ListGames(ctx, params.StateFilter)
	if err != nil {
		return nil, err
	}

	return ListGamesResult{Games: games}, nil
}

func (that *Router) handleDestroyGame(ctx context.Context, raw json.RawMessage) (any, error) {
	var params DestroyGameParams
	if err := that.decodeParams(raw, &params); err != nil {
		return nil, err
	}

	if err := that.manager.DestroyGame(ctx, params.GameID); err != nil {
		return nil, err
	}

	return nil, duel.NotImplemented()
}
