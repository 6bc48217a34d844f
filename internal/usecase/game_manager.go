package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/duel-backend/internal/apperror"
	"github.com/rocketscienceinc/duel-backend/internal/duel"
	"github.com/rocketscienceinc/duel-backend/internal/entity"
)

const DefaultMaxWriteRetries = 5

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, game *entity.Game) error
	List(ctx context.Context, stateFilter entity.GameState) ([]*entity.Game, error)
}

type JoinResult struct {
	PlayerID string
	Token    string
}

// GameManager runs each operation as read, decide, conditional write. When the
// write loses a race the whole cycle is repeated against the fresh record.
type GameManager struct {
	logger     *slog.Logger
	gameRepo   gameRepo
	machine    *duel.Machine
	maxRetries int
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, machine *duel.Machine, maxRetries int) *GameManager {
	if maxRetries < 1 {
		maxRetries = DefaultMaxWriteRetries
	}

	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo:   gameRepo,
		machine:    machine,
		maxRetries: maxRetries,
	}
}

func (that *GameManager) CreateGame(ctx context.Context, name string) (string, error) {
	game := that.machine.Create(name)

	if err := that.gameRepo.Create(ctx, game); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "method", "CreateGame", "gameID", game.ID)

	return game.ID, nil
}

func (that *GameManager) JoinGame(ctx context.Context, gameID, playerName string) (JoinResult, error) {
	var joined duel.JoinResult

	_, err := that.mutate(ctx, "JoinGame", gameID, func(game *entity.Game) (*entity.Game, error) {
		next, result, err := that.machine.Join(game, playerName)
		joined = result
		return next, err
	})
	if err != nil {
		return JoinResult{}, err
	}

	that.logger.Info("player joined", "method", "JoinGame", "gameID", gameID, "playerID", joined.PlayerID)

	return JoinResult{PlayerID: joined.PlayerID, Token: joined.Token}, nil
}

func (that *GameManager) SelectCharacter(ctx context.Context, gameID, playerID, token, character string) error {
	game, err := that.mutate(ctx, "SelectCharacter", gameID, func(game *entity.Game) (*entity.Game, error) {
		return that.machine.SelectCharacter(game, playerID, token, character)
	})
	if err != nil {
		return err
	}

	that.logger.Info("character selected", "method", "SelectCharacter", "gameID", gameID, "playerID", playerID, "state", game.State)

	return nil
}

func (that *GameManager) DoAction(ctx context.Context, gameID, playerID, token, action string) error {
	game, err := that.mutate(ctx, "DoAction", gameID, func(game *entity.Game) (*entity.Game, error) {
		return that.machine.DoAction(game, playerID, token, action)
	})
	if err != nil {
		return err
	}

	that.logger.Debug("action applied", "method", "DoAction", "gameID", gameID, "playerID", playerID, "state", game.State)

	return nil
}

func (that *GameManager) IsTurn(ctx context.Context, gameID, playerID, token string) (bool, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return false, err
	}

	return that.machine.IsTurn(game, playerID, token)
}

func (that *GameManager) ListGames(ctx context.Context, stateFilter entity.GameState) ([]entity.GameSummary, error) {
	games, err := that.gameRepo.List(ctx, stateFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return that.machine.ListGames(games, stateFilter), nil
}

func (that *GameManager) DestroyGame(_ context.Context, gameID string) error {
	return that.machine.Destroy(gameID)
}

// mutate applies decide to the stored game and writes the result back. Rule
// violations from decide end the cycle without a write.
func (that *GameManager) mutate(ctx context.Context, method, gameID string, decide func(*entity.Game) (*entity.Game, error)) (*entity.Game, error) {
	log := that.logger.With("method", method, "gameID", gameID)

	for attempt := 1; attempt <= that.maxRetries; attempt++ {
		game, err := that.getGameByID(ctx, gameID)
		if err != nil {
			return nil, err
		}

		next, err := decide(game)
		if err != nil {
			return nil, err
		}

		err = that.gameRepo.Update(ctx, next)
		if errors.Is(err, apperror.ErrConflict) {
			log.Debug("concurrent write detected, retrying", "attempt", attempt)
			continue
		}

		if errors.Is(err, apperror.ErrGameNotFound) {
			return nil, duel.GameNotFound(gameID)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to update game: %w", err)
		}

		return next, nil
	}

	log.Error("gave up on concurrent writes", "attempts", that.maxRetries)

	return nil, fmt.Errorf("%w: gave up after %d attempts", apperror.ErrConflict, that.maxRetries)
}

func (that *GameManager) getGameByID(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		return nil, duel.GameNotFound(gameID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}
