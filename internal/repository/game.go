package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/duel-backend/internal/apperror"
	"github.com/rocketscienceinc/duel-backend/internal/entity"
)

const (
	gameKeyPrefix = "game:"
	scanBatchSize = 100
)

// GameRepository stores one record per game. Update is a conditional write:
// it succeeds only if the stored version still equals game.Version, and
// returns apperror.ErrConflict otherwise.
type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, game *entity.Game) error
	List(ctx context.Context, stateFilter entity.GameState) ([]*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	record := game.Clone()
	record.Version = 1

	gameJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	created, err := that.client.SetNX(ctx, gameKey(game.ID), gameJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: %s", apperror.ErrGameAlreadyExists, game.ID)
	}

	game.Version = record.Version

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return decodeGame(response)
}

func (that *dbGame) Update(ctx context.Context, game *entity.Game) error {
	key := gameKey(game.ID)

	record := game.Clone()
	record.Version = game.Version + 1

	gameJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	// EXEC fails with TxFailedErr if the key changes between WATCH and EXEC.
	txf := func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrGameNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to get game: %w", err)
		}

		current, err := decodeGame(stored)
		if err != nil {
			return err
		}

		if current.Version != game.Version {
			return apperror.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, 0)
			return nil
		})

		return err
	}

	err = that.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return apperror.ErrConflict
	}

	if err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrGameNotFound) {
			return err
		}

		return fmt.Errorf("failed to update game: %w", err)
	}

	game.Version = record.Version

	return nil
}

func (that *dbGame) List(ctx context.Context, stateFilter entity.GameState) ([]*entity.Game, error) {
	var scanned []string

	iter := that.client.Scan(ctx, 0, gameKeyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		scanned = append(scanned, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan games: %w", err)
	}

	keys := uniqueKeys(scanned)

	games := make([]*entity.Game, 0, len(keys))

	for start := 0; start < len(keys); start += scanBatchSize {
		end := min(start+scanBatchSize, len(keys))

		values, err := that.client.MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get games: %w", err)
		}

		for _, value := range values {
			// the key may have been removed since the scan
			raw, ok := value.(string)
			if !ok {
				continue
			}

			game, err := decodeGame([]byte(raw))
			if err != nil {
				return nil, err
			}

			if stateFilter != "" && game.State != stateFilter {
				continue
			}

			games = append(games, game)
		}
	}

	return games, nil
}

// uniqueKeys drops repeats while keeping first-seen order. SCAN may return a key more than once.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	unique := make([]string, 0, len(keys))

	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		unique = append(unique, key)
	}

	return unique
}

func decodeGame(raw []byte) (*entity.Game, error) {
	var game entity.Game
	if err := json.Unmarshal(raw, &game); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal game: %w", apperror.ErrInvalidRecord, err)
	}

	if err := game.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidRecord, err)
	}

	if game.Players == nil {
		game.Players = []*entity.Player{}
	}

	return &game, nil
}
