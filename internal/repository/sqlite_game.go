package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/rocketscienceinc/duel-backend/internal/apperror"
	"github.com/rocketscienceinc/duel-backend/internal/entity"
)

type sqliteGame struct {
	conn *sql.DB
}

// NewSQLiteGameRepository expects the games table created by storage.Storage.Init.
func NewSQLiteGameRepository(conn *sql.DB) GameRepository {
	return &sqliteGame{
		conn: conn,
	}
}

func (that *sqliteGame) Create(ctx context.Context, game *entity.Game) error {
	record := game.Clone()
	record.Version = 1

	gameJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	query := `INSERT INTO games (id, state, version, data) VALUES (?, ?, ?, ?)`

	_, err = that.conn.ExecContext(ctx, query, record.ID, string(record.State), record.Version, string(gameJSON))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %s", apperror.ErrGameAlreadyExists, game.ID)
		}

		return fmt.Errorf("can't save game: %w", err)
	}

	game.Version = record.Version

	return nil
}

func (that *sqliteGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	query := `SELECT data, version FROM games WHERE id = ?`

	var (
		data    string
		version int64
	)

	err := that.conn.QueryRowContext(ctx, query, id).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("can't find game: %w", err)
	}

	game, err := decodeGame([]byte(data))
	if err != nil {
		return nil, err
	}

	game.Version = version

	return game, nil
}

func (that *sqliteGame) Update(ctx context.Context, game *entity.Game) error {
	record := game.Clone()
	record.Version = game.Version + 1

	gameJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	query := `UPDATE games SET state = ?, version = ?, data = ? WHERE id = ? AND version = ?`

	result, err := that.conn.ExecContext(ctx, query, string(record.State), record.Version, string(gameJSON), game.ID, game.Version)
	if err != nil {
		return fmt.Errorf("can't update game: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't read affected rows: %w", err)
	}

	if affected == 0 {
		return that.missedUpdate(ctx, game.ID)
	}

	game.Version = record.Version

	return nil
}

// missedUpdate tells a lost race apart from a vanished record.
func (that *sqliteGame) missedUpdate(ctx context.Context, id string) error {
	var exists int

	err := that.conn.QueryRowContext(ctx, `SELECT 1 FROM games WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.ErrGameNotFound
	}

	if err != nil {
		return fmt.Errorf("can't find game: %w", err)
	}

	return apperror.ErrConflict
}

func (that *sqliteGame) List(ctx context.Context, stateFilter entity.GameState) ([]*entity.Game, error) {
	query := `SELECT data, version FROM games`
	args := []any{}

	if stateFilter != "" {
		query += ` WHERE state = ?`
		args = append(args, string(stateFilter))
	}

	query += ` ORDER BY rowid`

	rows, err := that.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("can't list games: %w", err)
	}
	defer rows.Close()

	games := []*entity.Game{}

	for rows.Next() {
		var (
			data    string
			version int64
		)

		if err = rows.Scan(&data, &version); err != nil {
			return nil, fmt.Errorf("can't scan game: %w", err)
		}

		game, err := decodeGame([]byte(data))
		if err != nil {
			return nil, err
		}

		game.Version = version
		games = append(games, game)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate games: %w", err)
	}

	return games, nil
}
