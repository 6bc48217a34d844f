package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopGame() *Game {
	return &Game{
		ID:    "g1",
		Name:  "arena",
		State: StateGameLoop,
		Players: []*Player{
			{ID: "p1", Name: "Alice", Token: "t1", Character: "knight", State: PlayerThisPlayersTurn},
			{ID: "p2", Name: "Bob", Token: "t2", Character: "wizard", State: PlayerWaitingForTurn},
		},
		Version: 3,
	}
}

func TestGame_Clone(t *testing.T) {
	// Given: a game in progress
	game := loopGame()

	// When: the clone is mutated
	clone := game.Clone()
	clone.State = StateGameOver
	clone.Players[0].State = PlayerWon
	clone.Players = append(clone.Players, &Player{ID: "p3"})

	// Then: the source game is untouched
	assert.Equal(t, loopGame(), game)
}

func TestGame_FindPlayer(t *testing.T) {
	game := loopGame()

	player, idx := game.FindPlayer("p2")
	require.NotNil(t, player)
	assert.Equal(t, "Bob", player.Name)
	assert.Equal(t, 1, idx)

	player, idx = game.FindPlayer("nobody")
	assert.Nil(t, player)
	assert.Equal(t, -1, idx)
}

func TestGame_AllCharactersSelected(t *testing.T) {
	game := NewGame("g1", "arena")
	assert.False(t, game.AllCharactersSelected(), "an empty game has nobody to wait for but must not start")

	game.Players = []*Player{
		{ID: "p1", Character: "knight", State: PlayerSelectedCharacter},
		{ID: "p2", State: PlayerSelectingCharacter},
	}
	assert.False(t, game.AllCharactersSelected())

	game.Players[1].Character = "wizard"
	game.Players[1].State = PlayerSelectedCharacter
	assert.True(t, game.AllCharactersSelected())
}

func TestGame_CurrentTurnPlayer(t *testing.T) {
	game := loopGame()
	assert.Equal(t, "p1", game.CurrentTurnPlayer().ID)

	assert.Nil(t, NewGame("g2", "lobby").CurrentTurnPlayer())
}

func TestGame_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(game *Game)
		err    error
	}{
		{
			name:   "valid game loop",
			mutate: func(*Game) {},
		},
		{
			name:   "empty id",
			mutate: func(game *Game) { game.ID = "" },
			err:    ErrBrokenInvariant,
		},
		{
			name:   "unknown game state",
			mutate: func(game *Game) { game.State = "PAUSED" },
			err:    ErrUnknownGameState,
		},
		{
			name:   "unknown player state",
			mutate: func(game *Game) { game.Players[1].State = "AFK" },
			err:    ErrUnknownPlayerState,
		},
		{
			name:   "three players",
			mutate: func(game *Game) { game.Players = append(game.Players, &Player{ID: "p3", State: PlayerSelectingCharacter}) },
			err:    ErrTooManyPlayers,
		},
		{
			name:   "nil player",
			mutate: func(game *Game) { game.Players[0] = nil },
			err:    ErrBrokenInvariant,
		},
		{
			name:   "full game still waiting",
			mutate: func(game *Game) { game.State = StateWaitingForPlayers },
			err:    ErrBrokenInvariant,
		},
		{
			name:   "lone player past the lobby",
			mutate: func(game *Game) { game.Players = game.Players[:1] },
			err:    ErrBrokenInvariant,
		},
		{
			name:   "two turn holders",
			mutate: func(game *Game) { game.Players[1].State = PlayerThisPlayersTurn },
			err:    ErrBrokenInvariant,
		},
		{
			name: "finished game",
			mutate: func(game *Game) {
				game.State = StateGameOver
				game.Players[0].State = PlayerWon
				game.Players[1].State = PlayerLost
			},
		},
		{
			name: "finished game without winner",
			mutate: func(game *Game) {
				game.State = StateGameOver
				game.Players[0].State = PlayerLost
				game.Players[1].State = PlayerLost
			},
			err: ErrBrokenInvariant,
		},
		{
			name: "finished game with a player still waiting",
			mutate: func(game *Game) {
				game.State = StateGameOver
				game.Players[0].State = PlayerWon
			},
			err: ErrBrokenInvariant,
		},
		{
			name:   "winner before the game is over",
			mutate: func(game *Game) { game.Players[1].State = PlayerWon },
			err:    ErrBrokenInvariant,
		},
		{
			name:   "game loop without character",
			mutate: func(game *Game) { game.Players[1].Character = "" },
			err:    ErrBrokenInvariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := loopGame()
			tt.mutate(game)

			err := game.Validate()

			if tt.err == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.err)
		})
	}

	require.NoError(t, NewGame("g3", "lobby").Validate())
}
