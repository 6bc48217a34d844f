package entity

import (
	"errors"
	"fmt"
)

type GameState string

const (
	StateWaitingForPlayers   GameState = "WAITING_FOR_PLAYERS"
	StateSelectingCharacters GameState = "SELECTING_CHARACTERS"
	StateGameLoop            GameState = "GAME_LOOP"
	StateGameOver            GameState = "GAME_OVER"
)

const MaxPlayers = 2

var (
	ErrUnknownGameState   = errors.New("unknown game state")
	ErrUnknownPlayerState = errors.New("unknown player state")
	ErrTooManyPlayers     = errors.New("too many players")
	ErrBrokenInvariant    = errors.New("game invariant violated")
)

// GameStates lists every lifecycle state in progression order.
var GameStates = []GameState{
	StateWaitingForPlayers,
	StateSelectingCharacters,
	StateGameLoop,
	StateGameOver,
}

func (that GameState) IsValid() bool {
	for _, state := range GameStates {
		if that == state {
			return true
		}
	}

	return false
}

type Game struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	State   GameState `json:"state"`
	Players []*Player `json:"players"`
	Version int64     `json:"version"`
}

// GameSummary is the public projection returned by game listings.
type GameSummary struct {
	ID    string    `json:"id"`
	State GameState `json:"state"`
}

func NewGame(id, name string) *Game {
	return &Game{
		ID:      id,
		Name:    name,
		State:   StateWaitingForPlayers,
		Players: []*Player{},
	}
}

// Clone returns a deep copy, so callers can mutate it without touching the snapshot they were given.
func (that *Game) Clone() *Game {
	clone := *that
	clone.Players = make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		clone.Players = append(clone.Players, &p)
	}

	return &clone
}

func (that *Game) FindPlayer(playerID string) (*Player, int) {
	for i, player := range that.Players {
		if player.ID == playerID {
			return player, i
		}
	}

	return nil, -1
}

func (that *Game) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Game) IsWaiting() bool {
	return that.State == StateWaitingForPlayers
}

func (that *Game) IsSelecting() bool {
	return that.State == StateSelectingCharacters
}

func (that *Game) InGameLoop() bool {
	return that.State == StateGameLoop
}

func (that *Game) IsOver() bool {
	return that.State == StateGameOver
}

func (that *Game) AllCharactersSelected() bool {
	if len(that.Players) == 0 {
		return false
	}

	for _, player := range that.Players {
		if player.State != PlayerSelectedCharacter {
			return false
		}
	}

	return true
}

// CurrentTurnPlayer returns the player allowed to act, or nil outside the game loop.
func (that *Game) CurrentTurnPlayer() *Player {
	for _, player := range that.Players {
		if player.IsTurn() {
			return player
		}
	}

	return nil
}

func (that *Game) Summary() GameSummary {
	return GameSummary{
		ID:    that.ID,
		State: that.State,
	}
}

// Validate checks a record read back from storage.
func (that *Game) Validate() error {
	if that.ID == "" {
		return fmt.Errorf("%w: empty id", ErrBrokenInvariant)
	}

	if !that.State.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownGameState, that.State)
	}

	if len(that.Players) > MaxPlayers {
		return fmt.Errorf("%w: %d", ErrTooManyPlayers, len(that.Players))
	}

	for _, player := range that.Players {
		if player == nil {
			return fmt.Errorf("%w: nil player", ErrBrokenInvariant)
		}

		if !player.State.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownPlayerState, player.State)
		}
	}

	if that.IsWaiting() != (len(that.Players) < MaxPlayers) {
		return fmt.Errorf("%w: state %s with %d players", ErrBrokenInvariant, that.State, len(that.Players))
	}

	if that.InGameLoop() {
		turns := 0
		for _, player := range that.Players {
			if !player.HasCharacter() {
				return fmt.Errorf("%w: player %s in game loop without character", ErrBrokenInvariant, player.ID)
			}

			if player.IsTurn() {
				turns++
			}
		}

		if turns != 1 {
			return fmt.Errorf("%w: %d players hold the turn", ErrBrokenInvariant, turns)
		}
	}

	return that.validateOutcome()
}

// validateOutcome checks that WON and LOST appear only once the game is over, with exactly one winner.
func (that *Game) validateOutcome() error {
	winners := 0

	for _, player := range that.Players {
		finished := player.State == PlayerWon || player.State == PlayerLost
		if finished != that.IsOver() {
			return fmt.Errorf("%w: player %s is %s in state %s", ErrBrokenInvariant, player.ID, player.State, that.State)
		}

		if player.State == PlayerWon {
			winners++
		}
	}

	if that.IsOver() && winners != 1 {
		return fmt.Errorf("%w: %d winners", ErrBrokenInvariant, winners)
	}

	return nil
}
