// Package duel holds the rules of the two-player game: joining, character
// selection, turn order and the end of a match. Every method works on a copy
// of the snapshot it is given and performs no I/O.
package duel

import (
	"crypto/subtle"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/duel-backend/internal/entity"
	"github.com/rocketscienceinc/duel-backend/internal/pkg"
)

// ActionWin ends the game in favour of the acting player. Any other action passes the turn.
const ActionWin = "win"

type JoinResult struct {
	PlayerID string
	Token    string
}

type Option func(*Machine)

// WithRandom replaces the source used to pick the starting player. It must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(that *Machine) {
		that.intn = intn
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(that *Machine) {
		that.newID = newID
	}
}

func WithTokenGenerator(newToken func() (string, error)) Option {
	return func(that *Machine) {
		that.newToken = newToken
	}
}

type Machine struct {
	intn     func(n int) int
	newID    func() string
	newToken func() (string, error)
}

func NewMachine(opts ...Option) *Machine {
	machine := &Machine{
		intn:     rand.Intn, //nolint: gosec // turn order does not need a cryptographic source
		newID:    pkg.GenerateID,
		newToken: pkg.GenerateToken,
	}

	for _, opt := range opts {
		opt(machine)
	}

	return machine
}

func (that *Machine) Create(name string) *entity.Game {
	return entity.NewGame(that.newID(), name)
}

func (that *Machine) Join(game *entity.Game, playerName string) (*entity.Game, JoinResult, error) {
	if !game.IsWaiting() {
		return nil, JoinResult{}, errCannotJoin()
	}

	if len(game.Players)+1 > entity.MaxPlayers {
		return nil, JoinResult{}, errGameFull()
	}

	token, err := that.newToken()
	if err != nil {
		return nil, JoinResult{}, fmt.Errorf("failed to generate player token: %w", err)
	}

	next := game.Clone()
	player := &entity.Player{
		ID:    that.newID(),
		Name:  playerName,
		Token: token,
		State: entity.PlayerSelectingCharacter,
	}
	next.Players = append(next.Players, player)

	if next.IsFull() {
		next.State = entity.StateSelectingCharacters
	}

	return next, JoinResult{PlayerID: player.ID, Token: player.Token}, nil
}

func (that *Machine) SelectCharacter(game *entity.Game, playerID, token, character string) (*entity.Game, error) {
	next := game.Clone()

	player, err := authenticate(next, playerID, token)
	if err != nil {
		return nil, err
	}

	if player.HasCharacter() {
		return nil, errAlreadySelected(playerID)
	}

	player.Character = character
	player.State = entity.PlayerSelectedCharacter

	// a lone early picker must not start the loop before the second seat is taken
	if next.IsSelecting() && next.AllCharactersSelected() {
		that.startGameLoop(next)
	}

	return next, nil
}

func (that *Machine) startGameLoop(game *entity.Game) {
	game.State = entity.StateGameLoop

	for _, player := range game.Players {
		player.State = entity.PlayerWaitingForTurn
	}

	game.Players[that.intn(len(game.Players))].State = entity.PlayerThisPlayersTurn
}

func (that *Machine) DoAction(game *entity.Game, playerID, token, action string) (*entity.Game, error) {
	if !game.InGameLoop() {
		return nil, errNotInGameLoop(game.ID)
	}

	next := game.Clone()

	player, err := authenticate(next, playerID, token)
	if err != nil {
		return nil, err
	}

	if current := next.CurrentTurnPlayer(); current == nil || current.ID != player.ID {
		return nil, errNotYourTurn(playerID, game.ID)
	}

	if action == ActionWin {
		finish(next, player)
		return next, nil
	}

	passTurn(next, playerID)

	return next, nil
}

func finish(game *entity.Game, winner *entity.Player) {
	game.State = entity.StateGameOver

	for _, player := range game.Players {
		player.State = entity.PlayerLost
	}

	winner.State = entity.PlayerWon
}

func passTurn(game *entity.Game, playerID string) {
	_, idx := game.FindPlayer(playerID)

	game.Players[idx].State = entity.PlayerWaitingForTurn
	game.Players[(idx+1)%len(game.Players)].State = entity.PlayerThisPlayersTurn
}

func (that *Machine) IsTurn(game *entity.Game, playerID, token string) (bool, error) {
	player, err := authenticate(game, playerID, token)
	if err != nil {
		return false, err
	}

	return player.IsTurn(), nil
}

// ListGames projects games to summaries. An empty filter keeps every game.
func (that *Machine) ListGames(games []*entity.Game, stateFilter entity.GameState) []entity.GameSummary {
	summaries := make([]entity.GameSummary, 0, len(games))
	for _, game := range games {
		if stateFilter != "" && game.State != stateFilter {
			continue
		}

		summaries = append(summaries, game.Summary())
	}

	return summaries
}

// Destroy is reserved in the protocol and always rejected.
func (that *Machine) Destroy(_ string) error {
	return NotImplemented()
}

func authenticate(game *entity.Game, playerID, token string) (*entity.Player, error) {
	player, _ := game.FindPlayer(playerID)
	if player == nil {
		return nil, errPlayerNotFound(playerID, game.ID)
	}

	if subtle.ConstantTimeCompare([]byte(player.Token), []byte(token)) != 1 {
		return nil, errTokenMismatch(playerID, game.ID)
	}

	return player, nil
}
