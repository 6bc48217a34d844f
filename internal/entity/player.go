package entity

type PlayerState string

const (
	PlayerSelectingCharacter PlayerState = "SELECTING_CHARACTER"
	PlayerSelectedCharacter  PlayerState = "SELECTED_CHARACTER"
	PlayerThisPlayersTurn    PlayerState = "THIS_PLAYERS_TURN"
	PlayerWaitingForTurn     PlayerState = "WAITING_FOR_TURN"
	PlayerWon                PlayerState = "WON"
	PlayerLost               PlayerState = "LOST"
)

func (that PlayerState) IsValid() bool {
	switch that {
	case PlayerSelectingCharacter, PlayerSelectedCharacter, PlayerThisPlayersTurn,
		PlayerWaitingForTurn, PlayerWon, PlayerLost:
		return true
	default:
		return false
	}
}

// Player is a seat inside a Game. It is never stored on its own.
type Player struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Token     string      `json:"token"`
	Character string      `json:"character,omitempty"`
	State     PlayerState `json:"state"`
}

func (that *Player) HasCharacter() bool {
	return that.Character != ""
}

func (that *Player) IsTurn() bool {
	return that.State == PlayerThisPlayersTurn
}
