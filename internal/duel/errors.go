package duel

import "github.com/rocketscienceinc/duel-backend/internal/apperror"

func errCannotJoin() *apperror.RPCError {
	return apperror.NewRPCError(apperror.CodeMethodNotFound, "Cannot join game in current state.")
}

func errGameFull() *apperror.RPCError {
	return apperror.NewRPCError(apperror.CodeMethodNotFound, "Game is already full")
}

func errPlayerNotFound(playerID, gameID string) *apperror.RPCError {
	return apperror.NewRPCError(apperror.CodeRuleViolation, "Player with ID %s not found in game %s", playerID, gameID)
}

func errTokenMismatch(playerID, gameID string) *apperror.RPCError {
	return apperror.NewRPCError(apperror.CodeRuleViolation, "Token mismatch for player %s in game %s", playerID, gameID)
}

func errAlreadySelected(playerID string) *apperror.RPCError {
	return apperror.NewRPCError(apperror.CodeRuleViolation, "Player %s has already selected a character", playerID)
}

func errNotInGameLoop(gameID string) *apperror.RPCError {
	return apperror.NewRPCError(apperror.CodeRuleViolation, "Game %s is not in game loop state", gameID)
}

func errNotYourTurn(playerID, gameID string) *apperror.RPCError {
	return apperror.NewRPCError(apperror.CodeRuleViolation, "It's not player %s's turn in game %s", playerID, gameID)
}

// GameNotFound is the rejection for an id the store has no record of.
func GameNotFound(gameID string) *apperror.RPCError {
	return apperror.NewRPCError(apperror.CodeRuleViolation, "Game with ID %s not found", gameID)
}

// NotImplemented is the answer for reserved operations.
func NotImplemented() *apperror.RPCError {
	return apperror.NewRPCError(apperror.CodeMethodNotFound, "not implemented")
}
