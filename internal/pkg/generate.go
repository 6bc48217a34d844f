package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

const tokenSize = 32

// GenerateID - generates a unique identifier for games and players.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateToken - generates a secret bearer token for a player seat.
func GenerateToken() (string, error) {
	b := make([]byte, tokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
