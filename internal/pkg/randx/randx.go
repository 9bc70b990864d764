/*
Package randx provides functions for generating unique identifiers and secure random values.

It is used to generate UUID room and invite identifiers and the coin flip that breaks
ties during side negotiation.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxUsernameLength is the maximum accepted username length in runes.
const MaxUsernameLength = 32

// RoomID generates a standard UUID v4 string identifying a game room.
func RoomID() string {
	return uuid.New().String()
}

// InviteID generates a standard UUID v4 string identifying a game invite.
func InviteID() string {
	return uuid.New().String()
}

// CoinFlip returns 0 or 1 using a cryptographically secure random source.
func CoinFlip() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number for coin flip: %v", err)
	}
	return int(n.Int64()), nil
}

// IsValidUsername checks whether the given string is acceptable as a username.
// Usernames must be non-empty, valid UTF-8, at most MaxUsernameLength runes,
// and free of control characters. Uniqueness is checked separately by the registry.
func IsValidUsername(name string) bool {
	if name == "" || !utf8.ValidString(name) {
		return false
	}

	if utf8.RuneCountInString(name) > MaxUsernameLength {
		return false
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}
