package server

import (
	"errors"
	"math/rand"
	"strings"
)

// Lobby ids are short join codes players can read out loud, not UUIDs.
const lobbyIDLength = 6

func GenerateLobbyID(used map[string]bool) string {
	for {
		code := make([]byte, lobbyIDLength)
		for i := range code {
			code[i] = 'A' + byte(rand.Intn(26))
		}
		id := string(code)
		if !used[id] {
			return id
		}
	}
}

func ValidateLobbyID(id string) error {
	if len(id) != lobbyIDLength {
		return errors.New("INVALID_LOBBY_ID: lobby id must be exactly 6 characters")
	}
	for _, ch := range strings.ToUpper(id) {
		if ch < 'A' || ch > 'Z' {
			return errors.New("INVALID_LOBBY_ID: lobby id must contain only letters A-Z")
		}
	}
	return nil
}

func NormalizeLobbyID(id string) string {
	return strings.ToUpper(id)
}
