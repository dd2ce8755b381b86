package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"monopolis-server/internal/monopolis"
)

// Lobby is one independent game instance. Its mutex serializes every
// inbound event that touches the game so turn-state transitions stay
// atomic and strictly ordered; movement runs to completion inside the
// same critical section.
type Lobby struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	HostLocalID string    `json:"hostLocalId"`
	HostName    string    `json:"hostName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Game *monopolis.Game `json:"-"`
	mu   sync.Mutex
}

// WithGame runs fn with the lobby's event lock held.
func (l *Lobby) WithGame(fn func(g *monopolis.Game) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := fn(l.Game)
	l.UpdatedAt = time.Now()
	return err
}

// LobbyManager is the process-wide lobby registry.
type LobbyManager struct {
	lobbies map[string]*Lobby
	usedIDs map[string]bool
	mu      sync.RWMutex
}

func NewLobbyManager() *LobbyManager {
	return &LobbyManager{
		lobbies: make(map[string]*Lobby),
		usedIDs: make(map[string]bool),
	}
}

// CreateLobby allocates a lobby with a fresh game. newGame receives the
// generated lobby id so the caller can close its publisher over it.
func (lm *LobbyManager) CreateLobby(name, hostLocalID, hostName string, newGame func(lobbyID string) *monopolis.Game) (*Lobby, error) {
	if name == "" {
		return nil, errors.New("INVALID_LOBBY_NAME: lobby name cannot be empty")
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	id := GenerateLobbyID(lm.usedIDs)
	lm.usedIDs[id] = true

	lobby := &Lobby{
		ID:          id,
		Name:        name,
		HostLocalID: hostLocalID,
		HostName:    hostName,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Game:        newGame(id),
	}
	lm.lobbies[id] = lobby
	return lobby, nil
}

func (lm *LobbyManager) Get(id string) (*Lobby, error) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	lobby, exists := lm.lobbies[NormalizeLobbyID(id)]
	if !exists {
		return nil, errors.New("LOBBY_NOT_FOUND: no lobby with this id")
	}
	return lobby, nil
}

// List builds the lobbyList channel value: lightweight metadata for every
// lobby, oldest first so the listing order is stable across updates.
func (lm *LobbyManager) List() []LobbyListEntry {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	lobbies := make([]*Lobby, 0, len(lm.lobbies))
	for _, lobby := range lm.lobbies {
		lobbies = append(lobbies, lobby)
	}
	sort.Slice(lobbies, func(i, j int) bool {
		return lobbies[i].CreatedAt.Before(lobbies[j].CreatedAt)
	})

	entries := make([]LobbyListEntry, 0, len(lobbies))
	for _, lobby := range lobbies {
		lobby.mu.Lock()
		entries = append(entries, LobbyListEntry{
			ID:          lobby.ID,
			Name:        lobby.Name,
			HostName:    lobby.HostName,
			Status:      lobby.Game.Status(),
			PlayerCount: len(lobby.Game.Lobby.Players),
			MaxPlayers:  monopolis.MaxPlayers,
		})
		lobby.mu.Unlock()
	}
	return entries
}

// All snapshots the lobby set for the persistence layer.
func (lm *LobbyManager) All() []*Lobby {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	all := make([]*Lobby, 0, len(lm.lobbies))
	for _, lobby := range lm.lobbies {
		all = append(all, lobby)
	}
	return all
}

// Restore reinserts a lobby loaded from the database on boot.
func (lm *LobbyManager) Restore(lobby *Lobby) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.lobbies[lobby.ID] = lobby
	lm.usedIDs[lobby.ID] = true
}
