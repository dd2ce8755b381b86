package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Identity is a durable user record keyed by localId. Identities survive
// reconnects and are never destroyed while the process lives.
type Identity struct {
	LocalID    string    `json:"localId"`
	PlayerName string    `json:"playerName"`
	CreatedAt  time.Time `json:"createdAt"`
}

type IdentityManager struct {
	identities map[string]*Identity
	mu         sync.RWMutex
}

func NewIdentityManager() *IdentityManager {
	return &IdentityManager{
		identities: make(map[string]*Identity),
	}
}

// CreateUser registers an identity. A client that already holds a localId
// sends it back and gets the same record with a possibly updated name; an
// empty localId mints a fresh one.
func (im *IdentityManager) CreateUser(localID, playerName string) *Identity {
	im.mu.Lock()
	defer im.mu.Unlock()

	if localID == "" {
		localID = uuid.New().String()
	}
	if identity, exists := im.identities[localID]; exists {
		if playerName != "" {
			identity.PlayerName = playerName
		}
		return identity
	}
	identity := &Identity{
		LocalID:    localID,
		PlayerName: playerName,
		CreatedAt:  time.Now(),
	}
	im.identities[localID] = identity
	return identity
}

func (im *IdentityManager) Get(localID string) (*Identity, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	identity, exists := im.identities[localID]
	if !exists {
		return nil, errors.New("UNKNOWN_IDENTITY: no user for this localId")
	}
	return identity, nil
}

// All returns a copy of every identity, used by the persistence layer.
func (im *IdentityManager) All() []Identity {
	im.mu.RLock()
	defer im.mu.RUnlock()

	all := make([]Identity, 0, len(im.identities))
	for _, identity := range im.identities {
		all = append(all, *identity)
	}
	return all
}

// Restore reinserts identities loaded from the database on boot.
func (im *IdentityManager) Restore(identities []Identity) {
	im.mu.Lock()
	defer im.mu.Unlock()

	for i := range identities {
		identity := identities[i]
		im.identities[identity.LocalID] = &identity
	}
}
