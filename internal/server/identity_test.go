package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityManager_CreateUserMintsLocalID(t *testing.T) {
	assert := assert.New(t)

	im := NewIdentityManager()
	identity := im.CreateUser("", "Anna")

	assert.NotEmpty(identity.LocalID)
	assert.Equal("Anna", identity.PlayerName)
	assert.False(identity.CreatedAt.IsZero())
}

func TestIdentityManager_CreateUserIsIdempotent(t *testing.T) {
	assert := assert.New(t)

	im := NewIdentityManager()
	first := im.CreateUser("local-a", "Anna")
	second := im.CreateUser("local-a", "")

	assert.Same(first, second)
	assert.Equal("Anna", second.PlayerName, "empty name keeps the stored one")

	renamed := im.CreateUser("local-a", "Annabel")
	assert.Equal("Annabel", renamed.PlayerName)
}

func TestIdentityManager_GetUnknown(t *testing.T) {
	assert := assert.New(t)

	im := NewIdentityManager()
	_, err := im.Get("nobody")
	assert.ErrorContains(err, "UNKNOWN_IDENTITY")
}

func TestIdentityManager_RestoreRoundTrip(t *testing.T) {
	assert := assert.New(t)

	im := NewIdentityManager()
	im.CreateUser("local-a", "Anna")
	im.CreateUser("local-b", "Bert")

	restored := NewIdentityManager()
	restored.Restore(im.All())

	identity, err := restored.Get("local-a")
	assert.NoError(err)
	assert.Equal("Anna", identity.PlayerName)
	assert.Len(restored.All(), 2)
}
