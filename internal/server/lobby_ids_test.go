package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLobbyID_Format(t *testing.T) {
	assert := assert.New(t)

	id := GenerateLobbyID(map[string]bool{})
	assert.Len(id, 6)
	assert.NoError(ValidateLobbyID(id))
}

func TestGenerateLobbyID_SkipsUsedIDs(t *testing.T) {
	assert := assert.New(t)

	used := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateLobbyID(used)
		assert.False(used[id], "generated an id already in use")
		used[id] = true
	}
}

func TestValidateLobbyID(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(ValidateLobbyID("ABCDEF"))
	assert.NoError(ValidateLobbyID("abcdef"), "lowercase input is accepted and normalized later")

	assert.Error(ValidateLobbyID(""))
	assert.Error(ValidateLobbyID("ABC"))
	assert.Error(ValidateLobbyID("ABCDEFG"))
	assert.Error(ValidateLobbyID("ABC12F"))
	assert.Error(ValidateLobbyID("ABC EF"))
}

func TestNormalizeLobbyID(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("ABCDEF", NormalizeLobbyID("abcdef"))
	assert.Equal("ABCDEF", NormalizeLobbyID("AbCdEf"))
}
