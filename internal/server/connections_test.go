package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionManager_AddStartsPreLobby(t *testing.T) {
	assert := assert.New(t)

	cm := NewConnectionManager()
	cm.Add("conn-1", nil)

	conn, exists := cm.Get("conn-1")
	assert.True(exists)
	assert.Equal(StatePreLobby, conn.State)
	assert.Empty(conn.LocalID)
}

func TestConnectionManager_BindIdentity(t *testing.T) {
	assert := assert.New(t)

	cm := NewConnectionManager()
	cm.Add("conn-1", nil)

	previous := cm.BindIdentity("conn-1", "local-a")
	assert.Empty(previous)
	assert.Equal("local-a", cm.LocalFor("conn-1"))

	// re-binding the same connection is not a takeover
	assert.Empty(cm.BindIdentity("conn-1", "local-a"))
}

func TestConnectionManager_LatestDeviceWins(t *testing.T) {
	assert := assert.New(t)

	cm := NewConnectionManager()
	cm.Add("conn-1", nil)
	cm.Add("conn-2", nil)

	cm.BindIdentity("conn-1", "local-a")
	previous := cm.BindIdentity("conn-2", "local-a")

	assert.Equal("conn-1", previous, "the older connection must be reported for eviction")
	assert.Equal("local-a", cm.LocalFor("conn-2"))
}

func TestConnectionManager_LobbyBindingSurvivesDisconnect(t *testing.T) {
	assert := assert.New(t)

	cm := NewConnectionManager()
	cm.Add("conn-1", nil)
	cm.BindIdentity("conn-1", "local-a")
	cm.JoinLobby("conn-1", "ABCDEF")

	conn, _ := cm.Get("conn-1")
	assert.Equal(StateConnected, conn.State)
	assert.Equal("ABCDEF", conn.LobbyID)

	// socket drops
	cm.Remove("conn-1")
	_, exists := cm.Get("conn-1")
	assert.False(exists)

	// the identity still belongs to the lobby, which is what resume uses
	lobbyID, inLobby := cm.LobbyForLocal("local-a")
	assert.True(inLobby)
	assert.Equal("ABCDEF", lobbyID)
}

func TestConnectionManager_ResumeReattachesLobby(t *testing.T) {
	assert := assert.New(t)

	cm := NewConnectionManager()
	cm.Add("conn-1", nil)
	cm.BindIdentity("conn-1", "local-a")
	cm.JoinLobby("conn-1", "ABCDEF")
	cm.Remove("conn-1")

	cm.Add("conn-2", nil)
	cm.BindIdentity("conn-2", "local-a")

	conn, _ := cm.Get("conn-2")
	assert.Equal(StateConnected, conn.State)
	assert.Equal("ABCDEF", conn.LobbyID)
}

func TestConnectionManager_LeaveLobbyClearsBinding(t *testing.T) {
	assert := assert.New(t)

	cm := NewConnectionManager()
	cm.Add("conn-1", nil)
	cm.BindIdentity("conn-1", "local-a")
	cm.JoinLobby("conn-1", "ABCDEF")

	cm.LeaveLobby("conn-1")

	conn, _ := cm.Get("conn-1")
	assert.Equal(StatePreLobby, conn.State)
	assert.Empty(conn.LobbyID)

	_, inLobby := cm.LobbyForLocal("local-a")
	assert.False(inLobby, "an explicit leave must not be resumable")
}

func TestConnectionManager_JoinLobbyRequiresIdentity(t *testing.T) {
	assert := assert.New(t)

	cm := NewConnectionManager()
	cm.Add("conn-1", nil)

	cm.JoinLobby("conn-1", "ABCDEF")

	conn, _ := cm.Get("conn-1")
	assert.Equal(StatePreLobby, conn.State)
	assert.Empty(conn.LobbyID)
}

func TestConnectionManager_RemoveKeepsNewerBinding(t *testing.T) {
	assert := assert.New(t)

	cm := NewConnectionManager()
	cm.Add("conn-1", nil)
	cm.Add("conn-2", nil)
	cm.BindIdentity("conn-1", "local-a")
	cm.BindIdentity("conn-2", "local-a")

	// removing the evicted connection must not unbind the new one
	cm.Remove("conn-1")
	assert.Equal("local-a", cm.LocalFor("conn-2"))
}
