package server

import (
	"sync"

	"github.com/coder/websocket"
)

// Connection lifecycle states. A connection starts pre-lobby, becomes
// connected once its identity joins a lobby, and the identity's lobby
// binding survives as disconnected when the socket drops, which is what
// resume reattaches to.
type ConnectionState string

const (
	StatePreLobby     ConnectionState = "pre-lobby"
	StateConnected    ConnectionState = "connected"
	StateDisconnected ConnectionState = "disconnected"
)

type Connection struct {
	ID      string
	LocalID string
	LobbyID string
	State   ConnectionState
}

// ConnectionManager owns every live socket. Sockets are only ever reached
// through a connection id so player and lobby records never hold a
// transport handle that can dangle across reconnects.
type ConnectionManager struct {
	sockets    map[string]*websocket.Conn // connectionID -> socket
	conns      map[string]*Connection     // connectionID -> binding
	byLocal    map[string]string          // localId -> connectionID
	localLobby map[string]string          // localId -> lobbyID, survives disconnect
	mu         sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		sockets:    make(map[string]*websocket.Conn),
		conns:      make(map[string]*Connection),
		byLocal:    make(map[string]string),
		localLobby: make(map[string]string),
	}
}

func (cm *ConnectionManager) Add(connectionID string, socket *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.sockets[connectionID] = socket
	cm.conns[connectionID] = &Connection{ID: connectionID, State: StatePreLobby}
}

// BindIdentity attaches a durable identity to a live connection. If the
// identity is already live on another connection, that connection id is
// returned so the caller can evict it (latest device wins).
func (cm *ConnectionManager) BindIdentity(connectionID, localID string) (previousConnectionID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	previous := cm.byLocal[localID]
	if previous == connectionID {
		previous = ""
	}
	cm.byLocal[localID] = connectionID
	if conn, exists := cm.conns[connectionID]; exists {
		conn.LocalID = localID
		if lobbyID, inLobby := cm.localLobby[localID]; inLobby {
			conn.LobbyID = lobbyID
			conn.State = StateConnected
		}
	}
	return previous
}

// JoinLobby binds the connection's identity to a lobby.
func (cm *ConnectionManager) JoinLobby(connectionID, lobbyID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conn, exists := cm.conns[connectionID]
	if !exists || conn.LocalID == "" {
		return
	}
	conn.LobbyID = lobbyID
	conn.State = StateConnected
	cm.localLobby[conn.LocalID] = lobbyID
}

// LeaveLobby detaches the identity from its lobby, returning it to the
// pre-lobby state.
func (cm *ConnectionManager) LeaveLobby(connectionID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conn, exists := cm.conns[connectionID]
	if !exists {
		return
	}
	if conn.LocalID != "" {
		delete(cm.localLobby, conn.LocalID)
	}
	conn.LobbyID = ""
	conn.State = StatePreLobby
}

// Remove drops a closed connection. The identity's lobby binding is kept
// so the same localId can resume later.
func (cm *ConnectionManager) Remove(connectionID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, exists := cm.conns[connectionID]; exists && conn.LocalID != "" {
		if cm.byLocal[conn.LocalID] == connectionID {
			delete(cm.byLocal, conn.LocalID)
		}
	}
	delete(cm.sockets, connectionID)
	delete(cm.conns, connectionID)
}

func (cm *ConnectionManager) Get(connectionID string) (Connection, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	conn, exists := cm.conns[connectionID]
	if !exists {
		return Connection{}, false
	}
	return *conn, true
}

func (cm *ConnectionManager) Socket(connectionID string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.sockets[connectionID]
}

// LocalFor returns the authenticated identity on a connection, or "".
func (cm *ConnectionManager) LocalFor(connectionID string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if conn, exists := cm.conns[connectionID]; exists {
		return conn.LocalID
	}
	return ""
}

// LobbyForLocal returns the lobby an identity belongs to, connected or
// not.
func (cm *ConnectionManager) LobbyForLocal(localID string) (string, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	lobbyID, exists := cm.localLobby[localID]
	return lobbyID, exists
}

// LiveSockets snapshots every open socket, for the heartbeat task.
func (cm *ConnectionManager) LiveSockets() map[string]*websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	live := make(map[string]*websocket.Conn, len(cm.sockets))
	for id, socket := range cm.sockets {
		live[id] = socket
	}
	return live
}
