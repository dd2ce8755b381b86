package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"monopolis-server/internal/monopolis"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.rootHandler)

	mux.HandleFunc("/health", s.healthHandler)

	mux.HandleFunc("/websocket", s.websocketHandler)

	// Wrap the mux with CORS middleware
	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // Replace "*" with specific origins if needed
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"message": "monopolis server"}
	jsonResp, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(jsonResp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{"status": "up"}
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			health["status"] = "down"
			health["error"] = err.Error()
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}
	resp, err := json.Marshal(health)
	if err != nil {
		http.Error(w, "Failed to marshal health check response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // TODO: make environment-specific
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connectionID := uuid.New().String()
	log.Printf("New connection: %s", connectionID)
	s.connectionManager.Add(connectionID, socket)
	defer func() {
		localID := s.connectionManager.LocalFor(connectionID)
		s.connectionManager.Remove(connectionID)
		s.channels.UnsubscribeAll(connectionID)
		s.rateLimiter.RemoveConnection(connectionID)
		log.Printf("Connection closed: %s", connectionID)

		// The identity's lobby binding survives; a later resume with the
		// same localId reattaches to the same game state.
		if localID != "" {
			if lobbyID, inLobby := s.connectionManager.LobbyForLocal(localID); inLobby {
				log.Printf("Identity %s disconnected from lobby %s, eligible for resume", localID, lobbyID)
			}
		}
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			log.Printf("Connection %s read error: %v", connectionID, err)
			return
		}

		if msgType != websocket.MessageText {
			log.Printf("Non-text input from %s", connectionID)
			continue
		}

		if !s.rateLimiter.Allow(connectionID) {
			s.sendError(socket, ctx, "RATE_LIMITED: too many messages, slow down")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Invalid JSON from %s: %v", connectionID, err)
			s.sendError(socket, ctx, "MALFORMED_ENVELOPE: invalid JSON")
			continue
		}

		if err := ValidateEnvelopeType(msg.Type); err != nil {
			s.sendError(socket, ctx, err.Error())
			continue
		}

		switch msg.Type {
		case "ping":
			s.handlePing(socket, ctx, connectionID)

		case "pong":
			// heartbeat reply, nothing to do

		case "register":
			s.handleRegister(socket, ctx, connectionID, msg)

		case "change":
			// informational echo only; authoritative state never flows
			// client to server
			log.Printf("Change echo for '%s' from %s ignored", msg.ID, connectionID)

		case "event":
			s.handleEvent(socket, ctx, connectionID, msg)

		case "startevent":
			s.handleStartEvent(socket, ctx, connectionID, msg)

		case "resume":
			s.handleResume(socket, ctx, connectionID, msg)
		}
	}
}

func (s *Server) handlePing(socket *websocket.Conn, ctx context.Context, connectionID string) {
	if err := s.sendMessage(socket, ctx, PingMessage{Type: "pong"}); err != nil {
		log.Printf("Failed to send pong to %s: %v", connectionID, err)
	}
}

func (s *Server) sendMessage(socket *websocket.Conn, ctx context.Context, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return socket.Write(ctx, websocket.MessageText, data)
}

func (s *Server) sendError(socket *websocket.Conn, ctx context.Context, msg string) {
	if err := s.sendMessage(socket, ctx, ErrorMessage{Type: "error", Message: msg}); err != nil {
		log.Printf("Failed to send error message: %v", err)
	}
}

// handleRegister subscribes the connection to a channel, seeding the
// client's default when the server holds no value yet. Re-registering a
// cached channel replays the cached value unchanged.
func (s *Server) handleRegister(socket *websocket.Conn, ctx context.Context, connectionID string, msg ClientMessage) {
	if msg.ID == "" {
		s.sendError(socket, ctx, "MALFORMED_ENVELOPE: register requires an id")
		return
	}

	scope := GlobalScope
	if conn, exists := s.connectionManager.Get(connectionID); exists && conn.LobbyID != "" && msg.ID != LobbyListChannel {
		scope = conn.LobbyID
	}

	defaultValue := json.RawMessage("null")
	if len(msg.DefaultValue) > 0 {
		defaultValue = msg.DefaultValue
	}

	value := s.channels.Register(connectionID, scopedChannel(scope, msg.ID), defaultValue)
	if err := s.sendMessage(socket, ctx, newInitMessage(msg.ID, value)); err != nil {
		log.Printf("Failed to send init for '%s' to %s: %v", msg.ID, connectionID, err)
	}
}

// handleEvent routes a gameplay action through the event table under the
// lobby's serialization lock. Silent-drop failures are logged server-side
// only; everything else is surfaced to the sender.
func (s *Server) handleEvent(socket *websocket.Conn, ctx context.Context, connectionID string, msg ClientMessage) {
	localID := s.connectionManager.LocalFor(connectionID)
	if localID == "" {
		s.sendError(socket, ctx, "NOT_REGISTERED: create a user before sending events")
		return
	}

	lobbyID, inLobby := s.connectionManager.LobbyForLocal(localID)
	if !inLobby {
		s.sendError(socket, ctx, "NOT_IN_LOBBY: join a lobby before sending events")
		return
	}

	handler, known := eventHandlers[msg.ID]
	if !known {
		s.sendError(socket, ctx, fmt.Sprintf("UNKNOWN_EVENT: no handler for '%s'", msg.ID))
		return
	}

	lobby, err := s.lobbyManager.Get(lobbyID)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	err = lobby.WithGame(func(g *monopolis.Game) error {
		return handler(s, lobby, g, localID, msg.Payload)
	})
	if err != nil {
		if isSilentDrop(err) {
			log.Printf("Dropped event '%s' from %s in lobby %s: %v", msg.ID, localID, lobbyID, err)
			return
		}
		s.sendError(socket, ctx, err.Error())
		return
	}

	// roster and status changes are visible on the global listing
	if strings.HasPrefix(msg.ID, "lobby_") {
		s.broadcastLobbyList()
	}
}

func (s *Server) handleStartEvent(socket *websocket.Conn, ctx context.Context, connectionID string, msg ClientMessage) {
	switch msg.ID {
	case "start_createuser":
		s.handleCreateUser(socket, ctx, connectionID, msg.Payload)
	case "start_lobbycreate":
		s.handleLobbyCreate(socket, ctx, connectionID, msg.Payload)
	case "start_lobbyjoin":
		s.handleLobbyJoin(socket, ctx, connectionID, msg.Payload)
	case "start_lobbyleave":
		s.handleLobbyLeave(socket, ctx, connectionID)
	default:
		s.sendError(socket, ctx, fmt.Sprintf("UNKNOWN_EVENT: no handler for '%s'", msg.ID))
	}
}

func (s *Server) handleCreateUser(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req CreateUserRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "MALFORMED_ENVELOPE: invalid start_createuser payload")
		return
	}
	if err := ValidateName(req.PlayerName); err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	identity := s.identityManager.CreateUser(req.LocalID, req.PlayerName)
	s.evictPrevious(s.connectionManager.BindIdentity(connectionID, identity.LocalID))

	if s.persistenceManager != nil {
		if err := s.persistenceManager.SaveIdentity(*identity); err != nil {
			log.Printf("Failed to persist identity %s: %v", identity.LocalID, err)
		}
	}

	if err := s.sendMessage(socket, ctx, newInitMessage("user", UserInfo{
		LocalID:    identity.LocalID,
		PlayerName: identity.PlayerName,
	})); err != nil {
		log.Printf("Failed to send user init to %s: %v", connectionID, err)
		return
	}

	// pre-lobby connections watch the global listing
	listing := s.channels.Register(connectionID, scopedChannel(GlobalScope, LobbyListChannel), s.lobbyManager.List())
	if err := s.sendMessage(socket, ctx, newInitMessage(LobbyListChannel, listing)); err != nil {
		log.Printf("Failed to send lobbyList init to %s: %v", connectionID, err)
	}
}

func (s *Server) handleLobbyCreate(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req LobbyCreateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "MALFORMED_ENVELOPE: invalid start_lobbycreate payload")
		return
	}

	localID := s.connectionManager.LocalFor(connectionID)
	if localID == "" {
		s.sendError(socket, ctx, "NOT_REGISTERED: create a user first")
		return
	}
	if _, inLobby := s.connectionManager.LobbyForLocal(localID); inLobby {
		s.sendError(socket, ctx, "ALREADY_IN_LOBBY: leave the current lobby first")
		return
	}
	identity, err := s.identityManager.Get(localID)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	lobby, err := s.lobbyManager.CreateLobby(req.LobbyName, localID, identity.PlayerName, s.newGame)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}
	log.Printf("Lobby %s (%q) created by %s", lobby.ID, lobby.Name, localID)

	if err := s.enterLobby(socket, ctx, connectionID, localID, lobby); err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}
	s.broadcastLobbyList()
}

func (s *Server) handleLobbyJoin(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req LobbyJoinRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(socket, ctx, "MALFORMED_ENVELOPE: invalid start_lobbyjoin payload")
		return
	}
	if err := ValidateLobbyID(req.LobbyID); err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	localID := s.connectionManager.LocalFor(connectionID)
	if localID == "" {
		s.sendError(socket, ctx, "NOT_REGISTERED: create a user first")
		return
	}
	if _, inLobby := s.connectionManager.LobbyForLocal(localID); inLobby {
		s.sendError(socket, ctx, "ALREADY_IN_LOBBY: leave the current lobby first")
		return
	}

	lobby, err := s.lobbyManager.Get(req.LobbyID)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	if err := s.enterLobby(socket, ctx, connectionID, localID, lobby); err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}
	s.broadcastLobbyList()
}

// enterLobby adds the identity to the lobby roster, moves the connection
// off the global listing, and replays the lobby's full channel state.
func (s *Server) enterLobby(socket *websocket.Conn, ctx context.Context, connectionID, localID string, lobby *Lobby) error {
	err := lobby.WithGame(func(g *monopolis.Game) error {
		if g.Status() != "lobby" {
			return fmt.Errorf("LOBBY_CLOSED: lobby %s is already %s", lobby.ID, g.Status())
		}
		return g.AddRosterPlayer(localID)
	})
	if err != nil {
		return err
	}

	s.connectionManager.JoinLobby(connectionID, lobby.ID)
	s.channels.Unsubscribe(connectionID, scopedChannel(GlobalScope, LobbyListChannel))

	if err := s.sendMessage(socket, ctx, newInitMessage("lobbyId", lobby.ID)); err != nil {
		log.Printf("Failed to send lobbyId init to %s: %v", connectionID, err)
	}
	s.replayLobbyState(socket, ctx, connectionID, lobby)
	return nil
}

func (s *Server) handleLobbyLeave(socket *websocket.Conn, ctx context.Context, connectionID string) {
	localID := s.connectionManager.LocalFor(connectionID)
	if localID == "" {
		s.sendError(socket, ctx, "NOT_REGISTERED: create a user first")
		return
	}
	lobbyID, inLobby := s.connectionManager.LobbyForLocal(localID)
	if !inLobby {
		s.sendError(socket, ctx, "NOT_IN_LOBBY: nothing to leave")
		return
	}
	lobby, err := s.lobbyManager.Get(lobbyID)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	err = lobby.WithGame(func(g *monopolis.Game) error {
		return g.RemoveRosterPlayer(localID)
	})
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	s.connectionManager.LeaveLobby(connectionID)
	for _, channel := range monopolis.AllChannels() {
		s.channels.Unsubscribe(connectionID, scopedChannel(lobby.ID, channel))
	}

	listing := s.channels.Register(connectionID, scopedChannel(GlobalScope, LobbyListChannel), s.lobbyManager.List())
	if err := s.sendMessage(socket, ctx, newInitMessage(LobbyListChannel, listing)); err != nil {
		log.Printf("Failed to send lobbyList init to %s: %v", connectionID, err)
	}
	s.broadcastLobbyList()
}

// handleResume reattaches a disconnected identity: same localId, same
// lobby, full channel replay, no game-state loss.
func (s *Server) handleResume(socket *websocket.Conn, ctx context.Context, connectionID string, msg ClientMessage) {
	if msg.LocalID == "" {
		s.sendError(socket, ctx, "MALFORMED_ENVELOPE: resume requires a localId")
		return
	}
	identity, err := s.identityManager.Get(msg.LocalID)
	if err != nil {
		s.sendError(socket, ctx, err.Error())
		return
	}

	s.evictPrevious(s.connectionManager.BindIdentity(connectionID, identity.LocalID))
	log.Printf("Identity %s resumed on connection %s", identity.LocalID, connectionID)

	info := UserInfo{LocalID: identity.LocalID, PlayerName: identity.PlayerName}
	lobbyID, inLobby := s.connectionManager.LobbyForLocal(identity.LocalID)
	if inLobby {
		info.LobbyID = lobbyID
	}
	if err := s.sendMessage(socket, ctx, newInitMessage("user", info)); err != nil {
		log.Printf("Failed to send user init to %s: %v", connectionID, err)
		return
	}

	if inLobby {
		lobby, err := s.lobbyManager.Get(lobbyID)
		if err != nil {
			s.sendError(socket, ctx, err.Error())
			return
		}
		s.connectionManager.JoinLobby(connectionID, lobbyID)
		s.replayLobbyState(socket, ctx, connectionID, lobby)
		return
	}

	listing := s.channels.Register(connectionID, scopedChannel(GlobalScope, LobbyListChannel), s.lobbyManager.List())
	if err := s.sendMessage(socket, ctx, newInitMessage(LobbyListChannel, listing)); err != nil {
		log.Printf("Failed to send lobbyList init to %s: %v", connectionID, err)
	}
}

// evictPrevious closes an identity's older connection after a takeover;
// latest device wins.
func (s *Server) evictPrevious(previousConnectionID string) {
	if previousConnectionID == "" {
		return
	}
	if previous := s.connectionManager.Socket(previousConnectionID); previous != nil {
		s.sendError(previous, context.Background(), "CONNECTED_ELSEWHERE: this identity connected on another device")
		previous.Close(websocket.StatusNormalClosure, "Connected from another device")
	}
	s.connectionManager.Remove(previousConnectionID)
	s.channels.UnsubscribeAll(previousConnectionID)
}

// replayLobbyState subscribes the connection to every channel the lobby
// publishes and sends each current value as an init snapshot.
func (s *Server) replayLobbyState(socket *websocket.Conn, ctx context.Context, connectionID string, lobby *Lobby) {
	var state map[string]any
	lobby.WithGame(func(g *monopolis.Game) error {
		state = g.ReplayState()
		return nil
	})

	for channel, value := range state {
		cached := s.channels.Register(connectionID, scopedChannel(lobby.ID, channel), value)
		if err := s.sendMessage(socket, ctx, newInitMessage(channel, cached)); err != nil {
			log.Printf("Failed to replay '%s' to %s: %v", channel, connectionID, err)
			return
		}
	}
}
