package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/coder/websocket"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
	"github.com/pressly/goose/v3"

	"monopolis-server/internal/monopolis"
)

const heartbeatInterval = 30 * time.Second

type Server struct {
	port int

	db                 *sql.DB
	connectionManager  *ConnectionManager
	identityManager    *IdentityManager
	lobbyManager       *LobbyManager
	channels           *ChannelStore
	persistenceManager *PersistenceManager
	rateLimiter        *RateLimiter

	stepDelay time.Duration
}

// NewServer wires the managers together and returns both the Server (for
// graceful shutdown) and the configured http.Server. Persistence is
// optional: without MONOPOLIS_DB_URL the server runs in-memory only.
func NewServer() (*Server, *http.Server) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	stepDelay := time.Duration(0)
	if ms, err := strconv.Atoi(os.Getenv("MOVE_STEP_MS")); err == nil && ms > 0 {
		stepDelay = time.Duration(ms) * time.Millisecond
	}

	s := &Server{
		port:              port,
		connectionManager: NewConnectionManager(),
		identityManager:   NewIdentityManager(),
		lobbyManager:      NewLobbyManager(),
		channels:          NewChannelStore(),
		rateLimiter:       NewRateLimiter(20, time.Second),
		stepDelay:         stepDelay,
	}

	if dbURL := os.Getenv("MONOPOLIS_DB_URL"); dbURL != "" {
		db, err := sql.Open("pgx", dbURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		if err := runMigrations(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		s.db = db
		s.persistenceManager = NewPersistenceManager(db)

		if err := s.loadPersistedState(); err != nil {
			// don't fatal, allow the server to start with empty state
			log.Printf("Warning: failed to load persisted state: %v", err)
		}
	} else {
		log.Println("MONOPOLIS_DB_URL not set, running without persistence")
	}

	go s.heartbeatTask()
	if s.persistenceManager != nil {
		go s.periodicSaveTask()
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, httpServer
}

// runMigrations applies database migrations using goose.
func runMigrations(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "./db/migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Println("Database migrations applied successfully")
	return nil
}

// loadPersistedState restores identities and lobby snapshots on boot.
func (s *Server) loadPersistedState() error {
	identities, err := s.persistenceManager.LoadAllIdentities()
	if err != nil {
		return fmt.Errorf("failed to load identities: %w", err)
	}
	s.identityManager.Restore(identities)

	records, err := s.persistenceManager.LoadAllLobbies()
	if err != nil {
		return fmt.Errorf("failed to load lobbies: %w", err)
	}
	restored := 0
	for _, record := range records {
		game, err := monopolis.RestoreGame(record.Snapshot, s.lobbyPublisher(record.ID), monopolis.WithStepDelay(s.stepDelay))
		if err != nil {
			log.Printf("Warning: failed to restore lobby %s: %v", record.ID, err)
			continue
		}
		s.lobbyManager.Restore(&Lobby{
			ID:          record.ID,
			Name:        record.Name,
			HostLocalID: record.HostLocalID,
			HostName:    record.HostName,
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
			Game:        game,
		})
		restored++
		log.Printf("Restored lobby %s (%q, status %s)", record.ID, record.Name, game.Status())
	}

	log.Printf("Loaded %d identities, %d lobbies", len(identities), restored)
	return nil
}

// lobbyPublisher closes the engine's unscoped channel names over a lobby
// id. Called with the lobby lock held, so fan-out happens before the next
// event for the same lobby is processed.
func (s *Server) lobbyPublisher(lobbyID string) monopolis.Publisher {
	return func(channel string, value any) {
		s.publishToLobby(lobbyID, channel, value)
	}
}

// newGame builds the game a fresh lobby owns.
func (s *Server) newGame(lobbyID string) *monopolis.Game {
	return monopolis.NewGame(s.lobbyPublisher(lobbyID), monopolis.WithStepDelay(s.stepDelay))
}

// publishToLobby stores the authoritative value and fans it out to every
// subscribed connection.
func (s *Server) publishToLobby(lobbyID, channel string, value any) {
	subscribers := s.channels.Set(scopedChannel(lobbyID, channel), value)
	msg := ChangeMessage{ID: channel, Value: value}
	for _, connectionID := range subscribers {
		socket := s.connectionManager.Socket(connectionID)
		if socket == nil {
			continue
		}
		if err := s.sendMessage(socket, context.Background(), msg); err != nil {
			log.Printf("Failed to publish '%s' to %s: %v", channel, connectionID, err)
		}
	}
}

// broadcastLobbyList pushes the refreshed listing to every pre-lobby
// subscriber.
func (s *Server) broadcastLobbyList() {
	listing := s.lobbyManager.List()
	subscribers := s.channels.Set(scopedChannel(GlobalScope, LobbyListChannel), listing)
	msg := ChangeMessage{ID: LobbyListChannel, Value: listing}
	for _, connectionID := range subscribers {
		socket := s.connectionManager.Socket(connectionID)
		if socket == nil {
			continue
		}
		if err := s.sendMessage(socket, context.Background(), msg); err != nil {
			log.Printf("Failed to broadcast lobby list to %s: %v", connectionID, err)
		}
	}
}

// heartbeatTask pings every live connection on an interval to keep
// transports alive through idle proxies. There is no pong-timeout
// disconnect; dead sockets surface as read errors.
func (s *Server) heartbeatTask() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for range ticker.C {
		for connectionID, socket := range s.connectionManager.LiveSockets() {
			if err := s.sendMessage(socket, context.Background(), PingMessage{Type: "ping"}); err != nil {
				log.Printf("Heartbeat to %s failed: %v", connectionID, err)
			}
		}
	}
}

// periodicSaveTask persists every lobby on an interval, catching changes
// between explicit save points.
func (s *Server) periodicSaveTask() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		saved := 0
		for _, lobby := range s.lobbyManager.All() {
			if err := s.saveLobby(lobby); err != nil {
				log.Printf("Periodic save failed for lobby %s: %v", lobby.ID, err)
				continue
			}
			saved++
		}
		log.Printf("Periodic save completed: %d lobbies persisted", saved)
	}
}

// saveLobby snapshots one lobby under its event lock.
func (s *Server) saveLobby(lobby *Lobby) error {
	var snap monopolis.Snapshot
	err := lobby.WithGame(func(g *monopolis.Game) error {
		var err error
		snap, err = g.Snapshot()
		return err
	})
	if err != nil {
		return err
	}
	return s.persistenceManager.SaveLobby(LobbyRecord{
		ID:          lobby.ID,
		Name:        lobby.Name,
		HostLocalID: lobby.HostLocalID,
		HostName:    lobby.HostName,
		CreatedAt:   lobby.CreatedAt,
		UpdatedAt:   lobby.UpdatedAt,
		Snapshot:    snap,
	})
}

// Shutdown saves all state and notifies connected clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.persistenceManager != nil {
		for _, lobby := range s.lobbyManager.All() {
			if err := s.saveLobby(lobby); err != nil {
				log.Printf("Shutdown save failed for lobby %s: %v", lobby.ID, err)
			}
		}
		for _, identity := range s.identityManager.All() {
			if err := s.persistenceManager.SaveIdentity(identity); err != nil {
				log.Printf("Shutdown save failed for identity %s: %v", identity.LocalID, err)
			}
		}
		log.Println("Shutdown: state persisted")
	}

	for connectionID, socket := range s.connectionManager.LiveSockets() {
		socket.Close(websocket.StatusGoingAway, "Server shutting down")
		s.connectionManager.Remove(connectionID)
	}

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
